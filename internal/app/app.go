// Package app wires configuration, store, browser and scraper for the
// run-once entry points.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"facebook-post-scraper/internal/config"
	"facebook-post-scraper/internal/database"
	"facebook-post-scraper/internal/monitoring"
	"facebook-post-scraper/internal/scraper"
	"facebook-post-scraper/internal/utils"
	"facebook-post-scraper/pkg/types"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

// Options are the flags shared by every entry point.
type Options struct {
	Config string `short:"c" long:"config" description:"Optional tuning file (yaml)"`
}

// ParseArgs parses flags and positional arguments into opts. It reports
// false when help was shown.
func ParseArgs(opts interface{}, args []string) (bool, error) {
	parser := flags.NewParser(opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return false, nil
		}
		return false, fmt.Errorf("failed to parse arguments: %w", err)
	}
	return true, nil
}

// App is one process worth of scraping resources. Close releases them in
// reverse order of acquisition.
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Store   database.Store
	Session scraper.Session
	Auth    *scraper.AuthManager
	Scraper *scraper.FacebookScraper
	Monitor *monitoring.Monitor

	closers []func()
}

// New loads configuration, logging and the store. The browser is started
// separately by StartBrowser.
func New(ctx context.Context, configFile string) (*App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		closers: []func(){closeLog},
	}

	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	store, err := database.NewConnection(connectCtx, cfg.Env.DatabaseURI, &cfg.Database, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warnf("Failed to close database: %v", err)
		}
	})

	a.Monitor = monitoring.NewMonitor(logger, cfg.Scraper.MetricsFile)
	return a, nil
}

// StartBrowser loads the cookies, starts the browser and logs the session
// in.
func (a *App) StartBrowser(ctx context.Context) error {
	auth, err := scraper.NewAuthManager(a.Config.Env.CookiePath, a.Config.Scraper.BaseURL, a.Config.Browser.UserAgent, a.Logger)
	if err != nil {
		return err
	}
	if err := auth.LoadCookies(); err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}
	a.Auth = auth

	session, err := scraper.NewSession(a.Config.Browser, a.Logger)
	if err != nil {
		return err
	}
	a.Session = session
	a.closers = append(a.closers, session.Close)

	a.Scraper = scraper.NewFacebookScraper(a.Config, session, auth, a.Store, a.Logger)
	return a.Scraper.Initialize(ctx)
}

// RunContext bounds a whole run by the configured timeout.
func (a *App) RunContext(parent context.Context) (context.Context, context.CancelFunc) {
	if a.Config.Scraper.RunTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(a.Config.Scraper.RunTimeout)*time.Minute)
}

// Finish records the run and writes the final log line.
func (a *App) Finish(entry, target string, result *types.RunResult, started time.Time, runErr error) {
	duration := time.Since(started)
	a.Monitor.RecordRun(entry, target, result, duration, runErr)

	if runErr != nil {
		a.Logger.WithField("entry", entry).Errorf("Run failed after %v: %v", duration.Round(time.Millisecond), runErr)
		return
	}
	a.Logger.WithFields(logrus.Fields{
		"entry":     entry,
		"extracted": result.Extracted,
		"valid":     result.Valid,
		"saved":     result.Saved,
	}).Infof("Run completed in %v", duration.Round(time.Millisecond))
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

var untilLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseUntil reads the cut-off date of a page scrape. Values without a zone
// are local time.
func ParseUntil(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range untilLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid until date: %q", value)
}

// jsDateLayout is how JavaScript's Date.toString renders a time, minus the
// trailing zone name in parentheses.
const jsDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"

// normalizeDatetime rewrites a JavaScript style "datetime" value to RFC3339
// so documents stored by the Node scraper decode too.
func normalizeDatetime(data string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, err
	}

	var value *string
	if err := json.Unmarshal(fields["datetime"], &value); err != nil || value == nil {
		return []byte(data), nil
	}
	if _, err := time.Parse(time.RFC3339, *value); err == nil {
		return []byte(data), nil
	}

	text, _, _ := strings.Cut(*value, " (")
	t, err := time.Parse(jsDateLayout, strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("invalid datetime %q", *value)
	}
	fields["datetime"], _ = json.Marshal(t)
	return json.Marshal(fields)
}

// DecodePost reads a feed post passed on the command line.
func DecodePost(data string) (types.Post, error) {
	var post types.Post
	normalized, err := normalizeDatetime(data)
	if err != nil {
		return post, fmt.Errorf("invalid JSON string provided for post: %w", err)
	}
	if err := json.Unmarshal(normalized, &post); err != nil {
		return post, fmt.Errorf("invalid JSON string provided for post: %w", err)
	}
	return post, nil
}

// DecodeSinglePost reads a single post passed on the command line.
func DecodeSinglePost(data string) (types.SinglePost, error) {
	var post types.SinglePost
	normalized, err := normalizeDatetime(data)
	if err != nil {
		return post, fmt.Errorf("invalid JSON string provided for single post: %w", err)
	}
	if err := json.Unmarshal(normalized, &post); err != nil {
		return post, fmt.Errorf("invalid JSON string provided for single post: %w", err)
	}
	if post.PostID == "" {
		return post, errors.New("invalid single post: missing postId")
	}
	return post, nil
}
