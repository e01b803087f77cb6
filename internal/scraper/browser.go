package scraper

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"facebook-post-scraper/internal/config"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Session is one browser tab. Every call blocks until the browser has
// finished the step.
type Session interface {
	Navigate(ctx context.Context, url string) error
	SetCookies(ctx context.Context, cookies []Cookie) error
	ScrollBy(ctx context.Context, pixels int) error
	// WaitFor waits until selector matches an element in the DOM.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	HTML(ctx context.Context) (string, error)
	Close()
}

// NewSession starts the browser named by cfg.Driver.
func NewSession(cfg config.BrowserConfig, logger *logrus.Logger) (Session, error) {
	if cfg.Driver == "selenium" {
		session, err := NewSeleniumSession(cfg, logger)
		if err != nil {
			return nil, err
		}
		return session, nil
	}

	session, err := NewChromeSession(cfg, logger)
	if err != nil {
		return nil, err
	}
	return session, nil
}

type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *logrus.Logger
}

// allocatorOptions hides the usual automation markers of headless chrome.
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1280, 1024),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}
	return opts
}

func NewChromeSession(cfg config.BrowserConfig, logger *logrus.Logger) (*ChromeSession, error) {
	if cfg.ExecPath == "" && !isChromeAvailable() {
		return nil, fmt.Errorf("no suitable browser found for automation")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Printf))

	// first Run launches the browser
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("Using Chrome for browser automation")
	return &ChromeSession{
		ctx:         ctx,
		cancel:      cancel,
		cancelAlloc: cancelAlloc,
		logger:      logger,
	}, nil
}

// run executes actions on the tab and gives up when ctx is done.
func (cs *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(cs.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (cs *ChromeSession) Navigate(ctx context.Context, url string) error {
	cs.logger.Debugf("Navigating to %s", url)
	if err := cs.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (cs *ChromeSession) SetCookies(ctx context.Context, cookies []Cookie) error {
	err := cs.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			params := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)
			if sameSite, ok := cdpSameSite(c.SameSite); ok {
				params = params.WithSameSite(sameSite)
			}
			if !c.Expires.IsZero() {
				expires := cdp.TimeSinceEpoch(c.Expires.Time)
				params = params.WithExpires(&expires)
			}
			if err := params.Do(ctx); err != nil {
				return fmt.Errorf("cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	cs.logger.Debugf("Set %d cookies", len(cookies))
	return nil
}

func (cs *ChromeSession) ScrollBy(ctx context.Context, pixels int) error {
	if err := cs.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d);", pixels), nil)); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (cs *ChromeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := cs.run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed waiting for %s: %w", selector, err)
	}
	return nil
}

func (cs *ChromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := cs.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page html: %w", err)
	}
	return html, nil
}

func (cs *ChromeSession) Close() {
	cs.cancel()
	cs.cancelAlloc()
}

func cdpSameSite(value string) (network.CookieSameSite, bool) {
	switch strings.ToLower(value) {
	case "strict":
		return network.CookieSameSiteStrict, true
	case "lax":
		return network.CookieSameSiteLax, true
	case "none", "no_restriction":
		return network.CookieSameSiteNone, true
	default:
		return "", false
	}
}

func isChromeAvailable() bool {
	paths := []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}
	for _, path := range paths {
		if _, err := exec.LookPath(path); err == nil {
			return true
		}
	}
	return false
}
