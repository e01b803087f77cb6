package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"facebook-post-scraper/internal/config"
	"facebook-post-scraper/internal/database"
	"facebook-post-scraper/internal/utils"
	"facebook-post-scraper/pkg/types"

	"github.com/sirupsen/logrus"
)

var ErrMissingPostURL = errors.New("no URL found in the given post data")

// FacebookScraper runs one scrape against a single browser tab and store.
type FacebookScraper struct {
	cfg     *config.Config
	session Session
	auth    *AuthManager
	store   database.Store
	logger  *logrus.Logger

	now func() time.Time
}

func NewFacebookScraper(cfg *config.Config, session Session, auth *AuthManager, store database.Store, logger *logrus.Logger) *FacebookScraper {
	return &FacebookScraper{
		cfg:     cfg,
		session: session,
		auth:    auth,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Initialize opens the site and installs the session cookies.
func (fs *FacebookScraper) Initialize(ctx context.Context) error {
	fs.logger.Info("Initializing Facebook scraper...")

	if err := fs.session.Navigate(ctx, fs.cfg.Scraper.BaseURL); err != nil {
		return err
	}
	if fs.auth != nil {
		if err := fs.session.SetCookies(ctx, fs.auth.Cookies()); err != nil {
			return err
		}
	}

	fs.logger.Info("Facebook scraper initialized successfully")
	return nil
}

func (fs *FacebookScraper) paginatorOptions() PaginatorOptions {
	s := fs.cfg.Scraper
	waitMin, waitMax := s.WaitBounds()
	return PaginatorOptions{
		ScrollMin:   s.ScrollMinPixels,
		ScrollMax:   s.ScrollMaxPixels,
		WaitMin:     waitMin,
		WaitMax:     waitMax,
		WaitTimeout: fs.selectorTimeout(),
		MaxCycles:   s.MaxCycles,
	}
}

func (fs *FacebookScraper) selectorTimeout() time.Duration {
	return time.Duration(fs.cfg.Scraper.SelectorTimeout) * time.Second
}

func (fs *FacebookScraper) newExtractor(layout Layout) *PostExtractor {
	extractor := NewPostExtractor(layout, fs.logger)
	extractor.now = fs.now
	return extractor
}

// ScrapeHashtag scrolls a hashtag result page until one snapshot holds
// maxPosts posts, then upserts the valid ones by postId.
func (fs *FacebookScraper) ScrapeHashtag(ctx context.Context, url string, maxPosts int) (*types.RunResult, error) {
	if maxPosts <= 0 {
		maxPosts = fs.cfg.Scraper.DefaultMaxPosts
	}
	log := fs.logger.WithFields(logrus.Fields{"url": url, "max_posts": maxPosts})
	log.Info("Starting hashtag scrape")

	if err := fs.session.Navigate(ctx, url); err != nil {
		return nil, err
	}

	paginator := NewPaginator(fs.session, fs.newExtractor(SearchLayout{}), CountPolicy{Threshold: maxPosts}, fs.paginatorOptions(), fs.logger)
	page, err := paginator.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape hashtag: %w", err)
	}

	valid, stats := BatchValidate(page.Batch)
	log.Infof("Validation: %s", stats)
	if len(valid) == 0 {
		log.Warn("No valid posts to save")
	}

	result := &types.RunResult{
		Extracted: len(page.Batch),
		Valid:     len(valid),
		Cycles:    page.Cycles,
	}
	for i := range valid {
		if err := fs.store.UpsertPost(ctx, &valid[i]); err != nil {
			return result, fmt.Errorf("failed to save post %s: %w", valid[i].PostID, err)
		}
		result.Saved++
	}

	log.Infof("Saved %d posts", result.Saved)
	return result, nil
}

// ScrapePage scrolls a page timeline until its oldest visible post is at or
// before until, then appends every extracted post.
func (fs *FacebookScraper) ScrapePage(ctx context.Context, url string, until time.Time) (*types.RunResult, error) {
	log := fs.logger.WithFields(logrus.Fields{"url": url, "until": utils.FormatTimestamp(until)})
	log.Info("Starting page scrape")

	if err := fs.session.Navigate(ctx, url); err != nil {
		return nil, err
	}

	policy := DatePolicy{Until: until, Logger: fs.logger}
	paginator := NewPaginator(fs.session, fs.newExtractor(TimelineLayout{}), policy, fs.paginatorOptions(), fs.logger)
	page, err := paginator.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape page: %w", err)
	}

	// validation is informational here, every extracted post is stored
	_, stats := BatchValidate(page.Batch)
	log.Infof("Validation: %s", stats)

	saved, err := fs.store.InsertPosts(ctx, page.Batch)
	if err != nil {
		return nil, fmt.Errorf("failed to save posts: %w", err)
	}

	log.Infof("Saved %d posts", saved)
	return &types.RunResult{
		Extracted: len(page.Batch),
		Valid:     stats.ValidPosts,
		Saved:     saved,
		Cycles:    page.Cycles,
	}, nil
}

// ScrapeSinglePost fetches the detail page of a feed post and stores the
// combined record.
func (fs *FacebookScraper) ScrapeSinglePost(ctx context.Context, post types.Post) (*types.RunResult, error) {
	if post.URL == nil || *post.URL == "" {
		return nil, ErrMissingPostURL
	}
	log := fs.logger.WithField("post_id", post.PostID)
	log.Info("Starting single post scrape")

	waitMin, waitMax := fs.cfg.Scraper.DetailWaitBounds()
	detailScraper := NewDetailScraper(fs.session, fs.cfg.Scraper.BaseURL, waitMin, waitMax, fs.selectorTimeout(), fs.logger)
	detail := detailScraper.Fetch(ctx, *post.URL)

	single := BuildSinglePost(post, detail, fs.now())
	if err := fs.store.InsertSinglePost(ctx, &single); err != nil {
		return nil, fmt.Errorf("failed to save single post: %w", err)
	}

	log.Info("Saved single post")
	return &types.RunResult{Extracted: 1, Valid: 1, Saved: 1}, nil
}

// DownloadImages saves the images of a single post.
func (fs *FacebookScraper) DownloadImages(ctx context.Context, post *types.SinglePost) (*types.RunResult, error) {
	fs.logger.WithField("post_id", post.PostID).Infof("Downloading %d images", len(post.ImageContent))

	var jar http.CookieJar
	if fs.auth != nil {
		jar = fs.auth.Jar()
	}
	downloader := NewImageDownloader(fs.session, jar, fs.cfg.Browser.UserAgent, fs.store,
		fs.cfg.Scraper.BaseURL, fs.cfg.Scraper.OutputDir, fs.selectorTimeout(), fs.logger)
	downloader.now = fs.now

	saved, err := downloader.Download(ctx, post)
	result := &types.RunResult{
		Extracted: len(post.ImageContent),
		Valid:     len(post.ImageContent),
		Saved:     saved,
	}
	if err != nil {
		return result, fmt.Errorf("failed to download images: %w", err)
	}
	return result, nil
}

// BuildSinglePost merges a feed post with its detail page.
func BuildSinglePost(post types.Post, detail PostDetail, now time.Time) types.SinglePost {
	single := types.SinglePost{
		PostID:            post.PostID,
		ScrapedAt:         now,
		Datetime:          post.Datetime,
		FullText:          detail.FullText,
		ImageContent:      []types.ImageContent{},
		Reactions:         utils.ParseReactions(detail.ReactionLabels),
		Comments:          detail.Comments,
		AdditionalContent: detail.ReactionURL,
	}

	for _, ref := range post.ImageRefs {
		if ref != "" {
			single.ImageContent = append(single.ImageContent, types.ImageContent{URL: ref})
		}
	}
	if single.Comments == nil {
		single.Comments = []string{}
	}
	if post.ShareCount != nil {
		if n, ok := utils.ParseCount(post.ShareCount.String()); ok {
			single.ShareCount = &n
		}
	}
	if post.CommentCount != nil {
		if n, ok := utils.ParseCount(post.CommentCount.String()); ok {
			single.CommentCount = &n
		}
	}

	return single
}
