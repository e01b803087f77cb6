package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"facebook-post-scraper/internal/utils"
	"facebook-post-scraper/pkg/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// StopPolicy decides after each extraction whether scrolling can stop.
type StopPolicy interface {
	Done(batch []types.Post) bool
}

// CountPolicy stops once a single snapshot holds Threshold posts.
type CountPolicy struct {
	Threshold int
}

func (p CountPolicy) Done(batch []types.Post) bool {
	return len(batch) >= p.Threshold
}

// DatePolicy stops once the oldest dated post of a snapshot is at or
// before Until. A snapshot without any dated post counts as epoch and so
// stops the scroll, following the original scraper rather than scrolling on.
type DatePolicy struct {
	Until  time.Time
	Logger *logrus.Logger
}

func (p DatePolicy) Done(batch []types.Post) bool {
	oldest, ok := OldestDate(batch)
	if !ok {
		if p.Logger != nil {
			p.Logger.Warn("No post with a date in batch, treating oldest date as epoch")
		}
		oldest = time.Unix(0, 0)
	}
	return !oldest.After(p.Until)
}

// OldestDate returns the earliest parsed datetime of the batch. Dates that
// fell back to the capture time are skipped.
func OldestDate(batch []types.Post) (time.Time, bool) {
	var oldest time.Time
	found := false
	for _, p := range batch {
		if p.Datetime == nil || p.DatetimeFallback {
			continue
		}
		if !found || p.Datetime.Before(oldest) {
			oldest = *p.Datetime
			found = true
		}
	}
	return oldest, found
}

type PaginatorOptions struct {
	ScrollMin   int
	ScrollMax   int
	WaitMin     time.Duration
	WaitMax     time.Duration
	WaitTimeout time.Duration
	// MaxCycles bounds the scroll cycles, 0 means unbounded.
	MaxCycles int
}

// Paginator scrolls a feed until its policy is satisfied.
type Paginator struct {
	session   Session
	extractor *PostExtractor
	policy    StopPolicy
	opts      PaginatorOptions
	logger    *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

type PageResult struct {
	Batch  []types.Post
	Cycles int
}

func NewPaginator(session Session, extractor *PostExtractor, policy StopPolicy, opts PaginatorOptions, logger *logrus.Logger) *Paginator {
	return &Paginator{
		session:   session,
		extractor: extractor,
		policy:    policy,
		opts:      opts,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Run cycles scroll, wait, snapshot and extract, and returns the batch of
// the last snapshot. Each snapshot holds every post loaded so far, so the
// last batch is the whole result. Browser errors end the run.
func (pg *Paginator) Run(ctx context.Context) (*PageResult, error) {
	result := &PageResult{}

	for {
		if pg.opts.MaxCycles > 0 && result.Cycles >= pg.opts.MaxCycles {
			pg.logger.Warnf("Reached %d scroll cycles without meeting the stop condition", pg.opts.MaxCycles)
			return result, nil
		}
		result.Cycles++

		pixels := utils.RandomInt(pg.opts.ScrollMin, pg.opts.ScrollMax)
		if err := pg.session.ScrollBy(ctx, pixels); err != nil {
			return result, err
		}

		if err := pg.sleep(ctx, utils.Jitter(pg.opts.WaitMin, pg.opts.WaitMax)); err != nil {
			return result, err
		}

		batch, err := pg.snapshot(ctx)
		if err != nil {
			return result, err
		}
		result.Batch = batch

		pg.logger.WithFields(logrus.Fields{
			"cycle":  result.Cycles,
			"posts":  len(batch),
			"scroll": pixels,
		}).Info("Extracted batch")

		if pg.policy.Done(batch) {
			return result, nil
		}
	}
}

func (pg *Paginator) snapshot(ctx context.Context) ([]types.Post, error) {
	layout := pg.extractor.Layout()
	if err := pg.session.WaitFor(ctx, layout.WaitSelector(), pg.opts.WaitTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// same as an empty feed: keep scrolling
		pg.logger.Warnf("Feed container not found: %v", err)
		return []types.Post{}, nil
	}

	html, err := pg.session.HTML(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}
	return pg.extractor.ExtractBatch(doc), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
