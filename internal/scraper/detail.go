package scraper

import (
	"context"
	"strings"
	"time"

	"facebook-post-scraper/internal/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// PostDetail is what the single post page adds to a feed post.
type PostDetail struct {
	FullText       *string
	Comments       []string
	ReactionURL    *string
	ReactionLabels []string
}

type DetailScraper struct {
	session     Session
	baseURL     string
	waitMin     time.Duration
	waitMax     time.Duration
	waitTimeout time.Duration
	logger      *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewDetailScraper(session Session, baseURL string, waitMin, waitMax, waitTimeout time.Duration, logger *logrus.Logger) *DetailScraper {
	return &DetailScraper{
		session:     session,
		baseURL:     strings.TrimRight(baseURL, "/"),
		waitMin:     waitMin,
		waitMax:     waitMax,
		waitTimeout: waitTimeout,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// Fetch opens the post page and, when it links one, the reactions page.
// A failing step is logged and leaves the rest of the detail empty.
func (ds *DetailScraper) Fetch(ctx context.Context, postURL string) PostDetail {
	log := ds.logger.WithField("url", postURL)

	if err := ds.session.Navigate(ctx, AbsoluteURL(ds.baseURL, postURL)); err != nil {
		log.Errorf("Error fetching post data: %v", err)
		return PostDetail{}
	}
	if err := ds.sleep(ctx, utils.Jitter(ds.waitMin, ds.waitMax)); err != nil {
		log.Errorf("Error fetching post data: %v", err)
		return PostDetail{}
	}

	doc, err := ds.document(ctx, DetailLayout.Root)
	if err != nil {
		log.Errorf("Error fetching post data: %v", err)
		return PostDetail{}
	}
	detail := ParseDetail(doc)

	if detail.ReactionURL == nil {
		return detail
	}

	if err := ds.session.Navigate(ctx, AbsoluteURL(ds.baseURL, *detail.ReactionURL)); err != nil {
		log.Errorf("Error fetching post data: %v", err)
		return PostDetail{}
	}
	reactions, err := ds.document(ctx, DetailLayout.ReactionsRoot)
	if err != nil {
		log.Errorf("Error fetching post data: %v", err)
		return PostDetail{}
	}
	detail.ReactionLabels = ParseReactionLabels(reactions)

	log.Infof("Fetched detail with %d comments and %d reaction labels", len(detail.Comments), len(detail.ReactionLabels))
	return detail
}

func (ds *DetailScraper) document(ctx context.Context, waitSelector string) (*goquery.Document, error) {
	if err := ds.session.WaitFor(ctx, waitSelector, ds.waitTimeout); err != nil {
		return nil, err
	}
	html, err := ds.session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// ParseDetail reads the single post page.
func ParseDetail(doc *goquery.Document) PostDetail {
	detail := PostDetail{}

	text := doc.Find(DetailLayout.FullText).First().Text()
	if text == "" {
		text = doc.Find(DetailLayout.FullTextFallback).First().Text()
	}
	if text != "" {
		detail.FullText = &text
	}

	if href, ok := doc.Find(DetailLayout.ReactionLink).First().Attr("href"); ok && href != "" {
		detail.ReactionURL = &href
	}

	detail.Comments = []string{}
	doc.Find(DetailLayout.Comments).Each(func(_ int, s *goquery.Selection) {
		detail.Comments = append(detail.Comments, s.Text())
	})

	return detail
}

// ParseReactionLabels returns the aria-labels of the reactions page, for
// example "1.2K people reacted with Like".
func ParseReactionLabels(doc *goquery.Document) []string {
	labels := []string{}
	doc.Find(DetailLayout.ReactionLabels).Each(func(_ int, s *goquery.Selection) {
		if label, ok := s.Attr("aria-label"); ok {
			labels = append(labels, label)
		}
	})
	return labels
}

// AbsoluteURL prefixes site relative references with base.
func AbsoluteURL(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}
