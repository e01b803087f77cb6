package scraper

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"facebook-post-scraper/internal/database"
	"facebook-post-scraper/pkg/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ImageDownloader saves the full size images of a single post to disk.
type ImageDownloader struct {
	session     Session
	client      *resty.Client
	store       database.Store
	baseURL     string
	outputDir   string
	waitTimeout time.Duration
	logger      *logrus.Logger

	now func() time.Time
}

func NewImageDownloader(session Session, jar http.CookieJar, userAgent string, store database.Store, baseURL, outputDir string, waitTimeout time.Duration, logger *logrus.Logger) *ImageDownloader {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(30 * time.Second)
	if jar != nil {
		client.SetCookieJar(jar)
	}

	return &ImageDownloader{
		session:     session,
		client:      client,
		store:       store,
		baseURL:     strings.TrimRight(baseURL, "/"),
		outputDir:   outputDir,
		waitTimeout: waitTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// ImagePath is where image index of a post is written.
func ImagePath(outputDir, postID string, index int) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s-%d.jpg", postID, index))
}

// Download fetches every image of the post that is not downloaded yet.
// A failed image is logged and skipped. It returns the number of images
// written.
func (d *ImageDownloader) Download(ctx context.Context, post *types.SinglePost) (int, error) {
	log := d.logger.WithField("post_id", post.PostID)

	if len(post.ImageContent) == 0 {
		log.Info("No imgContent found for post")
		return 0, nil
	}

	if err := os.MkdirAll(d.outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	saved := 0
	for i := range post.ImageContent {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		img := &post.ImageContent[i]
		if img.Downloaded {
			log.Debugf("Image %d already downloaded", i+1)
			continue
		}

		path := ImagePath(d.outputDir, post.PostID, i)
		if err := d.downloadOne(ctx, img.URL, path); err != nil {
			log.Errorf("Failed to download image %d: %v", i+1, err)
			continue
		}

		record := &types.ImageRecord{
			PostID:        post.PostID,
			ImageFilePath: path,
			DownloadedAt:  d.now(),
		}
		if err := d.store.InsertImageRecord(ctx, record); err != nil {
			log.Errorf("Failed to save image record %d: %v", i+1, err)
			continue
		}
		if err := d.store.MarkImageDownloaded(ctx, post.PostID, img.URL); err != nil {
			log.Warnf("Failed to mark image %d downloaded: %v", i+1, err)
		}
		img.MarkDownloaded()
		saved++

		log.Infof("Image saved successfully: %s", path)
	}

	return saved, nil
}

func (d *ImageDownloader) downloadOne(ctx context.Context, ref, path string) error {
	if err := d.session.Navigate(ctx, AbsoluteURL(d.baseURL, ref)); err != nil {
		return err
	}
	if err := d.session.WaitFor(ctx, DetailLayout.ImageSource, d.waitTimeout); err != nil {
		return err
	}

	html, err := d.session.HTML(ctx)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse photo page: %w", err)
	}

	src, ok := doc.Find(DetailLayout.ImageSource).First().Attr("src")
	if !ok || src == "" {
		return fmt.Errorf("image not found")
	}

	resp, err := d.client.R().SetContext(ctx).Get(src)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to fetch image: status code %d", resp.StatusCode())
	}

	if err := os.WriteFile(path, resp.Body(), 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
