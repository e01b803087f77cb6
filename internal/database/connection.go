package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"facebook-post-scraper/internal/config"
	"facebook-post-scraper/pkg/types"

	"github.com/sirupsen/logrus"
)

// Store persists scraped records. Posts are upserted by postId or
// appended without dedup; details and image records are appended.
type Store interface {
	UpsertPost(ctx context.Context, post *types.Post) error
	InsertPosts(ctx context.Context, posts []types.Post) (int, error)
	InsertSinglePost(ctx context.Context, post *types.SinglePost) error
	InsertImageRecord(ctx context.Context, record *types.ImageRecord) error
	MarkImageDownloaded(ctx context.Context, postID, imageURL string) error
	FindPosts(ctx context.Context, postID string) ([]types.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// NewConnection opens the store named by the connection string scheme:
// mongodb:// and mongodb+srv:// use MongoDB, postgres:// and postgresql://
// use PostgreSQL, memory:// keeps everything in process.
func NewConnection(ctx context.Context, uri string, cfg *config.DatabaseConfig, logger *logrus.Logger) (Store, error) {
	scheme, err := uriScheme(uri)
	if err != nil {
		return nil, err
	}

	logger.Infof("Connecting to %s store: %s", scheme, redact(uri))

	switch scheme {
	case "mongodb", "mongodb+srv":
		store, err := NewMongoStore(ctx, uri, cfg, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres", "postgresql":
		store, err := NewPostgresStore(ctx, uri, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme: %s", scheme)
	}
}

func uriScheme(uri string) (string, error) {
	idx := strings.Index(uri, "://")
	if idx <= 0 {
		return "", fmt.Errorf("invalid database uri: missing scheme")
	}
	return strings.ToLower(uri[:idx]), nil
}

// redact hides the password of a connection string for logging.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
