//go:build integration

package database

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"

	"facebook-post-scraper/internal/config"
	"facebook-post-scraper/internal/database/models"
	"facebook-post-scraper/pkg/types"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	ctx := context.Background()

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started:          true,
		ContainerRequest: req,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Fatal(err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func quietStoreLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestMongoStoreIntegration(t *testing.T) {
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
	}, "27017/tcp")

	ctx := context.Background()
	cfg := config.Default().Database
	store, err := NewMongoStore(ctx, "mongodb://"+addr, &cfg, quietStoreLogger())
	require.NoError(t, err)
	defer store.Close(ctx)

	exerciseStore(t, store)

	var stored types.SinglePost
	require.NoError(t, store.details.FindOne(ctx, bson.M{"postId": "fb_x_1_1"}).Decode(&stored))
	require.False(t, stored.ImageContent[0].Downloaded)
	require.True(t, stored.ImageContent[1].Downloaded)
}

func TestPostgresStoreIntegration(t *testing.T) {
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "scraper",
			"POSTGRES_PASSWORD": "scraper",
			"POSTGRES_DB":       "facebook",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}, "5432/tcp")

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, "postgres://scraper:scraper@"+addr+"/facebook?sslmode=disable", quietStoreLogger())
	require.NoError(t, err)
	defer store.Close(ctx)

	exerciseStore(t, store)

	var doc models.SinglePostDocument
	err = store.conn.QueryRowContext(ctx, `SELECT document FROM fb_single_posts WHERE post_id = $1`, "fb_x_1_1").Scan(&doc)
	require.NoError(t, err)
	require.False(t, doc.ImageContent[0].Downloaded)
	require.True(t, doc.ImageContent[1].Downloaded)
}

// exerciseStore checks the upsert, insert and image flag paths shared by
// every backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	post := types.Post{
		PostID:    "fb_john.doe_1700000000000_42",
		ScrapedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Username:  strPtr("john.doe"),
		URL:       strPtr("/story.php?story_fbid=42&id=7"),
	}
	require.NoError(t, store.UpsertPost(ctx, &post))
	require.NoError(t, store.UpsertPost(ctx, &post))

	updated := post
	updated.ShareCount = types.CountOf(strPtr("12"))
	require.NoError(t, store.UpsertPost(ctx, &updated))

	found, err := store.FindPosts(ctx, post.PostID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, types.RawCount("12"), *found[0].ShareCount)

	page := types.Post{PostID: "fb_page_1_1"}
	n, err := store.InsertPosts(ctx, []types.Post{page, page})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	count, err := store.CountPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	detail := types.SinglePost{
		PostID:    "fb_x_1_1",
		ScrapedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ImageContent: []types.ImageContent{
			{URL: "/photo.php?fbid=1"},
			{URL: "/photo.php?fbid=2"},
		},
		Comments: []string{},
	}
	require.NoError(t, store.InsertSinglePost(ctx, &detail))
	require.NoError(t, store.InsertImageRecord(ctx, &types.ImageRecord{
		PostID:        "fb_x_1_1",
		ImageFilePath: "downloads/fb_x_1_1-1.jpg",
		DownloadedAt:  time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.MarkImageDownloaded(ctx, "fb_x_1_1", "/photo.php?fbid=2"))
}
