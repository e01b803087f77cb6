package database

import (
	"context"
	"fmt"
	"time"

	"facebook-post-scraper/internal/config"
	"facebook-post-scraper/pkg/types"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	client  *mongo.Client
	posts   *mongo.Collection
	details *mongo.Collection
	images  *mongo.Collection
	logger  *logrus.Logger
}

func NewMongoStore(ctx context.Context, uri string, cfg *config.DatabaseConfig, logger *logrus.Logger) (*MongoStore, error) {
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second

	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetSocketTimeout(2 * timeout)

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Name)
	logger.Infof("MongoDB connection established (database=%s)", cfg.Name)

	return &MongoStore{
		client:  client,
		posts:   db.Collection(cfg.PostsCollection),
		details: db.Collection(cfg.DetailsCollection),
		images:  db.Collection(cfg.ImagesCollection),
		logger:  logger,
	}, nil
}

// UpsertPost inserts the post or overwrites the fields of the stored post
// with the same postId.
func (s *MongoStore) UpsertPost(ctx context.Context, post *types.Post) error {
	_, err := s.posts.UpdateOne(ctx,
		bson.M{"postId": post.PostID},
		bson.M{"$set": post},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert post %s: %w", post.PostID, err)
	}
	return nil
}

func (s *MongoStore) InsertPosts(ctx context.Context, posts []types.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(posts))
	for i := range posts {
		docs[i] = posts[i]
	}

	res, err := s.posts.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert posts: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (s *MongoStore) InsertSinglePost(ctx context.Context, post *types.SinglePost) error {
	if _, err := s.details.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to insert single post %s: %w", post.PostID, err)
	}
	return nil
}

func (s *MongoStore) InsertImageRecord(ctx context.Context, record *types.ImageRecord) error {
	if _, err := s.images.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert image record for %s: %w", record.PostID, err)
	}
	return nil
}

func (s *MongoStore) MarkImageDownloaded(ctx context.Context, postID, imageURL string) error {
	_, err := s.details.UpdateMany(ctx,
		bson.M{"postId": postID, "imgContent.url": imageURL},
		bson.M{"$set": bson.M{"imgContent.$.downloaded": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark image downloaded for %s: %w", postID, err)
	}
	return nil
}

func (s *MongoStore) FindPosts(ctx context.Context, postID string) ([]types.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.M{"postId": postID})
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []types.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (s *MongoStore) CountPosts(ctx context.Context) (int64, error) {
	count, err := s.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	s.logger.Info("Disconnected from MongoDB")
	return nil
}
