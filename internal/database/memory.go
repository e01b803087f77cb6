package database

import (
	"context"
	"sync"

	"facebook-post-scraper/pkg/types"
)

// MemoryStore keeps records in process. It backs memory:// dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	posts   []types.Post
	details []types.SinglePost
	images  []types.ImageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) UpsertPost(ctx context.Context, post *types.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := false
	for i := range s.posts {
		if s.posts[i].PostID == post.PostID {
			s.posts[i] = *post
			updated = true
		}
	}
	if !updated {
		s.posts = append(s.posts, *post)
	}
	return nil
}

func (s *MemoryStore) InsertPosts(ctx context.Context, posts []types.Post) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, posts...)
	return len(posts), nil
}

func (s *MemoryStore) InsertSinglePost(ctx context.Context, post *types.SinglePost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *post
	cp.ImageContent = append([]types.ImageContent(nil), post.ImageContent...)
	s.details = append(s.details, cp)
	return nil
}

func (s *MemoryStore) InsertImageRecord(ctx context.Context, record *types.ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images = append(s.images, *record)
	return nil
}

func (s *MemoryStore) MarkImageDownloaded(ctx context.Context, postID, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.details {
		if s.details[i].PostID != postID {
			continue
		}
		for j := range s.details[i].ImageContent {
			if s.details[i].ImageContent[j].URL == imageURL {
				s.details[i].ImageContent[j].MarkDownloaded()
			}
		}
	}
	return nil
}

func (s *MemoryStore) FindPosts(ctx context.Context, postID string) ([]types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []types.Post
	for _, p := range s.posts {
		if p.PostID == postID {
			found = append(found, p)
		}
	}
	return found, nil
}

func (s *MemoryStore) CountPosts(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.posts)), nil
}

// SinglePosts returns a copy of the stored detail records.
func (s *MemoryStore) SinglePosts() []types.SinglePost {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.SinglePost(nil), s.details...)
}

// ImageRecords returns a copy of the stored image records.
func (s *MemoryStore) ImageRecords() []types.ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.ImageRecord(nil), s.images...)
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
