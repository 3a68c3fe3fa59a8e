// Package memorystorage is the in-process implementation of the storage
// interface. It is the default backend when no database DSN is configured
// and the backend the handler tests run against.
package memorystorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

// MemoryStorage keeps users and posts in mutex-guarded maps.
type MemoryStorage struct {
	mu sync.RWMutex

	users           map[int64]*models.User
	usersByUsername map[string]int64
	nextUserID      int64

	posts      map[int64]*models.Post
	nextPostID int64
}

// New returns an empty MemoryStorage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:           map[int64]*models.User{},
		usersByUsername: map[string]int64{},
		nextUserID:      1,
		posts:           map[int64]*models.Post{},
		nextPostID:      1,
	}, nil
}

// CreateUser inserts a new user; a duplicate username returns
// models.ErrConflict and leaves the store unchanged.
func (s *MemoryStorage) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[username]; exists {
		return 0, models.ErrConflict
	}

	id := s.nextUserID
	s.nextUserID++

	s.users[id] = &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.usersByUsername[username] = id

	return id, nil
}

// GetUserByUsername fetches a user by exact (case-sensitive) username.
func (s *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByUsername[username]
	if !ok {
		return nil, models.ErrNotFound
	}

	usr := *s.users[id]

	return &usr, nil
}

// CreatePost inserts a new post owned by userID.
func (s *MemoryStorage) CreatePost(ctx context.Context, userID int64, title, content string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextPostID
	s.nextPostID++

	now := time.Now()
	s.posts[id] = &models.Post{
		ID:        id,
		Title:     title,
		Content:   content,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return id, nil
}

// GetPost fetches a post by id.
func (s *MemoryStorage) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	copied := *post

	return &copied, nil
}

// UpdatePost overwrites title and content of the given post.
func (s *MemoryStorage) UpdatePost(ctx context.Context, id int64, title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return models.ErrNotFound
	}

	post.Title = title
	post.Content = content
	post.UpdatedAt = time.Now()

	return nil
}

// DeletePost removes the given post.
func (s *MemoryStorage) DeletePost(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return models.ErrNotFound
	}

	delete(s.posts, id)

	return nil
}

// ListPostsWithAuthors returns every post joined with its author's
// username, newest first.
func (s *MemoryStorage) ListPostsWithAuthors(ctx context.Context) ([]models.PostWithAuthor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := funk.Keys(s.posts).([]int64)
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	result := []models.PostWithAuthor{}
	for _, id := range ids {
		post := s.posts[id]
		item := models.PostWithAuthor{Post: *post}
		if usr, ok := s.users[post.UserID]; ok {
			item.AuthorName = usr.Username
		}
		result = append(result, item)
	}

	return result, nil
}

// Ping always succeeds for the in-memory backend.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}
