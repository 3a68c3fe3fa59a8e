// Package mockstorage provides a testify-based mock implementation of the
// storage interface. It is used to simulate storage behavior, and in
// particular storage failures, in service and router tests.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

// StorageMock is a testify mock implementing storage.Storage.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks user creation and returns a generated id.
func (m *StorageMock) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

// GetUserByUsername mocks fetching a user by username.
func (m *StorageMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Error(1)
}

// CreatePost mocks post creation and returns a generated id.
func (m *StorageMock) CreatePost(ctx context.Context, userID int64, title, content string) (int64, error) {
	args := m.Called(ctx, userID, title, content)
	return args.Get(0).(int64), args.Error(1)
}

// GetPost mocks fetching a post by id.
func (m *StorageMock) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

// UpdatePost mocks overwriting a post's title and content.
func (m *StorageMock) UpdatePost(ctx context.Context, id int64, title, content string) error {
	args := m.Called(ctx, id, title, content)
	return args.Error(0)
}

// DeletePost mocks removing a post.
func (m *StorageMock) DeletePost(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ListPostsWithAuthors mocks the listing join.
func (m *StorageMock) ListPostsWithAuthors(ctx context.Context) ([]models.PostWithAuthor, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.PostWithAuthor)
	return list, args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
