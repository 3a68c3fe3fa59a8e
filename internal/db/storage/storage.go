// Package storage declares the full persistence interface the application
// is wired against. Concrete implementations live in postgresdb and
// memorystorage; mockstorage mirrors it for tests.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

// Storage is the union of the credential store and the content store.
// Implementations translate their driver-specific failures into the
// sentinel errors of the models package, so callers branch on a stable
// abstraction: models.ErrConflict for uniqueness violations and
// models.ErrNotFound for absent records.
type Storage interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)

	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreatePost(ctx context.Context, userID int64, title, content string) (int64, error)

	GetPost(ctx context.Context, id int64) (*models.Post, error)

	UpdatePost(ctx context.Context, id int64, title, content string) error

	DeletePost(ctx context.Context, id int64) error

	ListPostsWithAuthors(ctx context.Context) ([]models.PostWithAuthor, error)

	Ping(ctx context.Context) error

	Close() error
}
