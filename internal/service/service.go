// Package service implements the application logic on top of the storage
// layer: credential handling at signup and login, and the ownership
// contract for post mutations. Handlers branch on the sentinel errors it
// returns and never see store internals.
package service

import (
	"context"
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

type userKeeper interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type postKeeper interface {
	CreatePost(ctx context.Context, userID int64, title, content string) (int64, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) error
	DeletePost(ctx context.Context, id int64) error
	ListPostsWithAuthors(ctx context.Context) ([]models.PostWithAuthor, error)
}

type storage interface {
	userKeeper
	postKeeper
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// ErrValidation is returned when a form payload fails validation
// (empty username, empty title and the like).
var ErrValidation = errors.New("invalid form payload")

// Service exposes every operation of the blog application.
type Service struct {
	db       storage
	hasher   passwordHasher
	validate *validator.Validate
}

// New returns a Service over the given storage and password hasher.
func New(db storage, hasher passwordHasher) *Service {
	return &Service{
		db:       db,
		hasher:   hasher,
		validate: validator.New(),
	}
}

// Signup registers a new user. A taken username returns models.ErrConflict
// so the handler can produce the specific "already exists" outcome; any
// other failure is generic. The store is not mutated on rejection.
func (s *Service) Signup(ctx context.Context, form models.SignupForm) error {
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	digest, err := s.hasher.Hash(form.Password)
	if err != nil {
		return fmt.Errorf("hashing signup password: %w", err)
	}

	if _, err := s.db.CreateUser(ctx, form.Username, digest); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.ErrConflict
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// Login verifies the credentials and returns the matching user. An unknown
// username and a wrong password both return models.ErrInvalidCredentials;
// the two cases are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, form models.LoginForm) (*models.User, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	usr, err := s.db.GetUserByUsername(ctx, form.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	if !s.hasher.Verify(form.Password, usr.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	return usr, nil
}

// CreatePost stores a new post owned by userID.
func (s *Service) CreatePost(ctx context.Context, userID int64, form models.PostForm) (int64, error) {
	if err := s.validate.Struct(form); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	id, err := s.db.CreatePost(ctx, userID, form.Title, form.Content)
	if err != nil {
		return 0, fmt.Errorf("creating post: %w", err)
	}

	return id, nil
}

// GetPost returns the post with the given id; reading is public.
func (s *Service) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return s.db.GetPost(ctx, id)
}

// ListPosts returns every post paired with its author's username.
func (s *Service) ListPosts(ctx context.Context) ([]models.PostWithAuthor, error) {
	return s.db.ListPostsWithAuthors(ctx)
}

// GetOwnedPost returns the post only when actorID owns it. It backs the
// edit form: a non-owner gets models.ErrNotOwner and learns nothing about
// the post beyond its existence.
func (s *Service) GetOwnedPost(ctx context.Context, actorID, postID int64) (*models.Post, error) {
	post, err := s.db.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.UserID != actorID {
		return nil, models.ErrNotOwner
	}

	return post, nil
}

// UpdatePost overwrites the post's title and content after the ownership
// check passes. The check precedes the mutating statement; a rejected
// attempt leaves the store unchanged.
func (s *Service) UpdatePost(ctx context.Context, actorID, postID int64, form models.PostForm) error {
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.checkOwnership(ctx, actorID, postID); err != nil {
		return err
	}

	return s.db.UpdatePost(ctx, postID, form.Title, form.Content)
}

// DeletePost removes the post after the ownership check passes.
func (s *Service) DeletePost(ctx context.Context, actorID, postID int64) error {
	if err := s.checkOwnership(ctx, actorID, postID); err != nil {
		return err
	}

	return s.db.DeletePost(ctx, postID)
}

// checkOwnership is the ownership guard: a pure predicate over
// (actor, post) with no side effects, always evaluated before the
// mutating store call.
func (s *Service) checkOwnership(ctx context.Context, actorID, postID int64) error {
	_, err := s.GetOwnedPost(ctx, actorID, postID)
	return err
}
