// Package models defines the domain types shared between the storage,
// service and router layers, the form payloads accepted from clients,
// and the sentinel errors the storage implementations translate
// driver-specific failures into.
package models

import (
	"errors"
	"time"
)

// User is a registered account. PasswordHash is an opaque bcrypt digest;
// it is never rendered or logged.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Post is a blog entry owned by the user referenced by UserID.
// UserID is set at creation time and never changes.
type Post struct {
	ID        int64
	Title     string
	Content   string
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostWithAuthor pairs a post with its author's username for listing pages.
type PostWithAuthor struct {
	Post
	AuthorName string
}

// FlashKind distinguishes success notifications from error notifications.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot notification attached to a session and consumed
// on the next rendered page.
type Flash struct {
	Kind FlashKind `json:"kind"`
	Text string    `json:"text"`
}

// SignupForm is the POST /signup payload.
type SignupForm struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,min=1,max=72"`
}

// LoginForm is the POST /login payload.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// PostForm is the payload for creating and updating posts.
type PostForm struct {
	Title   string `validate:"required,max=255"`
	Content string
}

// ErrConflict is returned when an insert violates a uniqueness rule,
// e.g. a duplicate username at signup.
var ErrConflict = errors.New("record already exists")

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrNotOwner is returned when the acting user does not own the post
// targeted by a mutation. Handlers surface it as a generic denial.
var ErrNotOwner = errors.New("post is owned by another user")

// ErrInvalidCredentials covers both an unknown username and a wrong
// password so that login failures are indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")
