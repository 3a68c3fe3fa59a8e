// Package session implements server-side sessions keyed by an opaque
// client-held token delivered in a cookie. The backing store is injectable:
// the bundled MemStore suits a single instance, a shared implementation of
// Store makes the manager multi-instance capable.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

// Record is the server-side session state. UserID and Username are set
// once at creation and never change for the lifetime of the session.
// An anonymous record (zero UserID) only carries flash messages across
// redirects for logged-out clients.
type Record struct {
	Token     string
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// Authenticated reports whether the session carries an identity.
func (r *Record) Authenticated() bool {
	return r != nil && r.UserID != 0
}

// Store persists session records. Load must return (nil, nil) for tokens
// that are unknown or expired. AppendFlash and TakeFlashes must be atomic
// with respect to each other so a flash is observed at most once.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Load(ctx context.Context, token string) (*Record, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
	AppendFlash(ctx context.Context, token string, flash models.Flash) error
	TakeFlashes(ctx context.Context, token string) ([]models.Flash, error)
}

// Manager creates, resolves and destroys sessions and owns the session
// cookie contract.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
}

// New returns a Manager over the given store.
func New(store Store, cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Create establishes a session for an authenticated identity and returns
// its record. The token is always freshly generated: a login never reuses
// a token that existed before authentication.
func (m *Manager) Create(ctx context.Context, userID int64, username string) (*Record, error) {
	record := &Record{
		Token:     uuid.NewString(),
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	if err := m.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	return record, nil
}

// CreateAnonymous establishes an identity-less session. It exists so that
// flash messages survive a redirect for clients that are not logged in;
// it grants no access and is discarded at login in favor of a fresh token.
func (m *Manager) CreateAnonymous(ctx context.Context) (*Record, error) {
	record := &Record{
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(m.ttl),
	}

	if err := m.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	return record, nil
}

// Get resolves a token to its session record, or (nil, nil) when the
// token is empty, unknown or expired.
func (m *Manager) Get(ctx context.Context, token string) (*Record, error) {
	if token == "" {
		return nil, nil
	}

	return m.store.Load(ctx, token)
}

// Destroy removes the session. Destroying an absent session is not an
// error, so logout is idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return m.store.Delete(ctx, token)
}

// AddFlash attaches a one-shot notification to the session.
func (m *Manager) AddFlash(ctx context.Context, token string, kind models.FlashKind, text string) error {
	if token == "" {
		return nil
	}

	return m.store.AppendFlash(ctx, token, models.Flash{Kind: kind, Text: text})
}

// ConsumeFlashes returns the pending flashes and clears them, so each
// flash is rendered at most once.
func (m *Manager) ConsumeFlashes(ctx context.Context, token string) ([]models.Flash, error) {
	if token == "" {
		return nil, nil
	}

	return m.store.TakeFlashes(ctx, token)
}

// TokenFromRequest extracts the session token from the request cookie.
// It returns "" when no session cookie is present.
func (m *Manager) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// WriteCookie delivers the session token to the client.
func (m *Manager) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(m.ttl.Seconds()),
	})
}

// ClearCookie tells the client to drop the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
