// Package auth provides the middleware that resolves the session cookie
// into an authenticated identity and the guard that cuts anonymous
// requests off before protected handlers run.
package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/miniblog/internal/logger"
	"github.com/patric-chuzhbe/miniblog/internal/models"
	"github.com/patric-chuzhbe/miniblog/internal/session"
)

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// SessionKey is the context key under which AttachSession stores the
// resolved *session.Record.
const SessionKey ContextKey = "session"

// Auth wires the session manager into the HTTP middleware chain.
type Auth struct {
	sessions *session.Manager
}

// New returns middleware bound to the given session manager.
func New(sessions *session.Manager) *Auth {
	return &Auth{sessions: sessions}
}

// FromContext returns the session record attached to the request, or nil
// for anonymous requests.
func FromContext(ctx context.Context) *session.Record {
	record, _ := ctx.Value(SessionKey).(*session.Record)
	return record
}

// AttachSession resolves the session cookie and, when it maps to a live
// session, stores the record in the request context. Anonymous requests
// pass through unchanged; a stale cookie is cleared.
func (a *Auth) AttachSession(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		token := a.sessions.TokenFromRequest(request)
		if token == "" {
			h.ServeHTTP(response, request)
			return
		}

		record, err := a.sessions.Get(request.Context(), token)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.sessions.Get()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}
		if record == nil {
			a.sessions.ClearCookie(response)
			h.ServeHTTP(response, request)
			return
		}

		ctx := context.WithValue(request.Context(), SessionKey, record)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// RequireAuth rejects requests whose session carries no identity with a
// "Login required" flash and a redirect to the login page. It runs
// strictly before the handler, so no mutation can precede the check.
// Anonymous flash-only sessions do not pass.
func (a *Auth) RequireAuth(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		record := FromContext(request.Context())
		if !record.Authenticated() {
			if record == nil {
				var err error
				record, err = a.sessions.CreateAnonymous(request.Context())
				if err != nil {
					logger.Log.Debugln("Error calling the `a.sessions.CreateAnonymous()`: ", zap.Error(err))
					http.Redirect(response, request, "/login", http.StatusFound)
					return
				}
				a.sessions.WriteCookie(response, record.Token)
			}
			if err := a.sessions.AddFlash(request.Context(), record.Token, models.FlashError, "Login required"); err != nil {
				logger.Log.Debugln("Error calling the `a.sessions.AddFlash()`: ", zap.Error(err))
			}
			http.Redirect(response, request, "/login", http.StatusFound)
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
