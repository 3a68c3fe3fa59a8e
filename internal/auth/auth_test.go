package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/miniblog/internal/session"
)

func newTestAuth() (*Auth, *session.Manager) {
	sessions := session.New(session.NewMemStore(), "blog_session", time.Hour)
	return New(sessions), sessions
}

func recordingHandler(captured **session.Record) http.Handler {
	return http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		*captured = FromContext(r.Context())
	})
}

func TestAttachSessionResolvesLiveToken(t *testing.T) {
	theAuth, sessions := newTestAuth()

	created, err := sessions.Create(context.Background(), 7, "alice")
	require.NoError(t, err)

	var captured *session.Record
	handler := theAuth.AttachSession(recordingHandler(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "blog_session", Value: created.Token})
	handler.ServeHTTP(httptest.NewRecorder(), request)

	require.NotNil(t, captured)
	assert.Equal(t, int64(7), captured.UserID)
	assert.Equal(t, "alice", captured.Username)
}

func TestAttachSessionPassesAnonymousThrough(t *testing.T) {
	theAuth, _ := newTestAuth()

	var captured *session.Record
	handler := theAuth.AttachSession(recordingHandler(&captured))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Nil(t, captured)
}

func TestAttachSessionClearsStaleCookie(t *testing.T) {
	theAuth, _ := newTestAuth()

	var captured *session.Record
	handler := theAuth.AttachSession(recordingHandler(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "blog_session", Value: "long-gone-token"})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Nil(t, captured)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	theAuth, sessions := newTestAuth()

	var reached bool
	handler := theAuth.AttachSession(theAuth.RequireAuth(http.HandlerFunc(
		func(_ http.ResponseWriter, _ *http.Request) { reached = true },
	)))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/blogs/new", nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login", recorder.Header().Get("Location"))

	// The redirect plants a session whose flash explains the bounce.
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	flashes, err := sessions.ConsumeFlashes(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Login required", flashes[0].Text)
}

func TestRequireAuthLetsAuthenticatedThrough(t *testing.T) {
	theAuth, sessions := newTestAuth()

	created, err := sessions.Create(context.Background(), 7, "alice")
	require.NoError(t, err)

	var reached bool
	handler := theAuth.AttachSession(theAuth.RequireAuth(http.HandlerFunc(
		func(_ http.ResponseWriter, _ *http.Request) { reached = true },
	)))

	request := httptest.NewRequest(http.MethodGet, "/blogs/new", nil)
	request.AddCookie(&http.Cookie{Name: "blog_session", Value: created.Token})
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.True(t, reached)
}

func TestRequireAuthRejectsAnonymousFlashSession(t *testing.T) {
	theAuth, sessions := newTestAuth()

	anonymous, err := sessions.CreateAnonymous(context.Background())
	require.NoError(t, err)

	var reached bool
	handler := theAuth.AttachSession(theAuth.RequireAuth(http.HandlerFunc(
		func(_ http.ResponseWriter, _ *http.Request) { reached = true },
	)))

	request := httptest.NewRequest(http.MethodGet, "/blogs/new", nil)
	request.AddCookie(&http.Cookie{Name: "blog_session", Value: anonymous.Token})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login", recorder.Header().Get("Location"))
}
