package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

func newTestManager() *Manager {
	return New(NewMemStore(), "blog_session", time.Hour)
}

func TestCreateIssuesFreshTokenPerLogin(t *testing.T) {
	manager := newTestManager()

	first, err := manager.Create(context.Background(), 1, "alice")
	require.NoError(t, err)
	second, err := manager.Create(context.Background(), 1, "alice")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestGetReturnsStoredIdentity(t *testing.T) {
	manager := newTestManager()

	created, err := manager.Create(context.Background(), 42, "alice")
	require.NoError(t, err)

	loaded, err := manager.Get(context.Background(), created.Token)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, int64(42), loaded.UserID)
	assert.Equal(t, "alice", loaded.Username)
	assert.True(t, loaded.Authenticated())
}

func TestGetUnknownToken(t *testing.T) {
	manager := newTestManager()

	loaded, err := manager.Get(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	loaded, err = manager.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDestroyIsIdempotent(t *testing.T) {
	manager := newTestManager()

	created, err := manager.Create(context.Background(), 1, "alice")
	require.NoError(t, err)

	require.NoError(t, manager.Destroy(context.Background(), created.Token))
	require.NoError(t, manager.Destroy(context.Background(), created.Token))
	require.NoError(t, manager.Destroy(context.Background(), ""))

	loaded, err := manager.Get(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestAnonymousSessionCarriesNoIdentity(t *testing.T) {
	manager := newTestManager()

	record, err := manager.CreateAnonymous(context.Background())
	require.NoError(t, err)

	assert.False(t, record.Authenticated())

	loaded, err := manager.Get(context.Background(), record.Token)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.False(t, loaded.Authenticated())
}

func TestFlashesAreReadAtMostOnce(t *testing.T) {
	manager := newTestManager()

	record, err := manager.Create(context.Background(), 1, "alice")
	require.NoError(t, err)

	require.NoError(t, manager.AddFlash(context.Background(), record.Token, models.FlashSuccess, "Blog created"))
	require.NoError(t, manager.AddFlash(context.Background(), record.Token, models.FlashError, "Login required"))

	flashes, err := manager.ConsumeFlashes(context.Background(), record.Token)
	require.NoError(t, err)
	require.Len(t, flashes, 2)
	assert.Equal(t, models.Flash{Kind: models.FlashSuccess, Text: "Blog created"}, flashes[0])
	assert.Equal(t, models.Flash{Kind: models.FlashError, Text: "Login required"}, flashes[1])

	flashes, err = manager.ConsumeFlashes(context.Background(), record.Token)
	require.NoError(t, err)
	assert.Empty(t, flashes)
}

func TestExpiredSessionIsGone(t *testing.T) {
	store := NewMemStore()
	manager := New(store, "blog_session", time.Hour)

	expired := &Record{
		Token:     "expired-token",
		UserID:    1,
		Username:  "alice",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Save(context.Background(), expired))

	loaded, err := manager.Get(context.Background(), expired.Token)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDeleteExpiredSweepsOnlyExpired(t *testing.T) {
	store := NewMemStore()

	require.NoError(t, store.Save(context.Background(), &Record{
		Token:     "live",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.Save(context.Background(), &Record{
		Token:     "dead",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	removed, err := store.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	live, err := store.Load(context.Background(), "live")
	require.NoError(t, err)
	assert.NotNil(t, live)
}

func TestCookieRoundTrip(t *testing.T) {
	manager := newTestManager()

	recorder := httptest.NewRecorder()
	manager.WriteCookie(recorder, "the-token")

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range recorder.Result().Cookies() {
		request.AddCookie(cookie)
	}

	assert.Equal(t, "the-token", manager.TokenFromRequest(request))
}

func TestClearCookieExpiresIt(t *testing.T) {
	manager := newTestManager()

	recorder := httptest.NewRecorder()
	manager.ClearCookie(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
