package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	_, err = theStorage.CreateUser(context.Background(), "alice", "hash-one")
	require.NoError(t, err)

	_, err = theStorage.CreateUser(context.Background(), "alice", "hash-two")
	assert.ErrorIs(t, err, models.ErrConflict)

	// The rejected insert must not have touched the stored record.
	usr, err := theStorage.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-one", usr.PasswordHash)
}

func TestUsernameLookupIsCaseSensitive(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	_, err = theStorage.CreateUser(context.Background(), "alice", "hash")
	require.NoError(t, err)

	_, err = theStorage.GetUserByUsername(context.Background(), "Alice")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostLifecycle(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	userID, err := theStorage.CreateUser(context.Background(), "alice", "hash")
	require.NoError(t, err)

	postID, err := theStorage.CreatePost(context.Background(), userID, "T", "C")
	require.NoError(t, err)

	post, err := theStorage.GetPost(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "C", post.Content)
	assert.Equal(t, userID, post.UserID)

	require.NoError(t, theStorage.UpdatePost(context.Background(), postID, "T2", "C2"))

	post, err = theStorage.GetPost(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, "T2", post.Title)
	assert.Equal(t, "C2", post.Content)

	require.NoError(t, theStorage.DeletePost(context.Background(), postID))

	_, err = theStorage.GetPost(context.Background(), postID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMutationsOnMissingPost(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	assert.ErrorIs(t, theStorage.UpdatePost(context.Background(), 999, "T", "C"), models.ErrNotFound)
	assert.ErrorIs(t, theStorage.DeletePost(context.Background(), 999), models.ErrNotFound)
}

func TestPingAndCloseAreNoOps(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	assert.NoError(t, theStorage.Ping(context.Background()))
	assert.NoError(t, theStorage.Close())
}

func TestListPostsWithAuthors(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	list, err := theStorage.ListPostsWithAuthors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	aliceID, err := theStorage.CreateUser(context.Background(), "alice", "hash")
	require.NoError(t, err)
	bobID, err := theStorage.CreateUser(context.Background(), "bob", "hash")
	require.NoError(t, err)

	_, err = theStorage.CreatePost(context.Background(), aliceID, "first", "")
	require.NoError(t, err)
	_, err = theStorage.CreatePost(context.Background(), bobID, "second", "")
	require.NoError(t, err)

	list, err = theStorage.ListPostsWithAuthors(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first, each post paired with its own author.
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "bob", list[0].AuthorName)
	assert.Equal(t, "first", list[1].Title)
	assert.Equal(t, "alice", list[1].AuthorName)
}
