package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	theHasher := New(bcrypt.MinCost)

	digest, err := theHasher.Hash("s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	assert.True(t, theHasher.Verify("s3cret", digest))
	assert.False(t, theHasher.Verify("S3cret", digest))
	assert.False(t, theHasher.Verify("", digest))
}

func TestDigestIsSelfDescribing(t *testing.T) {
	theHasher := New(bcrypt.MinCost)

	digest, err := theHasher.Hash("s3cret")
	require.NoError(t, err)

	// The bcrypt digest embeds algorithm, cost and salt.
	assert.True(t, strings.HasPrefix(digest, "$2"))

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHashIsSaltedPerCall(t *testing.T) {
	theHasher := New(bcrypt.MinCost)

	first, err := theHasher.Hash("same-password")
	require.NoError(t, err)
	second, err := theHasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, theHasher.Verify("same-password", first))
	assert.True(t, theHasher.Verify("same-password", second))
}

func TestOutOfRangeCostFallsBackToDefault(t *testing.T) {
	theHasher := New(99)

	digest, err := theHasher.Hash("s3cret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestTooLongPasswordFailsHashing(t *testing.T) {
	theHasher := New(bcrypt.MinCost)

	// bcrypt rejects passwords longer than 72 bytes.
	_, err := theHasher.Hash(strings.Repeat("x", 100))
	assert.Error(t, err)
}
