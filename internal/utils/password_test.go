package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("", "s3cret"))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	h1, err := HashPassword("same", 4)
	require.NoError(t, err)
	h2, err := HashPassword("same", 4)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
