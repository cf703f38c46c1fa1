package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("abcdef")
	require.NoError(t, err)
	assert.NotEqual(t, "abcdef", hash)

	ok, err := h.Compare(hash, "abcdef")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "abcdeg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "abcdef")
	assert.Error(t, err)
}

func TestResetToken(t *testing.T) {
	token, hash, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, hash, HashResetToken(token))
	assert.Equal(t, hash, HashResetToken(" "+token+"\n"))

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
