package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}
