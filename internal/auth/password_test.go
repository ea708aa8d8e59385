package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("password1", hash))
	assert.ErrorIs(t, CheckPassword("wrong-password", hash), ErrInvalidPassword)
}

func TestGenerateSessionToken(t *testing.T) {
	token1, err := GenerateSessionToken()
	require.NoError(t, err)
	token2, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.Len(t, token1, 64) // 32 bytes hex encoded
	assert.NotEqual(t, token1, token2)
}
