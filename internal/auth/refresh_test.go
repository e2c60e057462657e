package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRefreshTokenHashMatches(t *testing.T) {
	raw, hash, err := NewRefreshToken()
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.Len(t, hash, 64)
	require.True(t, RefreshTokenMatches(raw, hash))
}

func TestRefreshTokenMismatch(t *testing.T) {
	_, hash, err := NewRefreshToken()
	require.NoError(t, err)
	require.False(t, RefreshTokenMatches("forged", hash))
}

func TestRefreshTokensAreUnique(t *testing.T) {
	a, _, err := NewRefreshToken()
	require.NoError(t, err)
	b, _, err := NewRefreshToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
