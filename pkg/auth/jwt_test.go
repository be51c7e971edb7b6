package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mapstack/pkg/auth"
)

func TestIssueAndValidate(t *testing.T) {
	token, err := auth.IssueToken("admin@mapstack.local", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@mapstack.local", claims.Email)
}

func TestValidateRejectsTampering(t *testing.T) {
	token, err := auth.IssueToken("admin@mapstack.local", time.Hour)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	fresh, err := auth.IssueToken("a@b.c", time.Hour)
	require.NoError(t, err)
	expired, ok := auth.Expired(fresh)
	assert.True(t, ok)
	assert.False(t, expired)

	stale, err := auth.IssueToken("a@b.c", -time.Minute)
	require.NoError(t, err)
	expired, ok = auth.Expired(stale)
	assert.True(t, ok)
	assert.True(t, expired)

	_, ok = auth.Expired("not-a-jwt")
	assert.False(t, ok)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("admin")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword(hash, "admin"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}
