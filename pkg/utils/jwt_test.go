package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("7", RoleAdmin, "s3cret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestParseJWTRejects(t *testing.T) {
	token, err := GenerateJWT("7", RoleAdmin, "s3cret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateJWT("7", RoleAdmin, "s3cret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "s3cret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseJWT("not-a-token", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateJWTNeedsSecret(t *testing.T) {
	_, err := GenerateJWT("7", RoleAdmin, "", time.Hour)
	assert.Error(t, err)
}
