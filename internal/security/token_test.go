package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTokenExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, IsTokenExpired(now.Add(-25*time.Hour)))
	assert.False(t, IsTokenExpired(now.Add(time.Hour)))
}

func TestGenerateTokenExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	expiry := generateTokenExpiry(now)
	assert.Equal(t, now.Add(24*time.Hour), expiry)
	assert.False(t, isTokenExpired(expiry, now.Add(23*time.Hour)))
	assert.True(t, isTokenExpired(expiry, now.Add(25*time.Hour)))
}

func TestGenerateVerificationToken(t *testing.T) {
	a, err := GenerateVerificationToken()
	require.NoError(t, err)
	b, err := GenerateVerificationToken()
	require.NoError(t, err)

	// 32 bytes hex encoded
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestSessionEnvelopeRoundTrip(t *testing.T) {
	signed, err := SignSessionEnvelope("secret", "user-1", "tok-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := ParseSessionEnvelope(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tok-1", claims.SessionToken)

	_, err = ParseSessionEnvelope(signed, "other-secret")
	assert.Error(t, err)
}

func TestSessionEnvelopeExpired(t *testing.T) {
	signed, err := SignSessionEnvelope("secret", "user-1", "tok-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ParseSessionEnvelope(signed, "secret")
	assert.Error(t, err)
}
