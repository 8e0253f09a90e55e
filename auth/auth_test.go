package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordNeverPlaintext(t *testing.T) {
	hashed, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hashed)
	assert.True(t, CheckPassword("hunter2", hashed))
	assert.False(t, CheckPassword("hunter3", hashed))

	again, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "salt should differ per hash")
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("anything", "not-a-bcrypt-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("secret"))
	tok, err := tm.Issue("kim")
	require.NoError(t, err)

	claims, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "kim", claims.Username)
	assert.Equal(t, TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenExpiresAfterThirtyMinutes(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := start
	tm := NewTokenManager([]byte("secret")).WithClock(func() time.Time { return now })

	tok, err := tm.Issue("kim")
	require.NoError(t, err)

	now = start.Add(29 * time.Minute)
	_, err = tm.Verify(tok)
	assert.NoError(t, err)

	now = start.Add(31 * time.Minute)
	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecretAndAlg(t *testing.T) {
	other, err := NewTokenManager([]byte("other")).Issue("kim")
	require.NoError(t, err)

	tm := NewTokenManager([]byte("secret"))
	_, err = tm.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "kim"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithClaims(context.Background(), &Claims{Username: "kim"})
	c, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "kim", c.Username)
}
