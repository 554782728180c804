package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *Codec {
	return NewCodec("access-secret", "refresh-secret")
}

func TestAccessRoundTrip(t *testing.T) {
	c := newTestCodec()
	raw, err := c.SignAccess(42)
	require.NoError(t, err)

	claims, err := c.VerifyAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(AccessTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRefreshRoundTrip(t *testing.T) {
	c := newTestCodec()
	raw, err := c.SignRefresh(7, "jti-123")
	require.NoError(t, err)

	claims, err := c.VerifyRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "jti-123", claims.ID)
	assert.WithinDuration(t, time.Now().Add(RefreshTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestKindsAreNotInterchangeable(t *testing.T) {
	c := newTestCodec()

	access, err := c.SignAccess(1)
	require.NoError(t, err)
	_, err = c.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := c.SignRefresh(1, "jti")
	require.NoError(t, err)
	_, err = c.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretFails(t *testing.T) {
	c := newTestCodec()
	other := NewCodec("different-access", "different-refresh")

	access, err := c.SignAccess(1)
	require.NoError(t, err)
	_, err = other.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessTokenFails(t *testing.T) {
	c := newTestCodec()
	claims := AccessClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-10 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-5 * time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	require.NoError(t, err)

	_, err = c.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshWithoutJTIRejected(t *testing.T) {
	c := newTestCodec()
	claims := RefreshClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	require.NoError(t, err)

	_, err = c.VerifyRefresh(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenFails(t *testing.T) {
	c := newTestCodec()
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := c.VerifyAccess(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-signed-token")
	h2 := HashToken("some-signed-token")
	h3 := HashToken("another-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 128) // hex sha512
}
