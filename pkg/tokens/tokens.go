// Package tokens signs and verifies the two JWT kinds the app issues:
// short-lived stateless access tokens and longer-lived refresh tokens that
// carry a server-tracked jti. The two kinds use distinct secrets so one can
// never be presented in place of the other.
package tokens

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 5 * time.Minute
	RefreshTTL = 8 * time.Hour
)

// ErrInvalidToken is the only verification failure callers see. Expiry,
// bad signature and malformed claims all collapse into it so responses
// cannot be used as an oracle.
var ErrInvalidToken = errors.New("invalid token")

// Codec holds the signing secrets for both token kinds.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewCodec(accessSecret, refreshSecret string) *Codec {
	return &Codec{accessSecret: []byte(accessSecret), refreshSecret: []byte(refreshSecret)}
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. ID (jti) keys the
// whitelist row.
type RefreshClaims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// SignAccess produces a signed access token for userID, expiring in AccessTTL.
func (c *Codec) SignAccess(userID uint) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

// SignRefresh produces a signed refresh token for userID carrying jti,
// expiring in RefreshTTL.
func (c *Codec) SignRefresh(userID uint, jti string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
}

// VerifyAccess parses and validates an access token.
func (c *Codec) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(raw, claims, c.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token. A token without a jti
// is rejected, it could never match a whitelist row.
func (c *Codec) VerifyRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(raw, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) verify(raw string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// HashToken returns the hex sha512 of a signed token string. Used only for
// equality checks against whitelist rows; signed tokens are high-entropy so
// a fast hash is enough here, unlike passwords.
func HashToken(raw string) string {
	sum := sha512.Sum512([]byte(raw))
	return hex.EncodeToString(sum[:])
}
