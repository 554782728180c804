package main

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"photocap/models"
	"photocap/pkg/password"
	"photocap/pkg/tokens"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// TokenPair is what every successful auth operation returns.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService owns the session lifecycle: registration, login, refresh
// rotation and revocation. Dependencies are injected at construction and
// the service holds no other state.
type AuthService struct {
	db    *gorm.DB
	codec *tokens.Codec
	store *RefreshTokenStore
	log   *zap.Logger
}

func NewAuthService(db *gorm.DB, codec *tokens.Codec, store *RefreshTokenStore, log *zap.Logger) *AuthService {
	return &AuthService{db: db, codec: codec, store: store, log: log}
}

// Register creates a user and issues the first token pair.
func (a *AuthService) Register(email, pass string) (*TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRE.MatchString(email) {
		return nil, errInvalidEmail
	}
	if !passwordStrongEnough(pass) {
		return nil, errWeakPassword
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errDuplicateEmail
	}
	hashed, err := password.Hash(pass)
	if err != nil {
		return nil, err
	}
	user := models.User{Email: email, HashedPassword: hashed}
	if err := a.db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race after the initial check
			return nil, errDuplicateEmail
		}
		return nil, err
	}
	return a.issue(user.ID)
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (a *AuthService) Login(email, pass string) (*TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(pass, user.HashedPassword) {
		return nil, errInvalidCredentials
	}
	return a.issue(user.ID)
}

// Refresh rotates a refresh token: every gate failure collapses into the
// same unauthorized error, and the old row is revoked before the successor
// is minted so a raw token can be rotated at most once.
func (a *AuthService) Refresh(rawToken string) (*TokenPair, error) {
	claims, err := a.codec.VerifyRefresh(rawToken)
	if err != nil {
		return nil, errUnauthorized
	}
	rec, err := a.store.FindByID(claims.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Revoked {
		a.log.Warn("refresh with unknown or revoked token id", zap.String("jti", claims.ID))
		return nil, errUnauthorized
	}
	// A valid signature is not enough: the raw token must be the one the
	// row was created for, or a payload was replayed under a stolen jti.
	if tokens.HashToken(rawToken) != rec.HashedToken {
		a.log.Warn("refresh token hash mismatch", zap.String("jti", claims.ID))
		return nil, errUnauthorized
	}
	var user models.User
	if err := a.db.First(&user, rec.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUnauthorized
		}
		return nil, err
	}
	flipped, err := a.store.RevokeOne(claims.ID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// Lost a concurrent rotation on the same token.
		return nil, errUnauthorized
	}
	return a.issue(user.ID)
}

// RevokeAllForUser invalidates every live refresh token the user holds.
func (a *AuthService) RevokeAllForUser(userID uint) error {
	return a.store.RevokeAllForUser(userID)
}

// UpdateUser changes a user's email and/or password, applying the same
// format rules as registration. A password change is treated as a
// credential reset: every outstanding refresh token is revoked.
func (a *AuthService) UpdateUser(user *models.User, email, pass string) (*models.User, error) {
	if email != "" {
		email = strings.TrimSpace(strings.ToLower(email))
		if !emailRE.MatchString(email) {
			return nil, errInvalidEmail
		}
		var existing models.User
		if err := a.db.Where("email = ? AND id <> ?", email, user.ID).First(&existing).Error; err == nil {
			return nil, errDuplicateEmail
		}
		user.Email = email
	}
	passwordChanged := false
	if pass != "" {
		if !passwordStrongEnough(pass) {
			return nil, errWeakPassword
		}
		hashed, err := password.Hash(pass)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
		passwordChanged = true
	}
	if err := a.db.Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, errDuplicateEmail
		}
		return nil, err
	}
	if passwordChanged {
		if err := a.store.RevokeAllForUser(user.ID); err != nil {
			return nil, err
		}
		a.log.Info("password changed, refresh tokens revoked", zap.Uint("userID", user.ID))
	}
	return user, nil
}

// issue mints an access+refresh pair under a brand-new jti and whitelists
// the refresh token.
func (a *AuthService) issue(userID uint) (*TokenPair, error) {
	jti := uuid.NewString()
	access, err := a.codec.SignAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := a.codec.SignRefresh(userID, jti)
	if err != nil {
		return nil, err
	}
	if _, err := a.store.Add(jti, refresh, userID); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// passwordStrongEnough requires at least 8 characters with an upper, a
// lower, a digit and a special character.
func passwordStrongEnough(pass string) bool {
	if utf8.RuneCountInString(pass) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range pass {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}
