package main

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"photocap/models"
	"photocap/pkg/tokens"
)

// errDuplicateTokenID guards the jti primary key. With uuid-v4 ids a
// collision is practically unreachable, but the insert still checks.
var errDuplicateTokenID = errors.New("refresh token id already exists")

// RefreshTokenStore is the server-side whitelist of issued refresh tokens.
// Rows are only ever flipped to revoked, never deleted.
type RefreshTokenStore struct {
	db *gorm.DB
}

func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

// Add whitelists a freshly signed refresh token under its jti. Only the
// sha512 of the raw token is stored.
func (s *RefreshTokenStore) Add(jti, rawToken string, userID uint) (*models.RefreshToken, error) {
	rt := models.RefreshToken{
		ID:          jti,
		UserID:      userID,
		HashedToken: tokens.HashToken(rawToken),
	}
	if err := s.db.Create(&rt).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, errDuplicateTokenID
		}
		return nil, err
	}
	return &rt, nil
}

// FindByID returns the whitelist row for jti, or (nil, nil) when unknown.
func (s *RefreshTokenStore) FindByID(jti string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.db.Where("id = ?", jti).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

// RevokeOne marks the row revoked. The conditional update makes rotation
// race-safe: of N concurrent refreshes with the same jti, exactly one sees
// flipped == true and is allowed to mint a successor. Idempotent.
func (s *RefreshTokenStore) RevokeOne(jti string) (flipped bool, err error) {
	res := s.db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", jti, false).
		Update("revoked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RevokeAllForUser invalidates every refresh token the user holds, across
// all devices. Used for mass logout and credential-compromise response.
func (s *RefreshTokenStore) RevokeAllForUser(userID uint) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
