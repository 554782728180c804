package models

import "time"

// RefreshToken is one whitelisted refresh-token lineage entry. ID is the jti
// embedded in the signed token; the raw token itself is never stored, only a
// sha512 of it. Rows are soft-deleted by flipping Revoked, never removed, so
// a replayed token id is still distinguishable from an unknown one.
type RefreshToken struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	HashedToken string    `gorm:"size:128;not null" json:"-"`
	Revoked     bool      `gorm:"default:false;index" json:"revoked"`
}
