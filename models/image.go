package models

import "time"

// Image represents a photo reference that users attach captions to.
// URL is a serving path (e.g. public/images/cubs.jpg), unique per image.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"size:255" json:"name"`
	URL       string    `gorm:"size:512;not null;uniqueIndex" json:"url"`
	// AltText holds OCR-extracted text from the photo, filled in by the
	// background image processor. Empty until processed.
	AltText  string    `gorm:"size:1024" json:"altText,omitempty"`
	Captions []Caption `json:"captions,omitempty"`
}
