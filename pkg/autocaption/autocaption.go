// Package autocaption extracts visible text from a photo with Tesseract.
// The result is offered as the image's alt text, never as a user caption.
package autocaption

import (
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// maxLen bounds the stored alt text to the column size.
const maxLen = 1024

// ExtractText runs OCR over the image at path and returns cleaned-up text.
// Returns ("", nil) when the image carries no legible text, which is the
// common case for photos.
func ExtractText(path string) (string, error) {
	// Light preprocessing helps Tesseract with photos: grayscale plus a
	// contrast bump. Written to a temp file because the client takes paths.
	src := path
	if img, err := imaging.Open(path); err == nil {
		gray := imaging.AdjustContrast(imaging.Grayscale(img), 15)
		if tmp, err := os.CreateTemp("", "autocaption-*.png"); err == nil {
			name := tmp.Name()
			_ = tmp.Close()
			if err := imaging.Save(gray, name); err == nil {
				src = name
				defer os.Remove(name)
			} else {
				_ = os.Remove(name)
			}
		}
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	if err := client.SetImage(src); err != nil {
		return "", fmt.Errorf("autocaption: set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("autocaption: ocr: %w", err)
	}
	return clean(text), nil
}

// clean collapses OCR line noise into a single readable line and drops
// results too short to be meaningful.
func clean(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if countLetters(f) > 0 || countDigits(f) > 1 {
			kept = append(kept, f)
		}
	}
	out := strings.Join(kept, " ")
	if len(out) < 3 {
		return ""
	}
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			n++
		}
	}
	return n
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
