// Package password wraps bcrypt with the cost used across the app.
package password

import "golang.org/x/crypto/bcrypt"

// Cost 12 keeps hashing around the 100ms range on current hardware,
// matching the work factor the seeded accounts were created with.
const Cost = 12

// Hash returns the bcrypt hash of plaintext.
func Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
}

// Verify reports whether plaintext matches hash. bcrypt's comparison is
// timing-safe; any mismatch or malformed hash yields false, never an error.
func Verify(plaintext string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}
