package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"photocap/models"
	"photocap/pkg/password"
)

// Resets a user's password and revokes every refresh token they hold, the
// operational response to a compromised credential.
func main() {
	email := flag.String("email", "", "email of the user to reset")
	newPassword := flag.String("password", "", "new plaintext password")
	flag.Parse()
	if *email == "" || *newPassword == "" {
		log.Fatal("--email and --password are required")
	}
	if len(*newPassword) < 8 {
		log.Fatal("password too short (min 8)")
	}
	dsn := os.Getenv("PHOTOCAP_DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("PHOTOCAP_DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(*email)).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}
	hash, err := password.Hash(*newPassword)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}
	if err := db.Model(&user).Update("hashed_password", hash).Error; err != nil {
		log.Fatalf("update failed: %v", err)
	}
	if err := db.Model(&models.RefreshToken{}).
		Where("user_id = ?", user.ID).
		Update("revoked", true).Error; err != nil {
		log.Fatalf("revoke refresh tokens failed: %v", err)
	}
	fmt.Printf("Password reset for %s; all refresh tokens revoked\n", user.Email)
}
