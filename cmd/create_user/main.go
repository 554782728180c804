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

func main() {
	admin := flag.Bool("admin", false, "create the user as an admin")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_user [--admin] <email> <password>")
		os.Exit(2)
	}
	email := strings.TrimSpace(strings.ToLower(flag.Arg(0)))
	pass := flag.Arg(1)

	dsn := os.Getenv("PHOTOCAP_DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("PHOTOCAP_DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Fatalf("user %s already exists (id=%d)", email, existing.ID)
	}
	hashed, err := password.Hash(pass)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{Email: email, HashedPassword: hashed, IsAdmin: *admin}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s (id=%d, admin=%v)\n", email, user.ID, user.IsAdmin)
}
