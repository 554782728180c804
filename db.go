package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"photocap/models"
	"photocap/pkg/password"
)

func initDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		// Migrate models individually so a failure on one doesn't block others
		for _, m := range []struct {
			table string
			model interface{}
		}{
			{"users", &models.User{}},
			{"images", &models.Image{}},
			{"captions", &models.Caption{}},
			{"refresh_tokens", &models.RefreshToken{}},
		} {
			if err := db.AutoMigrate(m.model); err != nil {
				log.Warn("migration warning", zap.String("table", m.table), zap.Error(err))
			}
		}
	}
	return db, nil
}

// seedDB idempotently creates the demo accounts and sample images. alice is
// the admin; all seeded accounts share the documented demo password.
func seedDB(db *gorm.DB, log *zap.Logger) {
	users := []struct {
		email   string
		isAdmin bool
	}{
		{"alice@email.com", true},
		{"bob@email.com", false},
		{"caroline@email.com", false},
	}
	for _, u := range users {
		var count int64
		db.Model(&models.User{}).Where("email = ?", u.email).Count(&count)
		if count > 0 {
			continue
		}
		hashed, err := password.Hash("P4$sword")
		if err != nil {
			log.Error("seed: hash password", zap.Error(err))
			continue
		}
		user := models.User{Email: u.email, HashedPassword: hashed, IsAdmin: u.isAdmin}
		if err := db.Create(&user).Error; err != nil {
			log.Error("seed: create user", zap.String("email", u.email), zap.Error(err))
		} else {
			log.Info("seeded user", zap.String("email", u.email), zap.Bool("isAdmin", u.isAdmin))
		}
	}

	for _, url := range []string{
		"/images/cubs.jpg",
		"/images/monkeys.jpg",
		"/images/parrots.jpg",
		"/images/puffin.jpg",
	} {
		var count int64
		db.Model(&models.Image{}).Where("url = ?", url).Count(&count)
		if count > 0 {
			continue
		}
		img := models.Image{Name: "Sample image", URL: url}
		if err := db.Create(&img).Error; err != nil {
			log.Error("seed: create image", zap.String("url", url), zap.Error(err))
		}
	}
}
