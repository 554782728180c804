package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photocap/pkg/cache"
	"photocap/pkg/logging"
	"photocap/pkg/tokens"
)

func main() {
	cfgPath := os.Getenv("PHOTOCAP_CONFIG")
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := initDB(cfg, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	seedDB(db, log)

	// Support a lightweight migrate command: `./photocap migrate`
	// runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		log.Info("migration and seeding completed")
		return
	}

	var listCache cache.Cache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, "photocap")
		cancel()
		if err != nil {
			log.Fatal("redis connect failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer redisCache.Close()
		listCache = redisCache
		log.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
	} else {
		listCache = cache.NewMemory()
		log.Info("using in-process cache")
	}

	codec := tokens.NewCodec(cfg.AccessSecret, cfg.RefreshSecret)
	store := NewRefreshTokenStore(db)
	auth := NewAuthService(db, codec, store, log.Named("auth"))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(log.Named("http")), gin.Recovery())

	srv := &server{db: db, auth: auth, codec: codec, cache: listCache, log: log, cfg: cfg}
	srv.setupRoutes(r)

	log.Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
