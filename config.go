package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is everything the server needs at boot. Values come from
// PHOTOCAP_* environment variables with an optional config file underneath;
// env always wins.
type Config struct {
	Port          string `mapstructure:"port"`
	DBDSN         string `mapstructure:"db_dsn"`
	AccessSecret  string `mapstructure:"jwt_access_secret"`
	RefreshSecret string `mapstructure:"jwt_refresh_secret"`
	RedisAddr     string `mapstructure:"redis_addr"`
	ImageDir      string `mapstructure:"image_dir"`
	LogLevel      string `mapstructure:"log_level"`
	LogDev        bool   `mapstructure:"log_dev"`
	AutoMigrate   bool   `mapstructure:"auto_migrate"`
}

// LoadConfig reads defaults, the optional file at path, and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8081")
	// Development fallbacks; real deployments set PHOTOCAP_JWT_ACCESS_SECRET
	// and PHOTOCAP_JWT_REFRESH_SECRET.
	v.SetDefault("jwt_access_secret", "dev-insecure-access-secret-change")
	v.SetDefault("jwt_refresh_secret", "dev-insecure-refresh-secret-change")
	v.SetDefault("image_dir", "images")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dev", false)
	v.SetDefault("auto_migrate", true)

	v.SetEnvPrefix("PHOTOCAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("config: db_dsn is required (set PHOTOCAP_DB_DSN to a Postgres DSN)")
	}
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("config: access and refresh secrets must differ")
	}
	return nil
}
