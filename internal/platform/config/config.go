// Package config はアプリケーション全体の設定を環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"split_backend/internal/platform/db"
	"split_backend/internal/platform/redis"
)

// Config is the process configuration. Each platform package owns its sub-config.
type Config struct {
	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	CORSEnabled   bool          `env:"CORS_ENABLED" envDefault:"false"`
	CORSOrigins   []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	GroupCacheTTL time.Duration `env:"GROUP_CACHE_TTL" envDefault:"5m"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"json"`

	DB    db.Config
	Redis redis.Config
}

// ErrMissingJWTSecret は本番運用でJWT_SECRETが未設定の場合に返されます。
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Load は環境変数から設定を読み込みます。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWTExpiration)
	}
	if _, err := db.OpenerFor(c.DB.Driver); err != nil {
		return err
	}
	return nil
}
