package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"split_backend/internal/platform/db"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 5*time.Minute, cfg.GroupCacheTTL)
	assert.Equal(t, db.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "splitapp.db", cfg.DB.SQLitePath)
	assert.Equal(t, 60*time.Second, cfg.DB.ConnectTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.CORSEnabled)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION", "1h")
	t.Setenv("CORS_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("GROUP_CACHE_TTL", "30s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.JWTExpiration)
	assert.True(t, cfg.CORSEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "db", cfg.DB.Host)
	assert.Equal(t, "6543", cfg.DB.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.GroupCacheTTL)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "soon")

	_, err := Load()

	assert.ErrorContains(t, err, "parse env")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{JWTSecret: "x", JWTExpiration: time.Hour, DB: db.Config{Driver: db.DriverSQLite}}
	assert.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.JWTSecret = ""
	assert.ErrorIs(t, noSecret.Validate(), ErrMissingJWTSecret)

	badExp := valid
	badExp.JWTExpiration = 0
	assert.Error(t, badExp.Validate())

	badDriver := valid
	badDriver.DB.Driver = "oracle"
	assert.Error(t, badDriver.Validate())
}
