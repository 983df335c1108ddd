package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/social?sslmode=disable")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.Session.BcryptCost)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, "https://example.supabase.co", cfg.Storage.BaseURL)
	assert.Equal(t, "public-media", cfg.Storage.Bucket)
	assert.Empty(t, cfg.NATS.URL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"JWT_SECRET", "DATABASE_URL", "SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "-1h")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_LowBcryptCost(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_COST", "4")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")

	_, err := LoadDatabase()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/social?sslmode=disable")
	t.Setenv("DB_MAX_IDLE_CONNS", "2")
	cfg, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxIdleConns)
}
