package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USERNAME", "verbiforge")
	t.Setenv("DB_PASSWORD", "p@ss word")
	t.Setenv("DB_DATABASE", "verbiforge")
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
	t.Setenv("SMTP_HOST", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(2<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoadRequiresSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "ACCESS_TOKEN_SECRET")
}

func TestLoadRequiresOperatorEmailWithSMTP(t *testing.T) {
	setRequired(t)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("OPERATOR_EMAIL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "OPERATOR_EMAIL")
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", Username: "app", Password: "p@ss word", Database: "main"}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/main?sslmode=disable", db.DSN())
	assert.NotContains(t, db.Redacted(), "p%40ss")

	db.URL = "postgres://other"
	assert.Equal(t, "postgres://other", db.DSN())
}

func TestLoadDatabaseAcceptsURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
	t.Setenv("DB_USERNAME", "")

	db, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h:5432/d", db.DSN())
}
