package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("BLOB_BACKEND", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "1h", cfg.Auth.JWTAccessTTL)
	assert.Equal(t, "10m", cfg.Auth.RevocationPurgeInterval)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Nil(t, cfg.Server.AllowedOrigins)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.example , ,http://b.example")
	t.Setenv("BLOB_BACKEND", "s3")

	cfg := Load()

	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Equal(t, "15m", cfg.Auth.JWTAccessTTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "s3", cfg.Storage.Backend)
}
