package config

import (
	"testing"
	"time"

	"lexdraft-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("REQUIRE_SOURCE_FOR_ASSERTION", "")
	t.Setenv("STORAGE_TYPE", "")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.LLMEnabled())
	assert.True(t, cfg.Invariants.RequireSourceForAssertion)
	assert.Equal(t, storage.StorageTypeLocal, cfg.Storage.Type)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.LLMEnabled())
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestValidateRejectsRelaxedInvariants(t *testing.T) {
	t.Setenv("ALLOW_TEXT_AS_PRIMARY", "true")
	cfg := FromEnv()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOW_TEXT_AS_PRIMARY")
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	cfg := FromEnv()
	assert.True(t, cfg.IsProduction())
	assert.Error(t, cfg.Validate())

	t.Setenv("JWT_SECRET", "s3cret")
	assert.NoError(t, FromEnv().Validate())
}
