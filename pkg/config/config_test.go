package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BATCH_CREDENTIAL_LENGTH", "16")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 16, cfg.Batch.CredentialLength)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Batch.MaxUploadBytes)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func TestBootstrapHR(t *testing.T) {
	t.Setenv("BOOTSTRAP_HR_EMAIL", " HR@Aptiv.com ")
	t.Setenv("BOOTSTRAP_HR_PASSWORD", "ChangeMe123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HR.Enabled())
	assert.Equal(t, "hr@aptiv.com", cfg.HR.Email)
	assert.Equal(t, "HR", cfg.HR.FirstName)
}

func TestProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestStorageDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./uploads", cfg.Storage.Dir)
	assert.Equal(t, "jwt-secret", cfg.Storage.SigningSecret)
	assert.Equal(t, 15*time.Minute, cfg.Storage.LinkTTL)
	assert.Equal(t, int64(10*1024*1024), cfg.Storage.MaxDocumentBytes)

	t.Setenv("STORAGE_SIGNING_SECRET", "links")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "links", cfg.Storage.SigningSecret)
}
