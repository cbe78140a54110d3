package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configVars = []string{
	"PORT", "ADMIN_USERNAME", "ADMIN_PASSWORD", "JWT_SECRET", "TOKEN_TTL",
	"DATA_DIR", "CONTENT_PATH", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "LEDGER_PATH",
	"VIEWS_DIR", "STORAGE_BACKEND", "BUCKET_NAME", "BUCKET_PREFIX", "AWS_REGION",
	"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "CACHE_TTL", "ORPHAN_GRACE",
	"PROTECT_WRITES", "CORS_ORIGIN", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configVars {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, ":3001", cfg.ServerAddress())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, filepath.Join("public", "content.json"), filepath.Clean(cfg.ContentPath))
	assert.Equal(t, filepath.Join("public", "uploads"), filepath.Clean(cfg.UploadDir))
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, BackendLocal, cfg.StorageBackend)
	assert.Equal(t, "uploads", cfg.BucketPrefix)
	assert.True(t, cfg.ProtectWrites)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadDerivesPathsFromDataDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "content.json"), cfg.ContentPath)
	assert.Equal(t, filepath.Join(dir, "uploads"), cfg.UploadDir)
	assert.Equal(t, filepath.Join(dir, "uploads.db"), cfg.LedgerPath)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"bad ttl", map[string]string{"TOKEN_TTL": "a day"}, ErrInvalidValue},
		{"negative upload limit", map[string]string{"MAX_UPLOAD_BYTES": "-1"}, ErrInvalidValue},
		{"bad bool", map[string]string{"PROTECT_WRITES": "maybe"}, ErrInvalidValue},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, ErrInvalidValue},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "ftp"}, ErrUnknownBackend},
		{"gcs without bucket", map[string]string{"STORAGE_BACKEND": "gcs"}, ErrBucketNameNotSet},
		{"s3 without bucket", map[string]string{"STORAGE_BACKEND": "s3"}, ErrBucketNameNotSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.RequireAuth(), ErrAdminCredentialsNotSet)

	cfg.AdminUsername = "admin"
	cfg.AdminPassword = "secret"
	assert.ErrorIs(t, cfg.RequireAuth(), ErrJWTSecretNotSet)

	cfg.JWTSecret = "signing-key"
	assert.NoError(t, cfg.RequireAuth())
}
