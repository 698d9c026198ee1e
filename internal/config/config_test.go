package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INKWELL_CONFIG", "")
	t.Setenv("API_ADDR", "")
	t.Setenv("INKWELL_AUTOSAVE_INTERVAL_SECONDS", "")
	t.Setenv("INKWELL_PAGE_CACHE_TTL_SECONDS", "")
	t.Setenv("INKWELL_UPLOAD_MAX_MB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8787", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, 10*time.Minute, cfg.PageCacheTTL)
	assert.Equal(t, 10, cfg.UploadMaxMB)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INKWELL_CONFIG", "")
	t.Setenv("API_ADDR", ":9999")
	t.Setenv("INKWELL_AUTOSAVE_INTERVAL_SECONDS", "5")
	t.Setenv("INKWELL_PAGE_CACHE_TTL_SECONDS", "2m")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("INKWELL_UPLOAD_MAX_MB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, 2*time.Minute, cfg.PageCacheTTL)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, 10, cfg.UploadMaxMB)
}

func TestLoadFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7000"
autosave_interval: 45s
upload_bucket: media
minio_use_ssl: true
`), 0o600))
	t.Setenv("INKWELL_CONFIG", path)
	t.Setenv("API_ADDR", "")
	t.Setenv("INKWELL_UPLOAD_BUCKET", "from-env")
	t.Setenv("INKWELL_AUTOSAVE_INTERVAL_SECONDS", "")
	t.Setenv("MINIO_USE_SSL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 45*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, "from-env", cfg.UploadBucket)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "./db/migrations", cfg.MigrationsDir)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_key: 1\n"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	t.Setenv("API_ADDR", "")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":8787", cfg.Addr)
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Config{LogLevel: "warn"}.Logger(&buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	fallback := Config{LogLevel: "loud"}.Logger(&buf)
	fallback.Info().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}
