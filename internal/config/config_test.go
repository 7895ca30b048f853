package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AVIO_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PG_DSN", "postgres://localhost/avio")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/avio", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 1500*time.Millisecond, cfg.DebounceWindow)
	assert.Equal(t, 3, cfg.LookbackMonths)
	assert.Equal(t, 10, cfg.SampleCap)
	assert.Equal(t, "0 3 1 * *", cfg.ReportSchedule)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_ConfigFileAndDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_JWT_SECRET=from-dotenv\n"), 0o600))
	path := filepath.Join(dir, "avio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_url: postgres://file/avio\npreset_debounce: 2s\nsample_cap: 5\n"), 0o600))
	t.Setenv("AVIO_CONFIG", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("PRESET_DEBOUNCE", "")
	t.Setenv("PROJECTION_SAMPLE_CAP", "")
	t.Setenv("HTTP_ADDR", ":9090")
	// Registered for cleanup so the value loaded from .env does not leak.
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/avio", cfg.DatabaseURL)
	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
	assert.Equal(t, 2*time.Second, cfg.DebounceWindow)
	assert.Equal(t, 5, cfg.SampleCap)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
}

func TestLoad_MissingRequired(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AVIO_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)
}
