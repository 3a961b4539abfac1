package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "quote_intake_v1", cfg.Autosave.Key)
	require.Equal(t, 150*time.Millisecond, cfg.Autosave.Debounce)
	require.Equal(t, "file", cfg.Autosave.Backend)
	require.Equal(t, "local", cfg.Files.Mode)
	require.Equal(t, "https://vpic.nhtsa.dot.gov/api/vehicles", cfg.VIN.BaseURL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTOSAVE_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("AUTOSAVE_DEBOUNCE_MS", "300")
	t.Setenv("VIN_BASE_URL", "http://vin.local/api/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "redis", cfg.Autosave.Backend)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, 300*time.Millisecond, cfg.Autosave.Debounce)
	require.Equal(t, "http://vin.local/api", cfg.VIN.BaseURL)
}

func TestLoadConfigRejectsIncompleteBackend(t *testing.T) {
	t.Setenv("AUTOSAVE_BACKEND", "mongo")
	t.Setenv("MONGODB_URI", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
