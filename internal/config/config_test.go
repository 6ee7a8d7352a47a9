package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "stockroom", cfg.AppName)
	assert.Equal(t, DBTypeSQLite, cfg.DBType)
	assert.Equal(t, "inventory.db", cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.ForecastCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.False(t, cfg.AuthRequired)
	assert.True(t, cfg.IsSQLite())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOCKROOM_DB_TYPE", "Postgres")
	t.Setenv("STOCKROOM_DB_HOST", "db.internal")
	t.Setenv("STOCKROOM_LOG_LEVEL", "DEBUG")
	t.Setenv("STOCKROOM_AUTH_REQUIRED", "true")
	t.Setenv("STOCKROOM_CACHE_FORECAST_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DBTypePostgres, cfg.DBType)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, 90*time.Second, cfg.ForecastCacheTTL)
	assert.False(t, cfg.IsSQLite())
}

func TestLoadRejectsUnknownDBType(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOCKROOM_DB_TYPE", "oracle")

	_, err := Load()
	if !errors.Is(err, ErrUnsupportedDBType) {
		t.Fatalf("expected ErrUnsupportedDBType, got %v", err)
	}
}

func TestValidateRejectsNonPositiveTTL(t *testing.T) {
	cfg := Config{DBType: DBTypeSQLite, ForecastCacheTTL: time.Minute}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidTTL) {
		t.Fatalf("expected ErrInvalidTTL, got %v", err)
	}
}
