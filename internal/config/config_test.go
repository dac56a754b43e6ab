package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, defaultMySQLDSN, cfg.DBDSN)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(64<<10), cfg.MaxDocumentBytes)
	assert.Equal(t, 30*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 20, cfg.DefaultCredits)
	assert.Equal(t, 20, cfg.CreditRequestAmount)
	assert.Equal(t, time.Minute, cfg.CreditResetInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 999999, cfg.AdminCredits)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SCAN_TIMEOUT", "5s")
	t.Setenv("DEFAULT_CREDITS", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, http://example.com")
	t.Setenv("RESET_DB", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "users.db", cfg.DBDSN)
	assert.Equal(t, 5*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 5, cfg.DefaultCredits)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.ResetDB)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCAN_TIMEOUT", "soon")
	t.Setenv("DEFAULT_CREDITS", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 20, cfg.DefaultCredits)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}
