package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_USER", "mcqc")
	t.Setenv("DB_NAME", "mcsystem")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, "Asia/Tokyo", cfg.DisplayTimezone)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, 10, cfg.LogMaxSizeMB)
	assert.Equal(t, 2, cfg.LogBackupCount)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.ReportUploadEnabled())
	assert.Equal(t, "host=db.local user=mcqc password= dbname=mcsystem port=5432 sslmode=disable", cfg.DSN())
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	// t.Setenv stellt den Wert nach dem Test wieder her
	require.NoError(t, os.Unsetenv("DB_HOST"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	setRequired(t)
	t.Setenv("DISPLAY_TIMEZONE", "Europe/Berlin")
	cfg, err := Load()
	require.NoError(t, err)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	cfg.DisplayTimezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	cfg.CORSAllowedOrigins = ""
	assert.Empty(t, cfg.AllowedOrigins())
}
