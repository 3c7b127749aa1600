package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/realmeye-full.csv", cfg.Sources.RealmEyeFile)
	assert.Equal(t, "data/daily.json", cfg.Output.File)
	assert.Equal(t, "rows", cfg.Output.Format)
	assert.Equal(t, "realmeye", cfg.Stats.Primary)
	assert.Equal(t, 30, cfg.Stats.TrendWindow)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PLAYERS_STATS_TREND_WINDOW", "7")
	t.Setenv("PLAYERS_OUTPUT_FORMAT", "columnar")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Stats.TrendWindow)
	assert.Equal(t, "columnar", cfg.Output.Format)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Contains(t, cfg.DB.DSN(), "host=db.internal")
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("PLAYERS_STATS_TREND_WINDOW", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	t.Setenv("PLAYERS_OUTPUT_FORMAT", "xml")
	_, err := Load()
	assert.Error(t, err)
}
