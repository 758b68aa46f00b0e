package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
name: "dkit-partners"
host: "127.0.0.1"
port: 3001
log_level: "INFO"
storage:
  db_type: "sqlite"
  db_path: "test.db"
auth:
  session_ttl_days: 14
  bcrypt_cost: 12
analytics:
  backfill_days: 10
  btc_price_usd: 75000
  default_tx_limit: 50
  refresh_interval_seconds: 30
`

// -----------------------------------------------------------------------------

func TestNewConfigLoadsValues(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "dkit-partners", cfg.Name)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, 14, cfg.Auth.SessionTTLDays)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 10, cfg.Analytics.BackfillDays)
	assert.Equal(t, 75000.0, cfg.Analytics.BtcPriceUsd)
	assert.Equal(t, 50, cfg.Analytics.DefaultTxLimit)
	assert.Equal(t, 30, cfg.Analytics.RefreshIntervalSeconds)
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	minimal := `
name: "dkit-partners"
host: "127.0.0.1"
port: 3001
storage:
  db_type: "sqlite"
  db_path: "test.db"
`
	cfg, err := NewConfig(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Auth.SessionTTLDays)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 30, cfg.Analytics.BackfillDays)
	assert.Equal(t, 80000.0, cfg.Analytics.BtcPriceUsd)
	assert.Equal(t, 25, cfg.Analytics.DefaultTxLimit)
	assert.Equal(t, 60, cfg.Analytics.RefreshIntervalSeconds)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewConfigRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad yaml", "name: [unterminated"},
		{"missing name", `
host: "127.0.0.1"
port: 3001
storage: {db_type: "sqlite", db_path: "x.db"}
`},
		{"privileged port", `
name: "x"
host: "127.0.0.1"
port: 80
storage: {db_type: "sqlite", db_path: "x.db"}
`},
		{"sqlite without path", `
name: "x"
host: "127.0.0.1"
port: 3001
storage: {db_type: "sqlite"}
`},
		{"postgres without dsn", `
name: "x"
host: "127.0.0.1"
port: 3001
storage: {db_type: "postgres"}
`},
	}

	for _, tc := range cases {
		_, err := NewConfig(writeConfig(t, tc.content))
		assert.Error(t, err, tc.name)
	}
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	reloaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, reloaded.MConfig)
}
