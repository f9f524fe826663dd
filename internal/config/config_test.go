package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("alice")
	cfg.Database = DatabaseConfig{Driver: "postgres", DSN: "postgres://localhost/ledger"}
	cfg.Reconcile.IncludeFees = true

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("alice")

	assert.Equal(t, "alice", cfg.Owner)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "ledger.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "import", cfg.Import.Dir)
	assert.False(t, cfg.Reconcile.IncludeFees)

	dust, discrepancy, err := cfg.Tolerances()
	require.NoError(t, err)
	assert.Equal(t, "0.000001", dust.String())
	assert.Equal(t, "0.01", discrepancy.String())
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("owner: [unclosed"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LEDGER_DB_DSN=from-file.db\nLEDGER_LOG_LEVEL=debug\n"), 0o644))

	t.Setenv(EnvOwner, "bob")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvDBDriver, "")
	// Registers a restore for the value godotenv is about to set.
	t.Setenv(EnvDBDSN, "")
	require.NoError(t, os.Unsetenv(EnvDBDSN))

	cfg := Default("alice")
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, "bob", cfg.Owner)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "from-file.db", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Log.Level, "process environment wins over .env")
}

func TestApplyEnv_MissingFile(t *testing.T) {
	cfg := Default("alice")
	assert.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), ".env")))
	assert.Equal(t, "alice", cfg.Owner)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing owner", func(c *Config) { c.Owner = "" }, "owner is required"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "dsn is required"},
		{"bad tolerance", func(c *Config) { c.Reconcile.DustTolerance = "tiny" }, "parsing reconcile.dust_tolerance"},
		{"negative tolerance", func(c *Config) { c.Reconcile.DiscrepancyTolerance = "-1" }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("alice")
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}
