package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "ledger.yaml"

// Config represents the top-level ledger.yaml configuration.
type Config struct {
	Owner     string          `yaml:"owner"`
	Database  DatabaseConfig  `yaml:"database"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Log       LogConfig       `yaml:"log"`
	Import    ImportConfig    `yaml:"import"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// ReconcileConfig tunes the holdings rebuild. Tolerances are decimal
// strings so they survive the YAML round trip exactly.
type ReconcileConfig struct {
	DustTolerance        string `yaml:"dust_tolerance"`
	DiscrepancyTolerance string `yaml:"discrepancy_tolerance"`
	IncludeFees          bool   `yaml:"include_fees"`
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ImportConfig locates raw institution exports.
type ImportConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a ledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(owner string) *Config {
	return &Config{
		Owner: owner,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "ledger.db",
		},
		Reconcile: ReconcileConfig{
			DustTolerance:        "0.000001",
			DiscrepancyTolerance: "0.01",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Import: ImportConfig{
			Dir: "import",
		},
	}
}

// Environment variables that override the file.
const (
	EnvOwner    = "LEDGER_OWNER"
	EnvDBDriver = "LEDGER_DB_DRIVER"
	EnvDBDSN    = "LEDGER_DB_DSN"
	EnvLogLevel = "LEDGER_LOG_LEVEL"
)

// ApplyEnv loads envFile (if it exists) into the process environment, then
// overlays any LEDGER_* variables onto cfg. Variables already set in the
// environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	overlay := []struct {
		key string
		dst *string
	}{
		{EnvOwner, &c.Owner},
		{EnvDBDriver, &c.Database.Driver},
		{EnvDBDSN, &c.Database.DSN},
		{EnvLogLevel, &c.Log.Level},
	}
	for _, o := range overlay {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst = v
		}
	}
	return nil
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return errors.New("owner is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	_, _, err := c.Tolerances()
	return err
}

// Tolerances parses the dust and discrepancy tolerances.
func (c *Config) Tolerances() (dust, discrepancy decimal.Decimal, err error) {
	dust, err = parseTolerance("dust_tolerance", c.Reconcile.DustTolerance)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	discrepancy, err = parseTolerance("discrepancy_tolerance", c.Reconcile.DiscrepancyTolerance)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return dust, discrepancy, nil
}

func parseTolerance(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("reconcile.%s is required", name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing reconcile.%s: %w", name, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("reconcile.%s must not be negative", name)
	}
	return d, nil
}
