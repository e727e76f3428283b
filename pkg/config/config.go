package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/unowned-ai/daybook/pkg/utils"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// EnvPrefix is prepended to every variable, e.g. DAYBOOK_DB_PATH.
const EnvPrefix = "DAYBOOK"

// Config holds the runtime settings of daybook.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Database
	DBPath string `envconfig:"DB_PATH" default:""`
	WAL    bool   `envconfig:"WAL" default:"true"`
	Sync   string `envconfig:"SYNC" default:"FULL"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	// Listing and analytics defaults
	PageSize        int `envconfig:"PAGE_SIZE" default:"10"`
	StreakRangeDays int `envconfig:"STREAK_RANGE_DAYS" default:"30"`
}

// ResolveDefaults validates the settings and fills in the database path: an
// in-memory database when testing, the per-user default location otherwise.
func (c *Config) ResolveDefaults() error {
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	c.Sync = strings.ToUpper(strings.TrimSpace(c.Sync))
	switch c.Sync {
	case "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return fmt.Errorf("unsupported SYNC: %s", c.Sync)
	}

	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.StreakRangeDays < 1 {
		return fmt.Errorf("STREAK_RANGE_DAYS must be at least 1, got %d", c.StreakRangeDays)
	}

	if strings.TrimSpace(c.DBPath) == "" {
		if c.IsTesting() {
			c.DBPath = ":memory:"
		} else {
			c.DBPath = utils.GetDefaultDBPathOnly()
		}
	}
	return nil
}

// PrettyLogs reports whether logs go through the console writer. Production
// always logs JSON.
func (c *Config) PrettyLogs() bool {
	return c.LogPretty && !c.IsProduction()
}

// New creates a new Config by parsing environment variables prefixed with
// DAYBOOK_, e.g. DAYBOOK_DB_PATH, DAYBOOK_LOG_LEVEL.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:     EnvTesting,
		DBPath:          ":memory:",
		WAL:             false,
		Sync:            "OFF",
		LogLevel:        "debug",
		PageSize:        10,
		StreakRangeDays: 30,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
