// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every knob the service reads at startup.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Port        string `env:"PORT" envDefault:"3000"`

	// Projection data
	DataDir string `env:"DATA_DIR"` // empty = built-in sample catalog

	// Draft setup
	TeamCount int      `env:"TEAM_COUNT" envDefault:"12"`
	TeamNames []string `env:"TEAM_NAMES" envSeparator:","`

	// Keeper-config persistence
	DBDriver    string `env:"DB_DRIVER" envDefault:"memory"` // memory, file, sqlite, postgres
	SavesDir    string `env:"SAVES_DIR" envDefault:"saves"`
	SQLiteFile  string `env:"SQLITE_FILE" envDefault:"dev.sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Event bus
	NATSURL     string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"draft.events"`

	// Pick-history analytics
	ClickHouseAddr     string `env:"CLICKHOUSE_ADDR" envDefault:"localhost:9000"`
	ClickHouseDB       string `env:"CLICKHOUSE_DB" envDefault:"default"`
	ClickHouseUser     string `env:"CLICKHOUSE_USER" envDefault:"default"`
	ClickHousePassword string `env:"CLICKHOUSE_PASSWORD"`

	// Auth
	OIDCBaseURL      string `env:"OIDC_BASE_URL"`
	OIDCClientID     string `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `env:"OIDC_REDIRECT_URL" envDefault:"http://localhost:3000/auth/callback"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Development reports whether the service runs in development mode, where
// embedded/mock collaborators replace external infrastructure.
func (c *Config) Development() bool {
	return c.Environment == "" || c.Environment == "development"
}
