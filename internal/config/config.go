// Package config resolves runtime configuration from the environment.
// Command line flags take precedence and are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/utils"
)

// Config is the environment-level configuration.
type Config struct {
	DBPath      string        `env:"DAYSCORE_DB" envDefault:"~/.config/dayscore/dayscore.db"`
	UserID      string        `env:"DAYSCORE_USER_ID"`
	RemoteDSN   string        `env:"DAYSCORE_REMOTE_DSN"`
	RemoteTable string        `env:"DAYSCORE_REMOTE_TABLE" envDefault:"users"`
	Timezone    string        `env:"DAYSCORE_TIMEZONE" envDefault:"Local"`
	SyncTimeout time.Duration `env:"DAYSCORE_SYNC_TIMEOUT" envDefault:"15s"`
	Debug       bool          `env:"DAYSCORE_DEBUG"`
	LogLevel    string        `env:"DAYSCORE_LOG_LEVEL"`
}

// Load reads an optional dotenv file (missing files are ignored) and then
// parses the environment.
func Load(dotenvPaths ...string) (Config, error) {
	for _, p := range dotenvPaths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot.
func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("sync timeout must be positive, got %s", c.SyncTimeout)
	}
	if c.RemoteTable == "" {
		return fmt.Errorf("remote table must not be empty (default %q)", constants.DefaultRemoteTable)
	}
	return nil
}

// Location returns the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}
