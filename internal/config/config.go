// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is everything the client needs to reach the API and keep local
// state.
type Config struct {
	// APIBaseURL is the root of the inkwell deployment, without a trailing
	// /api/v1.
	APIBaseURL string `env:"INKWELL_API_URL" envDefault:"http://localhost:8080"`
	// StateDir is where the session state file lives. Empty means the
	// platform user-config directory.
	StateDir string `env:"INKWELL_STATE_DIR"`
	// Timeout bounds every HTTP call.
	Timeout time.Duration `env:"INKWELL_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment and fills in the default state directory.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user config dir: %w", err)
		}
		cfg.StateDir = filepath.Join(base, "inkwell")
	}

	return cfg, nil
}

// StatePath is the session state file inside StateDir.
func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "state.json")
}
