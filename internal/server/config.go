package server

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds server settings, populated from the environment with
// defaults. Command-line flags may override individual fields after
// loading.
type Config struct {
	// Addr is the TCP listen address.
	Addr string `env:"REGISTRAR_ADDR" envDefault:":7070"`

	// DBPath is the SQLite database path.
	DBPath string `env:"REGISTRAR_DB" envDefault:"registrar.db"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
