// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds the settings for cmd/bgserver.
type Server struct {
	Host         string        `env:"BG_HOST" envDefault:"localhost"`
	Port         int           `env:"BG_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"BG_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"BG_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"BG_IDLE_TIMEOUT" envDefault:"60s"`
	// DBPath enables the SQLite game archive when set.
	DBPath   string `env:"BG_DB_PATH"`
	Debug    bool   `env:"BG_DEBUG" envDefault:"false"`
	MaxGames int    `env:"BG_MAX_GAMES" envDefault:"1000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Server settings from the environment and validates them.
func Load() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (s Server) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("BG_PORT %d out of range", s.Port)
	}
	if s.MaxGames < 1 {
		return fmt.Errorf("BG_MAX_GAMES must be positive, got %d", s.MaxGames)
	}
	return nil
}

// Addr is the listen address.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
