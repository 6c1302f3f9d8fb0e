package client

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls how the client reaches the proposals API.
type Config struct {
	BaseURL string        `env:"PROPOSALS_API_BASE_URL" envDefault:"http://127.0.0.1:8090"`
	Timeout time.Duration `env:"PROPOSALS_API_TIMEOUT"  envDefault:"15s"`
	Actor   string        `env:"PROPOSALS_ACTOR"`
}

// LoadConfigFromEnv returns client configuration with defaults applied.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
