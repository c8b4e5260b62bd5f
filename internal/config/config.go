// Package config loads the application configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY,required,notEmpty"`
	SaveDir      string `env:"CHRONICLE_SAVE_DIR" envDefault:".saves"`
	Model        string `env:"CHRONICLE_MODEL" envDefault:"gemini-2.5-flash"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
