package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is used when SLEEP_CONFIG is not set.
const DefaultPath = "./sleep.yaml"

// Load reads and validates the configuration.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Read reads configuration from a YAML file and environment variables without
// validating it. Priority: ENV > YAML > defaults (via env-default tags).
// The file path comes from SLEEP_CONFIG (fallback DefaultPath). A missing
// default file is fine; a missing explicit one is an error.
func Read() (*Config, error) {
	var cfg Config

	path := os.Getenv("SLEEP_CONFIG")
	explicitPath := path != ""
	if !explicitPath {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, nil
}
