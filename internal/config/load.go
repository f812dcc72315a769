package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// LoadEnvFile loads KEY=value pairs from path into the process
// environment without overriding variables that are already set. A
// missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, the TOML file at path and
// the environment. A missing file is only an error when required is set.
func Load(path string, required bool) (*Config, *Secrets, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, nil, fmt.Errorf("reading environment: %w", err)
	}

	var secrets Secrets
	if err := env.Parse(&secrets); err != nil {
		return nil, nil, fmt.Errorf("reading secrets: %w", err)
	}

	return cfg, &secrets, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
