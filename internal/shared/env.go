package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvBackendTransport = "PLX_BACKEND_TRANSPORT"
	EnvBackendURL       = "PLX_BACKEND_URL"
	EnvDatabasePath     = "PLX_DATABASE_PATH"
)

// LoadEnv loads variables from the given dotenv files into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any PLX_* variables present in the environment.
func ApplyEnv(c *Config) {
	if v := os.Getenv(EnvBackendTransport); v != "" {
		c.Backend.Transport = v
	}
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
}
