package config

import (
	"errors"
	"fmt"
)

// Validate checks cross-field rules. Load calls it; callers that override
// fields afterwards (command-line flags) call it again.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the remote backend")
		}
		if c.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is required for the remote backend")
		}
		if c.Database.MaxConns <= 0 {
			return fmt.Errorf("database.max_conns must be > 0 (got %d)", c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q (got %q)", BackendLocal, BackendRemote, c.Storage.Backend)
	}

	if c.Auth.Leeway < 0 {
		return fmt.Errorf("auth.leeway must be >= 0 (got %s)", c.Auth.Leeway)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	return nil
}
