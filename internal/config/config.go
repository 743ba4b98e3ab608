// Package config loads sleepctl configuration from YAML and the environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
)

// Storage backends.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config is the root configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	App      AppConfig      `yaml:"app"`
}

// StorageConfig selects the backend.
type StorageConfig struct {
	Backend         string `yaml:"backend"          env:"SLEEP_STORAGE_BACKEND"  env-default:"local"`
	LocalPath       string `yaml:"local_path"       env:"SLEEP_LOCAL_PATH"`
	LocalPassphrase string `yaml:"local_passphrase" env:"SLEEP_LOCAL_PASSPHRASE"`
}

// DatabaseConfig holds the remote PostgreSQL settings.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"       env:"SLEEP_DATABASE_DSN"`
	MaxConns int32  `yaml:"max_conns" env:"SLEEP_DATABASE_MAX_CONNS" env-default:"4"`
	Migrate  bool   `yaml:"migrate"   env:"SLEEP_DATABASE_MIGRATE"   env-default:"true"`
}

// AuthConfig holds identity provider token settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"SLEEP_AUTH_JWT_SECRET"`
	TokenPath string        `yaml:"token_path" env:"SLEEP_AUTH_TOKEN_PATH"`
	Leeway    time.Duration `yaml:"leeway"     env:"SLEEP_AUTH_LEEWAY"     env-default:"30s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"SLEEP_LOG_LEVEL" env-default:"warn"`
}

// AppConfig holds presentation settings.
type AppConfig struct {
	// Timezone is an IANA name; empty means the system zone.
	Timezone string `yaml:"timezone" env:"SLEEP_TIMEZONE"`
}

// Location resolves App.Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.App.Timezone)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.Log.Level)
}

// LocalPath is Storage.LocalPath or $XDG_DATA_HOME/sleep-keeper/sleep.db.
func (c *Config) LocalPath() string {
	if c.Storage.LocalPath != "" {
		return c.Storage.LocalPath
	}
	return filepath.Join(dataDir(), "sleep.db")
}

// TokenPath is Auth.TokenPath or $XDG_CONFIG_HOME/sleep-keeper/token.json.
func (c *Config) TokenPath() string {
	if c.Auth.TokenPath != "" {
		return c.Auth.TokenPath
	}
	return filepath.Join(ConfigDir(), "token.json")
}

// ConfigDir is the per-user directory for sleepctl state.
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "sleep-keeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sleep-keeper")
}

func dataDir() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "sleep-keeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "sleep-keeper")
}
