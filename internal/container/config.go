// Package container wires the claim store, engines, services and HTTP API
// together and owns their start and shutdown order.
package container

import (
	"fmt"
	"strings"
	"time"
)

// Config is everything the container needs to start a claimflow server.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig

	// Locale is the default language for view labels and string collation
	Locale string

	// ExportTitle heads every PDF download
	ExportTitle string
}

// DatabaseConfig describes the SQLite claim store.
type DatabaseConfig struct {
	// Path of the claim store file; its directory is created on first start
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// BusyTimeout bounds how long a writer waits for the SQLite lock
	BusyTimeout time.Duration

	// MigrationsDir replaces the embedded schema when non-empty
	MigrationsDir string
}

// ServerConfig describes the JSON API listener.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string

	ShutdownTimeout time.Duration
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// DefaultConfig matches the viper defaults of internal/config, minus the secret.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/claimflow.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			BusyTimeout:     5 * time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,

			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:   "claimflow",
			TokenTTL: 12 * time.Hour,
		},
		Locale:      "en",
		ExportTitle: "Claims",
	}
}

// Validate rejects a config the server cannot start with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}
