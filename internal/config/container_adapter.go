package config

import (
	"github.com/garyjia/claimflow/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	cc := container.DefaultConfig()

	cc.Database = container.DatabaseConfig{
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		BusyTimeout:     c.Database.BusyTimeout,
		MigrationsDir:   c.Database.MigrationsDir,
	}
	cc.Server = container.ServerConfig{
		Host:         c.Server.Host,
		Port:         c.Server.Port,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
		CORSOrigins:  append([]string(nil), c.Server.CORSOrigins...),

		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
	cc.Auth = container.AuthConfig{
		Secret:   c.Auth.JWTSecret,
		Issuer:   c.Auth.Issuer,
		TokenTTL: c.Auth.TokenTTL,
	}
	if c.Server.Locale != "" {
		cc.Locale = c.Server.Locale
	}

	return cc
}
