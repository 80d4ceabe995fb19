package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "claimflow", cfg.Auth.Issuer)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/claimflow.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Client.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Client.NotificationPoll)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  cors_origins: ["http://localhost:3000"]
  locale: vi
auth:
  jwt_secret: from-file
  token_ttl: 1h
client:
  base_url: http://claims.internal
  poll_interval: 1m
`)
	t.Setenv("CLAIMFLOW_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "vi", cfg.Server.Locale)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "http://claims.internal", cfg.Client.BaseURL)
	assert.Equal(t, time.Minute, cfg.Client.PollInterval)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "negative token ttl",
			env:     map[string]string{"CLAIMFLOW_AUTH_TOKEN_TTL": "-1h"},
			wantErr: "auth.token_ttl must be positive",
		},
		{
			name:    "zero poll interval",
			env:     map[string]string{"JWT_SECRET": "x", "CLAIMFLOW_CLIENT_POLL_INTERVAL": "0s"},
			wantErr: "client.poll_interval must be positive",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"JWT_SECRET": "x", "CLAIMFLOW_SERVER_PORT": "70000"},
			wantErr: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_SecretIsOptionalForClients(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CLAIMFLOW_TOKEN", "bearer-value")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "bearer-value", cfg.Client.Token)

	err = cfg.ToContainerConfig().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret is required")
}

func TestToContainerConfig(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8181, CORSOrigins: []string{"*"}, Locale: "vi"},
		Database: DatabaseConfig{Path: "claims.db", MaxOpenConns: 4, BusyTimeout: 2 * time.Second},
		Auth:     AuthConfig{JWTSecret: "k", Issuer: "iss", TokenTTL: time.Minute},
	}

	cc := cfg.ToContainerConfig()

	assert.Equal(t, "127.0.0.1", cc.Server.Host)
	assert.Equal(t, 8181, cc.Server.Port)
	assert.Equal(t, []string{"*"}, cc.Server.CORSOrigins)
	assert.Equal(t, "claims.db", cc.Database.Path)
	assert.Equal(t, 2*time.Second, cc.Database.BusyTimeout)
	assert.Equal(t, "k", cc.Auth.Secret)
	assert.Equal(t, "vi", cc.Locale)
	assert.Equal(t, "Claims", cc.ExportTitle)
	require.NoError(t, cc.Validate())
}
