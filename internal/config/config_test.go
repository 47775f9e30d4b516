// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "21ai", cfg.DBVersion)
	assert.Equal(t, "quotedIdentifier", cfg.ScriptFormat)
	assert.False(t, cfg.ApplyDropStatements)
	assert.True(t, cfg.ApplyContinueOnError)
	assert.Equal(t, 1521, cfg.Oracle.Port)
	assert.Equal(t, "username", cfg.Oracle.UsernameKey)
	assert.False(t, cfg.Oracle.Configured())

	target := cfg.Target()
	assert.Equal(t, "21ai", target.DBVersion)
	assert.Equal(t, "quotedIdentifier", target.ScriptFormat)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_VERSION", "19c")
	t.Setenv("SCRIPT_FORMAT", "nonquotedIdentifier")
	t.Setenv("APPLY_DROP_STATEMENTS", "true")
	t.Setenv("ORACLE_HOST", "db.internal")
	t.Setenv("ORACLE_SERVICE", "ORCLPDB1")
	t.Setenv("ORACLE_USER", "system")
	t.Setenv("ORACLE_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "19c", cfg.DBVersion)
	assert.Equal(t, "nonquotedIdentifier", cfg.ScriptFormat)
	assert.True(t, cfg.ApplyDropStatements)
	assert.True(t, cfg.Oracle.Configured())
	assert.NoError(t, cfg.RequireDatabase())
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBVersion:        "23ai",
			ScriptFormat:     "quotedIdentifier",
			MetricsPort:      9091,
			ConnPoolSize:     4,
			StatementTimeout: 1,
			Oracle:           DatabaseConfig{Port: 1521},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad script format", mutate: func(c *Config) { c.ScriptFormat = "backticks" }, wantErr: "invalid script format"},
		{name: "bad db version", mutate: func(c *Config) { c.DBVersion = "latest" }, wantErr: "invalid DB version"},
		{name: "bad metrics port", mutate: func(c *Config) { c.MetricsPort = 0 }, wantErr: "invalid metrics port"},
		{name: "bad oracle port", mutate: func(c *Config) { c.Oracle.Host = "x"; c.Oracle.Port = 70000 }, wantErr: "invalid oracle port"},
		{name: "oracle port ignored without host", mutate: func(c *Config) { c.Oracle.Port = 70000 }},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: "max retries"},
		{name: "pool size", mutate: func(c *Config) { c.ConnPoolSize = 0 }, wantErr: "pool size"},
		{name: "statement timeout", mutate: func(c *Config) { c.StatementTimeout = 0 }, wantErr: "statement timeout"},
		{name: "vault without addr", mutate: func(c *Config) { c.VaultEnabled = true }, wantErr: "VAULT_ADDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireDatabase(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.RequireDatabase(), "ORACLE_HOST")

	cfg.Oracle = DatabaseConfig{Host: "localhost", Service: "FREEPDB1"}
	assert.ErrorContains(t, cfg.RequireDatabase(), "ORACLE_PASSWORD")

	cfg.Oracle.SecretPath = "oracle/app"
	assert.Error(t, cfg.RequireDatabase(), "secret path needs vault enabled")

	cfg.VaultEnabled = true
	assert.NoError(t, cfg.RequireDatabase())
}
