// internal/config/config.go
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/utils"
)

type Config struct {
	// Script rendering
	DBVersion           string `env:"DB_VERSION" envDefault:"21ai"`
	ScriptFormat        string `env:"SCRIPT_FORMAT" envDefault:"quotedIdentifier"`
	ApplyDropStatements bool   `env:"APPLY_DROP_STATEMENTS" envDefault:"false"`

	// Apply to instance
	ApplyContinueOnError bool          `env:"APPLY_CONTINUE_ON_ERROR" envDefault:"true"` // Lanjut ke statement berikutnya, error digabung di akhir
	StatementTimeout     time.Duration `env:"STATEMENT_TIMEOUT" envDefault:"2m"`

	// Retry Logic (koneksi)
	MaxRetries    int           `env:"MAX_RETRIES" envDefault:"3"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"`

	// Connection Pool
	ConnPoolSize    int           `env:"CONN_POOL_SIZE" envDefault:"4"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`

	// Observability & Debugging
	EnableJsonLogging bool `env:"ENABLE_JSON_LOGGING" envDefault:"false"`
	DebugMode         bool `env:"DEBUG_MODE" envDefault:"false"`
	EnablePprof       bool `env:"ENABLE_PPROF" envDefault:"false"`
	MetricsPort       int  `env:"METRICS_PORT" envDefault:"9091"` // /metrics, /healthz, /readyz, /v1/scripts/*

	// Database
	Oracle DatabaseConfig `envPrefix:"ORACLE_"`

	// Vault
	VaultEnabled    bool   `env:"VAULT_ENABLED" envDefault:"false"`
	VaultAddr       string `env:"VAULT_ADDR" envDefault:"http://127.0.0.1:8200"`
	VaultToken      string `env:"VAULT_TOKEN"`
	VaultCACert     string `env:"VAULT_CACERT"`
	VaultSkipVerify bool   `env:"VAULT_SKIP_VERIFY" envDefault:"false"`
	VaultKVMount    string `env:"VAULT_KV_MOUNT" envDefault:"secret"`
}

// DatabaseConfig describes the Oracle instance used by apply and reverse.
// Host kosong berarti tidak ada koneksi database yang dikonfigurasi.
type DatabaseConfig struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"1521"`
	Service     string `env:"SERVICE" envDefault:"FREEPDB1"`
	User        string `env:"USER"`
	Password    string `env:"PASSWORD"`
	SecretPath  string `env:"SECRET_PATH"`
	UsernameKey string `env:"USERNAME_KEY" envDefault:"username"`
	PasswordKey string `env:"PASSWORD_KEY" envDefault:"password"`
}

// Configured reports whether a database host has been set.
func (d DatabaseConfig) Configured() bool {
	return strings.TrimSpace(d.Host) != ""
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config parsing error: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Target returns the default rendering dialect.
func (c *Config) Target() ddl.Target {
	return ddl.Target{ScriptFormat: c.ScriptFormat, DBVersion: c.DBVersion}
}

// RequireDatabase fails when the Oracle connection settings are incomplete.
func (c *Config) RequireDatabase() error {
	if !c.Oracle.Configured() {
		return fmt.Errorf("ORACLE_HOST is required for this command")
	}
	if strings.TrimSpace(c.Oracle.Service) == "" {
		return fmt.Errorf("ORACLE_SERVICE is required for this command")
	}
	if c.Oracle.Password == "" && (c.Oracle.SecretPath == "" || !c.VaultEnabled) {
		return fmt.Errorf("either ORACLE_PASSWORD or VAULT_ENABLED=true with ORACLE_SECRET_PATH must be set")
	}
	return nil
}

func validateConfig(cfg *Config) error {
	allowedFormats := map[string]bool{
		utils.ScriptFormatQuoted:    true,
		utils.ScriptFormatNonQuoted: true,
	}
	if !allowedFormats[cfg.ScriptFormat] {
		return fmt.Errorf("invalid script format: %s. Valid options: %v",
			cfg.ScriptFormat, getMapKeys(allowedFormats))
	}

	if _, ok := (ddl.Target{DBVersion: cfg.DBVersion}).Version(); !ok {
		return fmt.Errorf("invalid DB version: %q (expected a leading major version, e.g. 19c or 23ai)", cfg.DBVersion)
	}

	// Validasi port
	validatePort := func(port int, name string) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s port: %d", name, port)
		}
		return nil
	}
	if err := validatePort(cfg.MetricsPort, "metrics"); err != nil {
		return err
	}
	if cfg.Oracle.Configured() {
		if err := validatePort(cfg.Oracle.Port, "oracle"); err != nil {
			return err
		}
	}

	// Validasi nilai numerik
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if cfg.ConnPoolSize <= 0 {
		return fmt.Errorf("connection pool size must be positive")
	}
	if cfg.StatementTimeout <= 0 {
		return fmt.Errorf("statement timeout must be positive")
	}

	if cfg.VaultEnabled && strings.TrimSpace(cfg.VaultAddr) == "" {
		return fmt.Errorf("VAULT_ADDR is required when VAULT_ENABLED=true")
	}

	return nil
}

func getMapKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Sort for consistent error messages
	return keys
}
