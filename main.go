// main.go
package main

import (
	"errors"
	"fmt"
	"io/fs"
	stdlog "log"
	"os"
	"strings"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/alterscript"
	"github.com/arwahdevops/oradelta/internal/config"
	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/logger"
	"github.com/arwahdevops/oradelta/internal/metrics"
	"github.com/arwahdevops/oradelta/internal/utils"
)

// app membawa state yang dipakai bersama oleh semua subcommand.
type app struct {
	cfg     *config.Config
	metrics *metrics.Store
	log     *zap.Logger

	envFile              string
	dbVersionOverride    string
	scriptFormatOverride string
	debugOverride        bool
}

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	err := newRootCmd().Execute()
	if logger.Log != nil {
		_ = logger.Log.Sync()
	}
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "oradelta",
		Short:         "Generate and apply Oracle alter scripts from delta models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Path of the .env file (its values override the environment)")
	root.PersistentFlags().StringVar(&a.dbVersionOverride, "db-version", "", "Override DB_VERSION (e.g. 12c, 19c, 21ai, 23ai)")
	root.PersistentFlags().StringVar(&a.scriptFormatOverride, "script-format", "", "Override SCRIPT_FORMAT (quotedIdentifier, nonquotedIdentifier)")
	root.PersistentFlags().BoolVar(&a.debugOverride, "debug", false, "Override DEBUG_MODE")

	root.AddCommand(
		newGenerateCmd(a),
		newDropCheckCmd(a),
		newApplyCmd(a),
		newServeCmd(a),
		newReverseSequencesCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	// 1. Load environment variables (.env overrides)
	if err := godotenv.Overload(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stdlog.Printf("Warning: Could not load %s: %v. Relying on environment variables.\n", a.envFile, err)
	}

	// 2. Initial config loading untuk mendapatkan setting logger
	preCfg := &struct {
		EnableJsonLogging bool `env:"ENABLE_JSON_LOGGING" envDefault:"false"`
		DebugMode         bool `env:"DEBUG_MODE" envDefault:"false"`
	}{}
	if err := env.Parse(preCfg); err != nil {
		stdlog.Printf("Failed to parse pre-configuration for logger: %v", err)
		return err
	}
	if cmd.Flags().Changed("debug") {
		preCfg.DebugMode = a.debugOverride
	}

	// 3. Initialize Zap logger
	if err := logger.Init(preCfg.DebugMode, preCfg.EnableJsonLogging); err != nil {
		stdlog.Printf("Failed to initialize logger: %v", err)
		return err
	}
	a.log = logger.Log

	// 4. Load and validate full configuration dari environment variables
	cfg, err := config.Load()
	if err != nil {
		a.log.Error("Configuration loading error from environment", zap.Error(err))
		return err
	}
	cfg.DebugMode = preCfg.DebugMode

	// --- Terapkan Override dari Flag CLI SETELAH config.Load() ---
	if err := a.applyCliOverrides(cfg); err != nil {
		a.log.Error("Invalid CLI override", zap.Error(err))
		return err
	}
	a.cfg = cfg
	a.logLoadedConfig()

	a.metrics = metrics.NewMetricsStore()
	return nil
}

// applyCliOverrides menerapkan nilai dari flag CLI ke struct Config.
func (a *app) applyCliOverrides(cfg *config.Config) error {
	if a.dbVersionOverride != "" {
		if _, ok := (ddl.Target{DBVersion: a.dbVersionOverride}).Version(); !ok {
			return fmt.Errorf("invalid value %q for --db-version", a.dbVersionOverride)
		}
		a.log.Info("Overriding DB_VERSION with CLI flag", zap.String("env_value", cfg.DBVersion), zap.String("cli_value", a.dbVersionOverride))
		cfg.DBVersion = a.dbVersionOverride
	}
	if a.scriptFormatOverride != "" {
		switch a.scriptFormatOverride {
		case utils.ScriptFormatQuoted, utils.ScriptFormatNonQuoted:
			a.log.Info("Overriding SCRIPT_FORMAT with CLI flag", zap.String("env_value", cfg.ScriptFormat), zap.String("cli_value", a.scriptFormatOverride))
			cfg.ScriptFormat = a.scriptFormatOverride
		default:
			return fmt.Errorf("invalid value %q for --script-format, allowed values: %s",
				a.scriptFormatOverride, strings.Join([]string{utils.ScriptFormatQuoted, utils.ScriptFormatNonQuoted}, ", "))
		}
	}
	return nil
}

// logLoadedConfig mencatat konfigurasi final yang digunakan.
func (a *app) logLoadedConfig() {
	cfg := a.cfg
	passSource := "not set"
	if cfg.Oracle.Password != "" {
		passSource = "env var"
	} else if cfg.VaultEnabled && cfg.Oracle.SecretPath != "" {
		passSource = "vault"
	}

	a.log.Debug("Final configuration in use",
		zap.String("db_version", cfg.DBVersion),
		zap.String("script_format", cfg.ScriptFormat),
		zap.Bool("apply_drop_statements", cfg.ApplyDropStatements),
		zap.Bool("apply_continue_on_error", cfg.ApplyContinueOnError),
		zap.Duration("statement_timeout", cfg.StatementTimeout),
		zap.String("oracle_host", cfg.Oracle.Host), zap.Int("oracle_port", cfg.Oracle.Port), zap.String("oracle_service", cfg.Oracle.Service),
		zap.String("oracle_user", cfg.Oracle.User), zap.String("oracle_password_source", passSource),
		zap.String("oracle_secret_path", cfg.Oracle.SecretPath), zap.String("oracle_username_key", cfg.Oracle.UsernameKey), zap.String("oracle_password_key", cfg.Oracle.PasswordKey),
		zap.Int("max_retries", cfg.MaxRetries), zap.Duration("retry_interval", cfg.RetryInterval),
		zap.Int("conn_pool_size", cfg.ConnPoolSize), zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		zap.Bool("json_logging", cfg.EnableJsonLogging), zap.Bool("enable_pprof", cfg.EnablePprof), zap.Int("metrics_port", cfg.MetricsPort), zap.Bool("debug_mode", cfg.DebugMode),
		zap.Bool("vault_enabled", cfg.VaultEnabled), zap.String("vault_addr", cfg.VaultAddr), zap.Bool("vault_token_present", cfg.VaultToken != ""),
		zap.String("vault_cacert", cfg.VaultCACert), zap.Bool("vault_skip_verify", cfg.VaultSkipVerify), zap.String("vault_kv_mount", cfg.VaultKVMount),
	)
}

func (a *app) generator() *alterscript.Generator {
	return alterscript.NewGenerator(a.cfg.Target(), a.log, a.metrics)
}
