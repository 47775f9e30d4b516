// cmd_serve.go
package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/apply"
	"github.com/arwahdevops/oradelta/internal/db"
	"github.com/arwahdevops/oradelta/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var noDatabase bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve script generation, apply, health and metrics over HTTP",
		Long: `Starts the HTTP server on METRICS_PORT. When ORACLE_HOST is set (and
--no-database is not given) the server also connects to Oracle and exposes
POST /v1/apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup context untuk graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deps := server.Deps{
				Config:    a.cfg,
				Metrics:   a.metrics,
				Generator: a.generator(),
				Logger:    a.log,
			}

			if a.cfg.Oracle.Configured() && !noDatabase {
				conn, err := a.connectOracle(ctx)
				if err != nil {
					return err
				}
				defer a.closeOracle(conn)
				deps.Conn = conn
				deps.Applier = apply.NewExecutor(conn.DB, apply.Options{
					ContinueOnError:  a.cfg.ApplyContinueOnError,
					StatementTimeout: a.cfg.StatementTimeout,
				}, a.log, a.metrics)
			} else {
				a.log.Info("No Oracle instance configured, /v1/apply is disabled.")
			}

			err := server.RunHTTPServer(ctx, deps)
			logShutdown(a.log, deps.Conn)
			return err
		},
	}
	cmd.Flags().BoolVar(&noDatabase, "no-database", false, "Do not connect to Oracle even when ORACLE_HOST is set")
	return cmd
}

func logShutdown(log *zap.Logger, conn *db.Connector) {
	log.Info("Shutdown complete.", zap.Bool("database_connected", conn != nil))
}
