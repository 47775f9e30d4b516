// cmd_apply.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/apply"
	"github.com/arwahdevops/oradelta/internal/delta"
)

type applyOptions struct {
	script              string
	model               string
	level               string
	applyDropStatements bool
	continueOnError     bool
	statementTimeout    time.Duration
	dryRun              bool
}

func newApplyCmd(a *app) *cobra.Command {
	opts := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute an alter script against the configured Oracle instance",
		Long: `Executes a rendered script statement by statement. With --model the
script is generated from a delta payload first. "Already exists" errors
(ORA-00955, ORA-01920) are ignored. Exit code 1 means at least one
statement failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.script == "") == (opts.model == "") {
				return fmt.Errorf("exactly one of --script or --model is required")
			}
			script, err := a.resolveScript(cmd, opts)
			if err != nil {
				return err
			}

			if opts.dryRun {
				stmts := apply.SplitStatements(script)
				a.log.Info("Dry run, statements are not executed", zap.Int("statements", len(stmts)))
				return writeOutput("", cmd.OutOrStdout(), []byte(strings.Join(stmts, "\n/\n")))
			}

			// Setup context untuk graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, err := a.connectOracle(ctx)
			if err != nil {
				return err
			}
			defer a.closeOracle(conn)

			execOpts := apply.Options{
				ContinueOnError:  a.cfg.ApplyContinueOnError,
				StatementTimeout: a.cfg.StatementTimeout,
			}
			if cmd.Flags().Changed("continue-on-error") {
				execOpts.ContinueOnError = opts.continueOnError
			}
			if cmd.Flags().Changed("statement-timeout") {
				execOpts.StatementTimeout = opts.statementTimeout
			}

			executor := apply.NewExecutor(conn.DB, execOpts, a.log, a.metrics)
			res, applyErr := executor.Apply(ctx, script)
			return a.processApplyResult(res, applyErr)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "Rendered script file, - for stdin")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Delta payload file to render and apply, - for stdin")
	cmd.Flags().StringVarP(&opts.level, "level", "l", string(delta.LevelEntity), "Script level used with --model")
	cmd.Flags().BoolVar(&opts.applyDropStatements, "apply-drop-statements", false, "Render drop statements uncommented (with --model)")
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", true, "Override APPLY_CONTINUE_ON_ERROR")
	cmd.Flags().DurationVar(&opts.statementTimeout, "statement-timeout", 0, "Override STATEMENT_TIMEOUT")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the split statements without connecting")
	return cmd
}

func (a *app) resolveScript(cmd *cobra.Command, opts *applyOptions) (string, error) {
	if opts.script != "" {
		data, err := readInput(opts.script, cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	level, err := parseLevel(opts.level)
	if err != nil {
		return "", err
	}
	p, err := a.loadPayload(cmd, opts.model, opts.applyDropStatements)
	if err != nil {
		return "", err
	}
	return a.generator().Generate(p, level)
}

// processApplyResult mencatat ringkasan dan menentukan exit code.
func (a *app) processApplyResult(res *apply.Result, err error) error {
	if res == nil {
		res = &apply.Result{}
	}
	fields := []zap.Field{
		zap.Int("statements_total", res.Total),
		zap.Int("statements_executed", res.Executed),
		zap.Int("statements_ignored", res.Ignored),
		zap.Int("statements_failed", res.Failed),
		zap.Duration("duration", res.Duration),
	}

	switch {
	case err == nil:
		a.log.Info("Apply: COMPLETED SUCCESSFULLY.", fields...)
		return nil
	case errors.Is(err, context.Canceled):
		a.log.Warn("Apply: INTERRUPTED before all statements ran.", append(fields, zap.Error(err))...)
		return &exitError{code: 2, err: err}
	default:
		a.log.Error("Apply: COMPLETED WITH ERRORS.", append(fields, zap.Error(err))...)
		return &exitError{code: 1, err: err}
	}
}
