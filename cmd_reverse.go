// cmd_reverse.go
package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/logger"
	"github.com/arwahdevops/oradelta/internal/reverse"
)

type reverseOptions struct {
	schemas     []string
	concurrency int
	noFilter    bool
	format      string
	output      string
}

func newReverseSequencesCmd(a *app) *cobra.Command {
	opts := &reverseOptions{}
	cmd := &cobra.Command{
		Use:   "reverse-sequences",
		Short: "Read sequence definitions of Oracle schemas",
		Long: `Reads the sequences of each schema from the data dictionary and prints
them in the delta model sequence shape. By default only sequences that are
referenced by a table or view DDL of the same schema are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatJSON && opts.format != formatYAML {
				return fmt.Errorf("unsupported --format %q, expected json or yaml", opts.format)
			}
			schemas := normalizeSchemas(opts.schemas)
			if len(schemas) == 0 {
				return fmt.Errorf("at least one schema is required (--schemas)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, err := a.connectOracle(ctx)
			if err != nil {
				return err
			}
			defer a.closeOracle(conn)

			source := &reverse.OracleSource{DB: conn.DB, Tracer: logger.NewSQLTracer(a.log, a.cfg.DebugMode)}
			reader := reverse.NewReader(source, opts.concurrency, !opts.noFilter, a.log, a.metrics)
			results, readErr := reader.Read(ctx, schemas)
			if readErr != nil {
				a.log.Error("Some schemas could not be read", zap.Error(readErr))
			}

			out, err := encode(results, opts.format)
			if err != nil {
				return err
			}
			if err := writeOutput(opts.output, cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if readErr != nil {
				return &exitError{code: 1, err: readErr}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.schemas, "schemas", nil, "Comma separated schema names")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Schemas read in parallel")
	cmd.Flags().BoolVar(&opts.noFilter, "no-usage-filter", false, "Keep sequences that no table or view references")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "Output format: json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of stdout")
	return cmd
}

// normalizeSchemas trims and de-duplicates schema names.
func normalizeSchemas(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
