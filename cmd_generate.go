// cmd_generate.go
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/alterscript"
	"github.com/arwahdevops/oradelta/internal/delta"
)

type generateOptions struct {
	level               string
	input               string
	output              string
	format              string
	applyDropStatements bool
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the alter script of a delta model",
		Long: `Reads a delta payload (JSON) and prints the Oracle alter script for the
requested level. Drop statements are commented out unless
--apply-drop-statements, APPLY_DROP_STATEMENTS or the payload enables them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(opts.level)
			if err != nil {
				return err
			}
			p, err := a.loadPayload(cmd, opts.input, opts.applyDropStatements)
			if err != nil {
				return err
			}

			gen := a.generator()
			var out []byte
			switch opts.format {
			case formatText:
				script, err := gen.Generate(p, level)
				if err != nil {
					return err
				}
				out = []byte(script)
			case formatJSON, formatYAML:
				dtos, err := gen.Synthesize(p, level)
				if err != nil {
					return err
				}
				if dtos == nil {
					dtos = []*alterscript.AlterScriptDto{}
				}
				if out, err = encode(dtos, opts.format); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported --format %q, expected text, json or yaml", opts.format)
			}
			return writeOutput(opts.output, cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&opts.level, "level", "l", string(delta.LevelEntity), "Script level: entity, container or view")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "Delta payload file, - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&opts.applyDropStatements, "apply-drop-statements", false, "Emit drop statements uncommented")
	return cmd
}

func newDropCheckCmd(a *app) *cobra.Command {
	var level, input string
	cmd := &cobra.Command{
		Use:   "drop-check",
		Short: "Report whether the script of a delta model contains drop statements",
		Long: `Prints true or false. The exit code is 0 when the script has no drop
statements and 3 when it has some, so the command can gate pipelines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := parseLevel(level)
			if err != nil {
				return err
			}
			p, err := a.loadPayload(cmd, input, false)
			if err != nil {
				return err
			}
			hasDrops, err := a.generator().ContainsDropStatements(p, lvl)
			if err != nil {
				return err
			}
			if err := writeOutput("", cmd.OutOrStdout(), []byte(strconv.FormatBool(hasDrops))); err != nil {
				return err
			}
			if hasDrops {
				return &exitError{code: 3, err: fmt.Errorf("script contains drop statements")}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", string(delta.LevelEntity), "Script level: entity, container or view")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Delta payload file, - for stdin")
	return cmd
}

// loadPayload reads the payload and resolves the drop statement switch:
// the CLI flag wins, then APPLY_DROP_STATEMENTS, then the payload itself.
func (a *app) loadPayload(cmd *cobra.Command, input string, applyDrops bool) (*delta.Payload, error) {
	p, err := readPayload(input, cmd.InOrStdin())
	if err != nil {
		a.log.Error("Failed to read delta payload", zap.String("input", input), zap.Error(err))
		return nil, err
	}
	switch {
	case cmd.Flags().Changed("apply-drop-statements"):
		p.SetApplyDropStatements(applyDrops)
	case a.cfg.ApplyDropStatements && !p.ApplyDropStatements():
		p.SetApplyDropStatements(true)
	}
	return p, nil
}
