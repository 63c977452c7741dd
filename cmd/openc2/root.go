package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-openc2"
	"github.com/goliatone/go-openc2/internal/cli"
	"github.com/goliatone/go-openc2/pkg/custom"
	"github.com/goliatone/go-openc2/pkg/dispatch"
)

// app carries the state every subcommand shares after PersistentPreRunE.
type app struct {
	cfgFile     string
	allowCustom bool
	pretty      bool
	noColor     bool
	logLevel    string
	logFormat   string
	definitions []string

	cfg     *cli.Config
	logger  *slog.Logger
	printer *cli.Printer
	engine  *dispatch.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "openc2",
		Short: "Parse, validate and compose OpenC2 messages",
		Long: `openc2 reads OpenC2 commands and responses, validates them against the
registered type catalog, exports the catalog as an OpenAPI document and
composes new commands interactively.

Custom targets, actuators and args can be declared in JSON or YAML files
and loaded with --definitions.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.openc2/config.yaml)")
	flags.BoolVar(&a.allowCustom, "allow-custom", false, "pass unknown content through instead of failing")
	flags.BoolVar(&a.pretty, "pretty", true, "pretty-print JSON output")
	flags.BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json")
	flags.StringSliceVar(&a.definitions, "definitions", nil, "directories of custom type definitions")

	root.AddCommand(
		newParseCmd(a),
		newValidateCmd(a),
		newSchemaCmd(a),
		newTypesCmd(a),
		newComposeCmd(a),
		newExamplesCmd(a),
	)
	return root
}

// setup resolves configuration, applies flag overrides and builds the engine.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := cli.Load(a.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("allow-custom") {
		cfg.AllowCustom = a.allowCustom
	}
	if flags.Changed("pretty") {
		cfg.Pretty = a.pretty
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("definitions") {
		cfg.Definitions = a.definitions
	}
	a.cfg = cfg

	level, err := cli.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = cli.NewLogger(cmd.ErrOrStderr(), level, cfg.Log.Format)
	a.printer = cli.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.noColor)

	reg, err := openc2.NewRegistry()
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	for _, dir := range cfg.Definitions {
		types, err := custom.LoadFS(os.DirFS(dir), reg)
		if err != nil {
			return fmt.Errorf("load definitions from %s: %w", dir, err)
		}
		a.logger.Debug("loaded custom definitions", "dir", dir, "types", len(types))
	}
	a.engine = dispatch.New(reg,
		dispatch.WithLogger(a.logger),
		dispatch.WithDefaultAllowCustom(cfg.AllowCustom),
	)
	a.logger.Debug("configuration resolved", "config", cfg.Path(), "allow_custom", cfg.AllowCustom)
	return nil
}
