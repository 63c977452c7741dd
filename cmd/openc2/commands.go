package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-openc2"
	"github.com/goliatone/go-openc2/internal/cli"
	"github.com/goliatone/go-openc2/internal/prompt"
	"github.com/goliatone/go-openc2/pkg/openapi"
	"github.com/goliatone/go-openc2/pkg/validation"
)

// errInvalid marks a run that printed issues; the issues themselves have
// already been reported.
var errInvalid = errors.New("one or more inputs are invalid")

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file|-]...",
		Short: "Parse messages and print their canonical JSON",
		Long: `Parse reads each input (JSON or YAML, "-" for stdin), resolves it through
the type registry and prints the canonical serialisation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}
			docs, err := readDocuments(cmd, args)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				obj, err := a.engine.ParseKind(doc.value, kind)
				if err != nil {
					a.printer.Error("%s: %v", doc.label, err)
					return errInvalid
				}
				a.logger.Debug("parsed input", "input", doc.label, "type", obj.TypeName(), "custom", obj.IsCustomContent())
				if err := a.render(obj); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("kind", "message", "kind to parse: message, target, actuator, args")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		openAPI bool
	)
	cmd := &cobra.Command{
		Use:   "validate [file|-]...",
		Short: "Validate messages and report every issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}
			docs, err := readDocuments(cmd, args)
			if err != nil {
				return err
			}
			opts := []validation.Option{validation.WithAllowCustom(a.cfg.AllowCustom)}
			if openAPI {
				doc, err := openapi.Export(cmd.Context(), a.engine.Registry())
				if err != nil {
					return err
				}
				validator, err := openapi.NewValidator(doc)
				if err != nil {
					return err
				}
				opts = append(opts, validation.WithValidator(validator))
			}

			results := make(map[string]validation.Result, len(docs))
			failed := false
			for _, doc := range docs {
				result := validation.Check(a.engine, doc.value, kind, opts...)
				results[doc.label] = result
				failed = failed || !result.Valid
				if !asJSON {
					a.printer.Report(doc.label, result)
				}
			}
			if asJSON {
				if err := a.printer.JSON(results); err != nil {
					return err
				}
			}
			if failed {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().String("kind", "message", "kind to validate: message, target, actuator, args")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&openAPI, "openapi", true, "also check the wire form against the exported OpenAPI document")
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	var (
		title   string
		version string
		path    string
		servers []string
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export the registered types as an OpenAPI document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []openapi.Option{
				openapi.WithTitle(title),
				openapi.WithVersion(version),
				openapi.WithPath(path),
				openapi.WithServers(servers...),
			}
			doc, err := openapi.Export(cmd.Context(), a.engine.Registry(), opts...)
			if err != nil {
				return err
			}
			if !a.cfg.Pretty {
				data, err := doc.MarshalJSON()
				if err != nil {
					return err
				}
				a.printer.Raw(string(data))
				return nil
			}
			return a.printer.JSON(doc)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "info.title of the document")
	cmd.Flags().StringVar(&version, "doc-version", "", "info.version of the document")
	cmd.Flags().StringVar(&path, "path", "", "path of the command endpoint")
	cmd.Flags().StringSliceVar(&servers, "server", nil, "server URL (repeatable)")
	return cmd
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered types",
		RunE: func(_ *cobra.Command, _ []string) error {
			entries := a.engine.Registry().Entries()
			table := cli.NewTable("KIND", "NAME", "TABLE", "DESCRIPTION")
			for _, entry := range entries {
				source := "core"
				if entry.Extension {
					source = "extension"
				}
				table.AddRow(entry.Type.Kind().String(), entry.Type.Name(), source, entry.Type.Description())
			}
			table.Render(a.printer)
			a.printer.Info("%d types registered", len(entries))
			return nil
		},
	}
}

func newComposeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compose",
		Short: "Build a command interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			composer, err := prompt.NewComposer(a.engine, prompt.NewSurveyDriver(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			obj, err := composer.Compose(ctx)
			if errors.Is(err, prompt.ErrAborted) {
				a.printer.Warn("aborted")
				return nil
			}
			if err != nil {
				return err
			}
			return a.render(obj)
		},
	}
}

func newExamplesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "examples [name]",
		Short: "List bundled example messages or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range openc2.ExampleNames() {
					a.printer.Raw(name)
				}
				return nil
			}
			data, err := openc2.Example(args[0])
			if err != nil {
				return err
			}
			obj, err := a.engine.Parse(data)
			if err != nil {
				return fmt.Errorf("example %s: %w", args[0], err)
			}
			return a.render(obj)
		},
	}
}
