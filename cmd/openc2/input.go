package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-openc2/pkg/schema"
)

// document is one input file, decoded when it is YAML and kept as raw bytes
// otherwise so the engine applies its own JSON rules.
type document struct {
	label string
	value any
}

func readDocuments(cmd *cobra.Command, args []string) ([]document, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	docs := make([]document, 0, len(args))
	for _, arg := range args {
		var (
			data []byte
			err  error
		)
		if arg == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		value, err := decodeDocument(arg, data)
		if err != nil {
			return nil, err
		}
		label := arg
		if arg == "-" {
			label = "stdin"
		}
		docs = append(docs, document{label: label, value: value})
	}
	return docs, nil
}

func decodeDocument(name string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
	default:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
			return data, nil
		}
	}
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return value, nil
}

func kindFlag(cmd *cobra.Command) (schema.Kind, error) {
	raw, err := cmd.Flags().GetString("kind")
	if err != nil {
		return schema.KindMessage, err
	}
	return schema.ParseKind(raw)
}

func (a *app) render(obj *schema.Object) error {
	text, err := obj.Serialize(a.cfg.Pretty)
	if err != nil {
		return err
	}
	a.printer.Raw(text)
	return nil
}
