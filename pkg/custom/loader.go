package custom

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// Definition describes one custom type in a JSON or YAML file.
type Definition struct {
	Name        string           `json:"name" yaml:"name"`
	Kind        string           `json:"kind" yaml:"kind"`
	Description string           `json:"description" yaml:"description"`
	Fields      []FieldSpec      `json:"fields" yaml:"fields"`
	Constraints ConstraintConfig `json:"constraints" yaml:"constraints"`
}

// FieldSpec describes one field and its property kind.
type FieldSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Type        string     `json:"type" yaml:"type"`
	Required    bool       `json:"required" yaml:"required"`
	Default     any        `json:"default" yaml:"default"`
	Fixed       any        `json:"fixed" yaml:"fixed"`
	Min         *float64   `json:"min" yaml:"min"`
	Max         *float64   `json:"max" yaml:"max"`
	MaxItems    int        `json:"maxItems" yaml:"maxItems"`
	Unique      bool       `json:"unique" yaml:"unique"`
	Values      []string   `json:"values" yaml:"values"`
	AllowedKeys []string   `json:"allowedKeys" yaml:"allowedKeys"`
	Items       *FieldSpec `json:"items" yaml:"items"`
	Ref         string     `json:"ref" yaml:"ref"`
}

// ConstraintConfig lists cross-property checks.
type ConstraintConfig struct {
	AtLeastOne        []string            `json:"atLeastOne" yaml:"atLeastOne"`
	MutuallyExclusive [][]string          `json:"mutuallyExclusive" yaml:"mutuallyExclusive"`
	Dependencies      map[string][]string `json:"dependencies" yaml:"dependencies"`
}

type documentFile struct {
	Types []Definition `json:"types" yaml:"types"`
}

// LoadFS walks fsys and registers every type defined in its JSON/YAML files.
// Files are visited in lexical order and types in declaration order, so a
// definition may embed any type registered before it. A nil fsys is a no-op.
func LoadFS(fsys fs.FS, reg *registry.Registry) ([]*schema.Type, error) {
	if fsys == nil {
		return nil, nil
	}
	var loaded []*schema.Type
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("custom: read %s: %w", path, err)
		}
		types, err := Load(data, path, reg)
		if err != nil {
			return err
		}
		loaded = append(loaded, types...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

// Load parses one JSON or YAML document and registers its types.
func Load(data []byte, source string, reg *registry.Registry) ([]*schema.Type, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	out := make([]*schema.Type, 0, len(doc.Types))
	for i, def := range doc.Types {
		t, err := def.Register(reg)
		if err != nil {
			return nil, fmt.Errorf("custom: %s: type %d (%s): %w", source, i, def.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("custom: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("custom: parse %s: invalid JSON or YAML", source)
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Register builds the definition's fields and registers the type.
func (d Definition) Register(reg *registry.Registry) (*schema.Type, error) {
	if reg == nil {
		return nil, schema.NewDefinitionError(d.Name, "registry is required")
	}
	kind, err := schema.ParseKind(d.Kind)
	if err != nil {
		return nil, schema.NewDefinitionError(d.Name, "%v", err)
	}
	fields := make([]schema.Field, 0, len(d.Fields))
	for _, spec := range d.Fields {
		prop, err := spec.property(reg)
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Prop(spec.Name, prop))
	}

	var opts []schema.TypeOption
	if d.Description != "" {
		opts = append(opts, schema.WithDescription(d.Description))
	}
	if len(d.Constraints.AtLeastOne) > 0 {
		opts = append(opts, schema.WithConstraints(schema.CheckAtLeastOne(d.Constraints.AtLeastOne...)))
	}
	for _, group := range d.Constraints.MutuallyExclusive {
		opts = append(opts, schema.WithConstraints(schema.CheckMutuallyExclusive(group...)))
	}
	for _, prop := range sortedDependencyKeys(d.Constraints.Dependencies) {
		opts = append(opts, schema.WithConstraints(schema.CheckDependency(prop, d.Constraints.Dependencies[prop]...)))
	}
	return Register(reg, kind, d.Name, fields, opts...)
}

func (s FieldSpec) property(reg *registry.Registry) (schema.Property, error) {
	var opts []schema.PropertyOption
	if s.Required {
		opts = append(opts, schema.Required())
	}
	if s.Default != nil {
		value := s.Default
		opts = append(opts, schema.WithDefault(func() any { return value }))
	}
	if s.Fixed != nil {
		opts = append(opts, schema.Fixed(s.Fixed))
	}
	if s.Min != nil {
		opts = append(opts, schema.Min(*s.Min))
	}
	if s.Max != nil {
		opts = append(opts, schema.Max(*s.Max))
	}
	if s.MaxItems > 0 {
		opts = append(opts, schema.MaxItems(s.MaxItems))
	}
	if s.Unique {
		opts = append(opts, schema.Unique())
	}
	if len(s.AllowedKeys) > 0 {
		opts = append(opts, schema.AllowedKeys(s.AllowedKeys...))
	}

	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "", "string":
		return schema.String(opts...), nil
	case "enum":
		if len(s.Values) == 0 {
			return nil, schema.NewDefinitionError(s.Name, "enum fields require values")
		}
		return schema.Enum(s.Values, opts...), nil
	case "integer":
		return schema.Integer(opts...), nil
	case "float", "number":
		return schema.Float(opts...), nil
	case "boolean":
		return schema.Boolean(opts...), nil
	case "binary":
		return schema.Binary(opts...), nil
	case "datetime":
		return schema.DateTime(opts...), nil
	case "dictionary":
		return schema.Dictionary(opts...), nil
	case "hashes":
		return schema.Hashes(opts...), nil
	case "target":
		return schema.Target(opts...), nil
	case "actuator":
		return schema.Actuator(opts...), nil
	case "args":
		return schema.Args(opts...), nil
	case "list":
		if s.Items == nil {
			return nil, schema.NewDefinitionError(s.Name, "list fields require items")
		}
		items, err := s.Items.property(reg)
		if err != nil {
			return nil, err
		}
		return schema.List(items, opts...), nil
	case "embedded":
		t, ok := resolveRef(reg, s.Ref)
		if !ok {
			return nil, schema.NewDefinitionError(s.Name, "unknown embedded type %q", s.Ref)
		}
		return schema.Embedded(t, opts...), nil
	}
	return nil, schema.NewDefinitionError(s.Name, "unsupported field type %q", s.Type)
}

var refKinds = []schema.Kind{
	schema.KindProperty, schema.KindData, schema.KindTarget, schema.KindActuator, schema.KindArgs,
}

func resolveRef(reg *registry.Registry, ref string) (*schema.Type, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	for _, kind := range refKinds {
		if t, ok := reg.Resolve(kind, ref); ok {
			return t, true
		}
	}
	return nil, false
}

func sortedDependencyKeys(deps map[string][]string) []string {
	keys := make([]string, 0, len(deps))
	for key := range deps {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
