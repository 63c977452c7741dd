package openapi_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-openc2/pkg/catalog"
	"github.com/goliatone/go-openc2/pkg/custom"
	"github.com/goliatone/go-openc2/pkg/openapi"
	"github.com/goliatone/go-openc2/pkg/profile/slpf"
	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	if err := catalog.Install(reg); err != nil {
		t.Fatalf("install catalog: %v", err)
	}
	if err := slpf.Install(reg); err != nil {
		t.Fatalf("install slpf: %v", err)
	}
	return reg
}

func TestExport_Document(t *testing.T) {
	reg := newRegistry(t)
	doc, err := openapi.Export(context.Background(), reg, openapi.WithTitle("Firewall"), openapi.WithVersion("2.1"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Info.Title != "Firewall" || doc.Info.Version != "2.1" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	if doc.Paths.Find("/openc2") == nil {
		t.Fatalf("expected /openc2 path")
	}

	for _, key := range []string{
		"message.command", "message.response", "args.args", "args.slpf",
		"target.file", "target.slpf.rule_number", "actuator.slpf", "data.payload",
		openapi.TargetChoice, openapi.ActuatorChoice,
	} {
		if _, ok := doc.Components.Schemas[key]; !ok {
			t.Fatalf("expected component schema %q", key)
		}
	}

	file := doc.Components.Schemas["target.file"].Value
	var names []string
	for name := range file.Properties {
		names = append(names, name)
	}
	if len(names) != 3 {
		t.Fatalf("expected three file properties, got %v", names)
	}
	port := doc.Components.Schemas["target.ipv4_connection"].Value.Properties["dst_port"].Value
	if port.Min == nil || *port.Min != 0 || port.Max == nil || *port.Max != 65535 {
		t.Fatalf("expected port bounds, got %v..%v", port.Min, port.Max)
	}
	command := doc.Components.Schemas["message.command"].Value
	if diff := cmp.Diff([]string{"action", "target"}, command.Required); diff != "" {
		t.Fatalf("unexpected required list (-want +got):\n%s", diff)
	}
}

func TestExportJSON_IncludesCustomTypes(t *testing.T) {
	reg := newRegistry(t)
	if _, err := custom.Target(reg, "acme:badge", []schema.Field{
		schema.Prop("badge", schema.String()),
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	data, err := openapi.ExportJSON(reg)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["target.acme.badge"]; !ok {
		t.Fatalf("expected custom target schema")
	}
	if _, err := openapi.ExportJSON(nil); err == nil {
		t.Fatalf("expected nil registry to fail")
	}
}

func TestValidator(t *testing.T) {
	reg := newRegistry(t)
	doc, err := openapi.Export(context.Background(), reg)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	validator, err := openapi.NewValidator(doc)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	valid := []string{
		`{"action": "deny", "target": {"ipv4_net": "10.0.0.0/8"}}`,
		`{"action": "deny", "target": {"file": {"name": "a"}}, "args": {"duration": 10, "slpf": {"direction": "egress"}}, "actuator": {"slpf": {"hostname": "fw"}}}`,
		`{"action": "delete", "target": {"slpf:rule_number": 4}}`,
		`{"status": 200, "results": {"versions": ["1.0"]}}`,
	}
	for _, raw := range valid {
		if err := validator.ValidateMessage(raw); err != nil {
			t.Fatalf("expected %s to validate: %v", raw, err)
		}
	}

	invalid := []string{
		`{"action": "explode", "target": {"ipv4_net": "10.0.0.0/8"}}`,
		`{"action": "deny"}`,
		`{"action": "deny", "target": {"unknown": 1}}`,
		`{"action": "deny", "target": {"ipv4_net": "a", "file": {"name": "b"}}}`,
		`{"action": "deny", "target": {"ipv4_connection": {"dst_port": 70000}}}`,
		`{"action": "deny", "target": {"uri": "x"}, "args": {"x-unknown": {}}}`,
		`{"status": "ok"}`,
		`{"target": {"uri": "x"}}`,
	}
	for _, raw := range invalid {
		if err := validator.ValidateMessage(raw); err == nil {
			t.Fatalf("expected %s to fail validation", raw)
		}
	}

	target := schema.MustNew(catalog.File, map[string]any{
		"hashes": map[string]any{"SHA-256": strings.Repeat("AB", 32)},
	})
	if err := validator.ValidateTarget(target); err != nil {
		t.Fatalf("expected encoded target to validate: %v", err)
	}
	if err := validator.Validate(schema.KindTarget, "file", map[string]any{"hashes": map[string]any{"md5": "abc"}}); err == nil {
		t.Fatalf("expected bad digest to fail")
	}
	if err := validator.Validate(schema.KindTarget, "missing", map[string]any{}); err == nil {
		t.Fatalf("expected unknown schema to fail")
	}
}
