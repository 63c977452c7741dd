package openc2_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-openc2"
	"github.com/goliatone/go-openc2/pkg/catalog"
	"github.com/goliatone/go-openc2/pkg/openapi"
	"github.com/goliatone/go-openc2/pkg/schema"
	"github.com/goliatone/go-openc2/pkg/testsupport"
	"github.com/goliatone/go-openc2/pkg/validation"
)

func TestExamples_RoundTripCanonically(t *testing.T) {
	names := openc2.ExampleNames()
	want := []string{"delete_rule", "deny_connection", "investigate_process", "query_features", "response_ok"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected examples (-want +got):\n%s", diff)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			raw, err := openc2.Example(name)
			if err != nil {
				t.Fatalf("example: %v", err)
			}
			msg, err := openc2.Parse(raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := msg.Serialize(true)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			if testsupport.WriteMaybeGolden(t, "examples/messages/"+name+".json", []byte(got+"\n")) {
				return
			}
			if diff := testsupport.CompareGolden(strings.TrimSpace(string(raw)), got); diff != "" {
				t.Fatalf("canonical form mismatch (-want +got):\n%s", diff)
			}

			again, err := openc2.Parse(got)
			if err != nil {
				t.Fatalf("reparse: %v", err)
			}
			if !again.Equal(msg) {
				t.Fatalf("expected reparsed message to equal original")
			}
		})
	}

	if _, err := openc2.Example("missing"); err == nil {
		t.Fatalf("expected unknown example to fail")
	}
}

func TestNewCommand(t *testing.T) {
	target := schema.MustNew(catalog.DomainName, map[string]any{"domain_name": "example.com"})
	cmd, err := openc2.NewCommand("deny", target,
		openc2.WithArgs(map[string]any{"response_requested": "ack"}),
		openc2.WithActuator(map[string]any{"slpf": map[string]any{"hostname": "fw"}}),
		openc2.WithGeneratedID(),
	)
	if err != nil {
		t.Fatalf("new command: %v", err)
	}
	view, err := catalog.AsCommand(cmd)
	if err != nil {
		t.Fatalf("as command: %v", err)
	}
	if _, err := uuid.Parse(view.CommandID()); err != nil {
		t.Fatalf("expected generated id, got %q", view.CommandID())
	}
	if view.Actuator().TypeName() != "slpf" {
		t.Fatalf("expected slpf actuator, got %s", view.Actuator())
	}

	cmd, err = openc2.NewCommand("deny", map[string]any{"uri": "https://example.com"}, openc2.WithCommandID("c-1"))
	if err != nil {
		t.Fatalf("new command from mapping: %v", err)
	}
	want := `{"action":"deny","target":{"uri":"https://example.com"},"command_id":"c-1"}`
	if got := cmd.String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if _, err := openc2.NewCommand("deny", map[string]any{"x-acme:thing": 1}); !errors.Is(err, schema.ErrCustomContent) {
		t.Fatalf("expected custom content error, got %v", err)
	}
	if _, err := openc2.NewCommand("deny", map[string]any{"x-acme:thing": 1}, openc2.WithCustomContent()); err != nil {
		t.Fatalf("expected custom content to pass, got %v", err)
	}
}

func TestNewResponse(t *testing.T) {
	resp, err := openc2.NewResponse(200, "", nil)
	if err != nil {
		t.Fatalf("new response: %v", err)
	}
	if got := resp.String(); got != `{"status":200}` {
		t.Fatalf("unexpected encoding %s", got)
	}
	resp, err = openc2.NewResponse(500, "boom", map[string]any{"detail": "disk full"})
	if err != nil {
		t.Fatalf("new response: %v", err)
	}
	if got := resp.String(); got != `{"status":500,"status_text":"boom","results":{"detail":"disk full"}}` {
		t.Fatalf("unexpected encoding %s", got)
	}
}

func TestPackageParsers(t *testing.T) {
	if _, err := openc2.ParseTarget(`{"mac_addr": "00:1B:44:11:3A:B7"}`); err != nil {
		t.Fatalf("parse target: %v", err)
	}
	if _, err := openc2.ParseActuator(`{"slpf": {"asset_id": "a-1"}}`); err != nil {
		t.Fatalf("parse actuator: %v", err)
	}
	if _, err := openc2.ParseArgs(`{"duration": 1}`); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	obj, err := openc2.ParseTarget(`{"x-acme:gadget": {"id": 1}}`, openc2.AllowCustom(true))
	if err != nil || !obj.IsCustomContent() {
		t.Fatalf("expected custom content pass-through, got %v (%v)", obj, err)
	}
	if openc2.DefaultRegistry() != openc2.Default().Registry() {
		t.Fatalf("expected default registry to back the default engine")
	}
}

func TestExamples_MatchExportedDocument(t *testing.T) {
	engine := testsupport.NewEngine(t)
	doc, err := openapi.Export(testsupport.Context(), engine.Registry())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	validator, err := openapi.NewValidator(doc)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	for _, name := range openc2.ExampleNames() {
		path := "examples/messages/" + name + ".json"
		t.Run(name, func(t *testing.T) {
			obj := testsupport.MustParse(t, engine, path, schema.KindMessage)
			if err := validator.ValidateMessage(obj); err != nil {
				t.Fatalf("expected %s to match the exported document, got %v", name, err)
			}

			result := validation.Check(engine, testsupport.MustReadGoldenString(t, path), schema.KindMessage,
				validation.WithValidator(validator))
			if !result.Valid {
				t.Fatalf("expected valid report, got %+v", result.Issues)
			}
			if result.Type != obj.TypeName() {
				t.Fatalf("expected type %q, got %q", obj.TypeName(), result.Type)
			}
		})
	}
}
