package custom_test

import (
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-openc2/pkg/custom"
	"github.com/goliatone/go-openc2/pkg/dispatch"
	"github.com/goliatone/go-openc2/pkg/schema"
)

func TestLoadFS_RegistersDefinitions(t *testing.T) {
	reg := newRegistry(t)
	types, err := custom.LoadFS(os.DirFS("testdata"), reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var names []string
	for _, typ := range types {
		names = append(names, typ.Name())
	}
	if diff := cmp.Diff([]string{"acme:sensor", "acme:device", "x-acme"}, names); diff != "" {
		t.Fatalf("unexpected types (-want +got):\n%s", diff)
	}

	device, ok := reg.LookupExtension(schema.KindTarget, "acme:device")
	if !ok {
		t.Fatalf("expected acme:device to be registered")
	}
	if diff := cmp.Diff([]string{"device", "sensors", "mode", "x_vendor"}, device.FieldNames()); diff != "" {
		t.Fatalf("unexpected field order (-want +got):\n%s", diff)
	}

	engine := dispatch.New(reg)
	target, err := engine.ParseTarget(`{"acme:device": {"sensors": [{"serial": "s-1", "zone": 3}]}}`)
	if err != nil {
		t.Fatalf("parse target: %v", err)
	}
	if target.GetString("mode") != "passive" {
		t.Fatalf("expected default mode, got %q", target.GetString("mode"))
	}
	want := `{"acme:device":{"sensors":[{"serial":"s-1","zone":3}],"mode":"passive"}}`
	if got := target.String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if _, err := engine.ParseTarget(`{"acme:device": {"mode": "active"}}`); !errors.Is(err, schema.ErrAtLeastOne) {
		t.Fatalf("expected at least one error, got %v", err)
	}
	if _, err := engine.ParseTarget(`{"acme:device": {"sensors": [{"serial": "s-1", "zone": 100}]}}`); !errors.Is(err, schema.ErrInvalidValue) {
		t.Fatalf("expected out of range zone to fail, got %v", err)
	}

	if _, err := engine.ParseArgs(`{"x-acme": {"ticket": "T-1"}}`); !errors.Is(err, schema.ErrDependentProperties) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	args, err := engine.ParseArgs(`{"x-acme": {"quarantine": true, "reason": "malware"}}`)
	if err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if quarantine, _ := args.GetObject("x-acme").GetBool("quarantine"); !quarantine {
		t.Fatalf("expected quarantine flag, got %s", args)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{name: "unknown field type", data: "types:\n  - name: acme:a\n    kind: target\n    fields:\n      - name: a\n        type: blob\n", want: schema.ErrDefinition},
		{name: "unknown ref", data: "types:\n  - name: acme:a\n    kind: target\n    fields:\n      - name: a\n        type: embedded\n        ref: acme:missing\n", want: schema.ErrDefinition},
		{name: "unknown kind", data: "types:\n  - name: acme:a\n    kind: widget\n    fields:\n      - name: a\n", want: schema.ErrDefinition},
		{name: "reserved field", data: "types:\n  - name: acme:a\n    kind: target\n    fields:\n      - name: type\n", want: schema.ErrPropertyPresence},
		{name: "bad name", data: "types:\n  - name: a\n    kind: target\n    fields:\n      - name: a\n", want: schema.ErrDefinition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{"defs.yaml": {Data: []byte(tc.data)}}
			_, err := custom.LoadFS(fsys, newRegistry(t))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	fsys := fstest.MapFS{"bad.json": {Data: []byte("types: [")}}
	if _, err := custom.LoadFS(fsys, newRegistry(t)); err == nil {
		t.Fatalf("expected malformed document to fail")
	}
	fsys = fstest.MapFS{"notes.txt": {Data: []byte("ignored")}}
	if types, err := custom.LoadFS(fsys, newRegistry(t)); err != nil || len(types) != 0 {
		t.Fatalf("expected non-definition files to be skipped, got %v (%v)", types, err)
	}
}
