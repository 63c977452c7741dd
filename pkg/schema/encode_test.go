package schema

import (
	"strings"
	"testing"
)

func TestMarshal_SinglePropertyTargetCollapses(t *testing.T) {
	domain := MustType(KindTarget, "domain_name", []Field{Prop("domain_name", String(Required()))})
	obj := MustNew(domain, map[string]any{"domain_name": "example.com"})

	got := obj.String()
	if got != `{"domain_name":"example.com"}` {
		t.Fatalf("unexpected encoding %s", got)
	}
}

func TestMarshal_MultiPropertyTargetNests(t *testing.T) {
	obj := MustNew(fileType(), map[string]any{
		"hashes": map[string]any{"md5": "1234567890ABCDEF1234567890ABCDEF"},
		"path":   "/tmp",
		"name":   "x",
	})
	want := `{"file":{"name":"x","path":"/tmp","hashes":{"md5":"1234567890ABCDEF1234567890ABCDEF"}}}`
	if got := obj.String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMarshal_NamespacedTarget(t *testing.T) {
	thing := MustType(KindTarget, "x-thing:id", []Field{Prop("id", String())})
	obj := MustNew(thing, map[string]any{"id": "value"})
	if got := obj.String(); got != `{"x-thing:id":"value"}` {
		t.Fatalf("unexpected encoding %s", got)
	}

	widget := MustType(KindTarget, "x-acme:widget", []Field{
		Prop("widget", String()),
		Prop("size", Integer()),
	})
	collapsed := MustNew(widget, map[string]any{"widget": "w1"})
	if got := collapsed.String(); got != `{"x-acme:widget":"w1"}` {
		t.Fatalf("unexpected collapsed encoding %s", got)
	}
	nested := MustNew(widget, map[string]any{"widget": "w1", "size": 3})
	if got := nested.String(); got != `{"x-acme:widget":{"widget":"w1","size":3}}` {
		t.Fatalf("unexpected nested encoding %s", got)
	}
}

func TestMarshal_FlatKindsAndEmbedded(t *testing.T) {
	file := fileType()
	process := MustType(KindTarget, "process", []Field{
		Prop("pid", Integer()),
		Prop("executable", Embedded(file)),
	})
	command := MustType(KindMessage, "command", []Field{
		Prop("action", String(Required())),
		Prop("target", Target(Required())),
	})

	target := MustNew(process, map[string]any{"pid": 4, "executable": map[string]any{"name": "sh"}})
	cmd := MustNew(command, map[string]any{"action": "query", "target": target})

	want := `{"action":"query","target":{"process":{"pid":4,"executable":{"name":"sh"}}}}`
	if got := cmd.String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMarshal_ExtrasSortedAfterSchema(t *testing.T) {
	obj := MustNew(fileType(), map[string]any{"x_b": 2, "name": "n", "x_a": "<1>"}, WithAllowCustom(true))
	want := `{"file":{"name":"n","x_a":"<1>","x_b":2}}`
	if got := obj.String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMarshal_OpaqueContentRoundTrips(t *testing.T) {
	obj := Opaque(KindTarget, "x-unknown:thing", map[string]any{"a": 1})
	if got := obj.String(); got != `{"x-unknown:thing":{"a":1}}` {
		t.Fatalf("unexpected opaque encoding %s", got)
	}
	if !obj.IsCustomContent() {
		t.Fatalf("expected custom content flag")
	}
}

func TestSerialize_Pretty(t *testing.T) {
	obj := MustNew(fileType(), map[string]any{"name": "x"})
	text, err := obj.Serialize(true)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(text, "\n    \"file\": {") {
		t.Fatalf("expected indented output, got %s", text)
	}
}
