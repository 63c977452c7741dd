package schema

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStringProperty_Coerces(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  string
	}{
		{name: "string", input: "abc", want: "abc"},
		{name: "int", input: 42, want: "42"},
		{name: "float", input: 1.5, want: "1.5"},
		{name: "json number", input: json.Number("7"), want: "7"},
		{name: "bool", input: true, want: "true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := String().Clean(tc.input, CleanContext{})
			if err != nil {
				t.Fatalf("clean: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, got)
			}
		})
	}

	if _, err := String().Clean(map[string]any{"a": 1}, CleanContext{}); err == nil {
		t.Fatalf("expected mapping to be rejected")
	}
}

func TestEnumProperty_RejectsUnknownValues(t *testing.T) {
	prop := Enum([]string{"tcp", "udp"})
	if got, err := prop.Clean("tcp", CleanContext{}); err != nil || got != "tcp" {
		t.Fatalf("expected tcp, got %v (%v)", got, err)
	}
	_, err := prop.Clean("icmp", CleanContext{})
	var valueErr *ValueError
	if !errors.As(err, &valueErr) {
		t.Fatalf("expected ValueError, got %v", err)
	}
	if valueErr.Value != "icmp" {
		t.Fatalf("expected offending value to be recorded, got %v", valueErr.Value)
	}
}

func TestIntegerProperty_Bounds(t *testing.T) {
	prop := Integer(Min(0), Max(65535))
	cases := []struct {
		input any
		want  int64
		ok    bool
	}{
		{input: 80, want: 80, ok: true},
		{input: float64(443), want: 443, ok: true},
		{input: json.Number("22"), want: 22, ok: true},
		{input: "8080", want: 8080, ok: true},
		{input: 65535, want: 65535, ok: true},
		{input: -1},
		{input: 65536},
		{input: 1.5},
		{input: true},
		{input: "http"},
	}
	for _, tc := range cases {
		got, err := prop.Clean(tc.input, CleanContext{})
		if tc.ok {
			if err != nil {
				t.Fatalf("clean %v: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %v", tc.want, got)
			}
			continue
		}
		if err == nil {
			t.Fatalf("expected %v to be rejected, got %v", tc.input, got)
		}
	}
}

func TestFloatProperty_Bounds(t *testing.T) {
	prop := Float(Min(0), Max(1))
	if got, err := prop.Clean(0.5, CleanContext{}); err != nil || got != 0.5 {
		t.Fatalf("expected 0.5, got %v (%v)", got, err)
	}
	if got, err := prop.Clean(1, CleanContext{}); err != nil || got != float64(1) {
		t.Fatalf("expected integer input to convert, got %v (%v)", got, err)
	}
	if _, err := prop.Clean(1.01, CleanContext{}); err == nil {
		t.Fatalf("expected out of range value to fail")
	}
	if _, err := prop.Clean("nope", CleanContext{}); err == nil {
		t.Fatalf("expected non-numeric value to fail")
	}
}

func TestBinaryProperty_ValidatesBase64(t *testing.T) {
	prop := Binary()
	if _, err := prop.Clean("aGVsbG8=", CleanContext{}); err != nil {
		t.Fatalf("expected valid base64, got %v", err)
	}
	if _, err := prop.Clean("not base64!", CleanContext{}); err == nil {
		t.Fatalf("expected invalid base64 to fail")
	}
	got, err := prop.Clean([]byte("hello"), CleanContext{})
	if err != nil || got != "aGVsbG8=" {
		t.Fatalf("expected bytes to be encoded, got %v (%v)", got, err)
	}
}

func TestDateTimeProperty_Range(t *testing.T) {
	prop := DateTime()
	ts := time.Date(2019, 1, 2, 3, 4, 5, 0, time.FixedZone("EST", -5*3600))
	got, err := prop.Clean(ts, CleanContext{})
	if err != nil {
		t.Fatalf("clean time: %v", err)
	}
	if got != ts.UTC().UnixMilli() {
		t.Fatalf("expected %d, got %v", ts.UTC().UnixMilli(), got)
	}

	if got, err := prop.Clean(int64(math.MaxInt64-1), CleanContext{}); err != nil || got != int64(math.MaxInt64-1) {
		t.Fatalf("expected upper bound to be accepted, got %v (%v)", got, err)
	}
	for _, input := range []any{int64(math.MaxInt64), -1, "yesterday", true} {
		if _, err := prop.Clean(input, CleanContext{}); err == nil {
			t.Fatalf("expected %v to be rejected", input)
		}
	}
}

func TestDictionaryProperty_Keys(t *testing.T) {
	prop := Dictionary()
	got, err := prop.Clean(map[string]any{"a-b_c": 1}, CleanContext{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a-b_c": 1}, got); diff != "" {
		t.Fatalf("unexpected dictionary (-want +got):\n%s", diff)
	}

	_, err = prop.Clean(map[string]any{"bad key": 1}, CleanContext{})
	if !errors.Is(err, ErrDictionaryKey) {
		t.Fatalf("expected dictionary key error, got %v", err)
	}
	var keyErr *Error
	if !errors.As(err, &keyErr) || keyErr.Key != "bad key" {
		t.Fatalf("expected offending key in error, got %+v", keyErr)
	}

	restricted := Dictionary(AllowedKeys("a"))
	if _, err := restricted.Clean(map[string]any{"b": 1}, CleanContext{}); !errors.Is(err, ErrDictionaryKey) {
		t.Fatalf("expected allow-list violation, got %v", err)
	}
	if _, err := prop.Clean(map[string]any{}, CleanContext{}); err == nil {
		t.Fatalf("expected empty dictionary to fail")
	}
	if _, err := prop.Clean("text", CleanContext{}); err == nil {
		t.Fatalf("expected non-mapping to fail")
	}
}

func TestHashesProperty(t *testing.T) {
	prop := Hashes()
	const md5 = "1234567890ABCDEF1234567890ABCDEF"

	got, err := prop.Clean(map[string]any{"MD5": md5}, CleanContext{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"md5": md5}, got); diff != "" {
		t.Fatalf("unexpected hashes (-want +got):\n%s", diff)
	}

	got, err = prop.Clean(map[string]any{"SHA-256": "A3F1" + strings.Repeat("0", 60)}, CleanContext{})
	if err != nil {
		t.Fatalf("clean sha256: %v", err)
	}
	if _, ok := got.(map[string]any)["sha256"]; !ok {
		t.Fatalf("expected sha256 key, got %v", got)
	}

	if _, err := prop.Clean(map[string]any{"md5": "short"}, CleanContext{}); err == nil {
		t.Fatalf("expected short digest to fail")
	}
	if _, err := prop.Clean(map[string]any{}, CleanContext{}); err == nil {
		t.Fatalf("expected empty hashes to fail")
	}
	if _, err := prop.Clean(map[string]any{"crc32": "ABCD"}, CleanContext{}); !errors.Is(err, ErrDictionaryKey) {
		t.Fatalf("expected unknown algorithm to fail with key error, got %v", err)
	}
}

func TestListProperty_WrapsAndBounds(t *testing.T) {
	prop := List(String())
	got, err := prop.Clean("single", CleanContext{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if diff := cmp.Diff([]any{"single"}, got); diff != "" {
		t.Fatalf("unexpected list (-want +got):\n%s", diff)
	}

	got, err = List(Integer()).Clean([]string{"1", "2"}, CleanContext{})
	if err != nil {
		t.Fatalf("clean ints: %v", err)
	}
	if diff := cmp.Diff([]any{int64(1), int64(2)}, got); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}

	bounded := List(String(), MaxItems(2), Unique())
	if _, err := bounded.Clean([]any{"a", "b", "c"}, CleanContext{}); err == nil {
		t.Fatalf("expected too many items to fail")
	}
	if _, err := bounded.Clean([]any{"a", "a"}, CleanContext{}); err == nil {
		t.Fatalf("expected duplicates to fail")
	}
	if _, err := List(Integer()).Clean([]any{1, "x"}, CleanContext{}); err == nil {
		t.Fatalf("expected bad item to fail")
	}
}

func TestListProperty_EmbeddedItems(t *testing.T) {
	inner := MustType(KindProperty, "x-test:inner", []Field{Prop("value", String())})
	prop := List(Embedded(inner))

	got, err := prop.Clean([]any{map[string]any{"value": "my_value"}}, CleanContext{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	items := got.([]any)
	obj, ok := items[0].(*Object)
	if !ok || obj.GetString("value") != "my_value" {
		t.Fatalf("expected embedded object, got %#v", items[0])
	}
}

func TestFixedProperty(t *testing.T) {
	prop := String(Fixed("openc2"))
	if _, err := CleanValue(prop, "openc2", CleanContext{}); err != nil {
		t.Fatalf("expected fixed value to pass: %v", err)
	}
	if _, err := CleanValue(prop, "other", CleanContext{}); err == nil {
		t.Fatalf("expected mismatch to fail")
	}
	if got := prop.Descriptor().Default(); got != "openc2" {
		t.Fatalf("expected fixed value as default, got %v", got)
	}
}
