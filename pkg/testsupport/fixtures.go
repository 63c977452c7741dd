package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-openc2"
	"github.com/goliatone/go-openc2/pkg/dispatch"
	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// NewRegistry returns openc2.NewRegistry, failing the test on error.
func NewRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg, err := openc2.NewRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

// NewEngine returns an engine over NewRegistry.
func NewEngine(t *testing.T, opts ...dispatch.Option) *dispatch.Engine {
	t.Helper()
	return dispatch.New(NewRegistry(t), opts...)
}

// LoadMessage reads a JSON fixture. Testing helpers fail the test on error to
// keep table tests concise.
func LoadMessage(t *testing.T, path string) []byte {
	t.Helper()

	data, err := LoadMessageFromPath(path)
	if err != nil {
		t.Fatalf("load message: %v", err)
	}
	return data
}

// LoadMessageFromPath returns fixture bytes without requiring testing.T.
func LoadMessageFromPath(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("testsupport: message path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read message: %w", err)
	}
	return data, nil
}

// MustParse loads a fixture and parses it as kind.
func MustParse(t *testing.T, engine *dispatch.Engine, path string, kind schema.Kind) *schema.Object {
	t.Helper()

	obj, err := engine.ParseKind(LoadMessage(t, path), kind)
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return obj
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
