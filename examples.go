package openc2

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed examples/messages/*.json
var embeddedExamples embed.FS

// ExamplesFS exposes the bundled example messages (committed under
// examples/messages) in their canonical pretty-printed form.
func ExamplesFS() fs.FS {
	sub, err := fs.Sub(embeddedExamples, "examples/messages")
	if err != nil {
		return embeddedExamples
	}
	return sub
}

// ExampleNames lists the bundled examples without their .json extension.
func ExampleNames() []string {
	entries, err := fs.ReadDir(ExamplesFS(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Example returns the raw bytes of a bundled example.
func Example(name string) ([]byte, error) {
	data, err := fs.ReadFile(ExamplesFS(), strings.TrimSuffix(name, ".json")+".json")
	if err != nil {
		return nil, fmt.Errorf("openc2: example %q: %w", name, err)
	}
	return data, nil
}
