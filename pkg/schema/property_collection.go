package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var defaultKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DictionaryProperty accepts a non-empty string-keyed mapping. Keys are checked
// against an optional allow-list and a key pattern.
type DictionaryProperty struct {
	propertyConfig
}

// Dictionary declares a mapping property.
func Dictionary(opts ...PropertyOption) *DictionaryProperty {
	return &DictionaryProperty{propertyConfig: newConfig(opts)}
}

// AllowedKeys returns the explicit key allow-list, if any.
func (p *DictionaryProperty) AllowedKeys() []string {
	return append([]string(nil), p.allowedKeys...)
}

func (p *DictionaryProperty) Clean(value any, _ CleanContext) (any, error) {
	dict, ok := toMap(value)
	if !ok {
		return nil, invalid(value, "the dictionary property must contain a dictionary")
	}
	if len(dict) == 0 {
		return nil, invalid(value, "the dictionary property must contain a non-empty dictionary")
	}
	pattern := p.keyPattern
	if pattern == nil {
		pattern = defaultKeyPattern
	}
	out := make(map[string]any, len(dict))
	for _, key := range sortedKeys(dict) {
		if len(p.allowedKeys) > 0 && !contains(p.allowedKeys, key) {
			return nil, &Error{Kind: ErrorDictionaryKey, Key: key, Reason: "key is not in the list of allowed keys"}
		}
		if !pattern.MatchString(key) {
			return nil, &Error{
				Kind:   ErrorDictionaryKey,
				Key:    key,
				Reason: fmt.Sprintf("key must match %s", pattern.String()),
			}
		}
		out[key] = deepCopy(dict[key])
	}
	return out, nil
}

type hashAlgorithm struct {
	name    string
	pattern *regexp.Regexp
}

var hashAlgorithms = map[string]hashAlgorithm{
	"md5":    {name: "md5", pattern: regexp.MustCompile(`^[A-F0-9]{32}$`)},
	"sha1":   {name: "sha1", pattern: regexp.MustCompile(`^[A-F0-9]{40}$`)},
	"sha256": {name: "sha256", pattern: regexp.MustCompile(`^[A-F0-9]{64}$`)},
}

// HashesProperty is a dictionary of digests keyed by algorithm. Keys accept
// case and hyphen variants (MD5, SHA-256) and are normalised to md5, sha1 and
// sha256. Digests must be uppercase hex of the algorithm's length.
type HashesProperty struct {
	propertyConfig
}

// Hashes declares a hashes property.
func Hashes(opts ...PropertyOption) *HashesProperty {
	return &HashesProperty{propertyConfig: newConfig(opts)}
}

// Algorithms lists the canonical algorithm names.
func (p *HashesProperty) Algorithms() []string {
	return []string{"md5", "sha1", "sha256"}
}

// Pattern returns the digest pattern for a canonical algorithm name.
func (p *HashesProperty) Pattern(algorithm string) string {
	algo, ok := hashAlgorithms[algorithm]
	if !ok {
		return ""
	}
	return algo.pattern.String()
}

func (p *HashesProperty) Clean(value any, _ CleanContext) (any, error) {
	dict, ok := toMap(value)
	if !ok {
		return nil, invalid(value, "the hashes property must contain a dictionary")
	}
	if len(dict) == 0 {
		return nil, invalid(value, "the hashes property must contain a non-empty dictionary")
	}
	out := make(map[string]any, len(dict))
	for _, key := range sortedKeys(dict) {
		algo, ok := hashAlgorithms[normaliseHashKey(key)]
		if !ok {
			return nil, &Error{Kind: ErrorDictionaryKey, Key: key, Reason: "unsupported hash algorithm"}
		}
		digest, ok := dict[key].(string)
		if !ok || !algo.pattern.MatchString(digest) {
			return nil, invalid(dict[key], "%q is not a valid %s hash", fmt.Sprint(dict[key]), algo.name)
		}
		if _, dup := out[algo.name]; dup {
			return nil, &Error{Kind: ErrorDictionaryKey, Key: key, Reason: "duplicate hash algorithm"}
		}
		out[algo.name] = digest
	}
	return out, nil
}

func normaliseHashKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "", "_", "").Replace(key)
}

// ListProperty holds a homogeneous list. Single values are wrapped, and each
// item is cleaned by the contained property.
type ListProperty struct {
	propertyConfig
	contained Property
}

// List declares a list of contained values.
func List(contained Property, opts ...PropertyOption) *ListProperty {
	return &ListProperty{propertyConfig: newConfig(opts), contained: contained}
}

// Contained returns the item property.
func (p *ListProperty) Contained() Property {
	return p.contained
}

// MaxItems returns the configured length bound, or 0 when unbounded.
func (p *ListProperty) MaxItems() int {
	return p.maxItems
}

// Unique reports whether duplicate items are rejected.
func (p *ListProperty) Unique() bool {
	return p.unique
}

func (p *ListProperty) Clean(value any, ctx CleanContext) (any, error) {
	if p.contained == nil {
		return nil, invalid(value, "list property has no contained type")
	}
	items, ok := toSlice(value)
	if !ok {
		if _, isMap := toMap(value); isMap || isScalar(value) {
			items = []any{value}
		} else {
			return nil, invalid(value, "must be iterable")
		}
	}
	if p.maxItems > 0 && len(items) > p.maxItems {
		return nil, invalid(value, "must have at most %d items", p.maxItems)
	}

	out := make([]any, 0, len(items))
	for i, item := range items {
		cleaned, err := CleanValue(p.contained, item, ctx)
		if err != nil {
			return nil, &ValueError{Value: item, Reason: fmt.Sprintf("item %d: %v", i, err), Err: err}
		}
		if p.unique {
			for _, seen := range out {
				if valuesEqual(seen, cleaned) {
					return nil, invalid(value, "duplicate item %s", describe(cleaned))
				}
			}
		}
		out = append(out, cleaned)
	}
	return out, nil
}

func isScalar(value any) bool {
	switch value.(type) {
	case string, bool, []byte, *Object:
		return true
	}
	return isNumber(value)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
