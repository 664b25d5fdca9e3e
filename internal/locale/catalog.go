// Package locale resolves the text keys carried by the story and the
// engine's events into displayable strings.
package locale

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Catalog maps keys to strings. A key with no entry resolves to itself, so
// a missing translation shows up on screen instead of as a blank line.
type Catalog struct {
	strings map[string]string
}

// New returns a catalog holding a copy of base.
func New(base map[string]string) *Catalog {
	c := &Catalog{strings: make(map[string]string, len(base))}
	maps.Copy(c.strings, base)
	return c
}

// Merge adds overrides, replacing existing entries.
func (c *Catalog) Merge(overrides map[string]string) {
	maps.Copy(c.strings, overrides)
}

// Resolve returns the string for key, or key itself when absent.
func (c *Catalog) Resolve(key string) string {
	if s, ok := c.strings[key]; ok {
		return s
	}
	return key
}

// Has reports whether key has an entry.
func (c *Catalog) Has(key string) bool {
	_, ok := c.strings[key]
	return ok
}

// Missing returns the keys without an entry, sorted and deduplicated.
func (c *Catalog) Missing(keys []string) []string {
	var out []string
	for _, k := range keys {
		if !c.Has(k) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.strings)
}

// LoadFile reads a flat YAML mapping of key to string.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strings file: %w", err)
	}
	var out map[string]string
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse strings file %s: %w", path, err)
	}
	return out, nil
}
