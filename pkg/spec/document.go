package spec

import (
	"fmt"
	"sort"
	"time"
)

// Document is a parsed specification. It is immutable once returned by a Store.
type Document struct {
	root     *Map
	location string
	loadedAt time.Time
}

// Parse decodes a YAML or JSON specification. The top level must be a mapping.
func Parse(data []byte) (*Document, error) {
	v, err := decodeYAMLBytes(data)
	if err != nil {
		return nil, err
	}
	if v.Kind() != KindMap {
		return nil, fmt.Errorf("document root must be a mapping, got %s", v.Kind())
	}
	return &Document{root: v.Map(), loadedAt: time.Now()}, nil
}

// Root returns the top-level mapping (info, paths, components, ...).
func (d *Document) Root() *Map { return d.root }

// Value returns the whole document as a Value.
func (d *Document) Value() Value { return MapValue(d.root) }

// Section returns the top-level entry called name.
func (d *Document) Section(name string) (Value, bool) { return d.root.Get(name) }

// Paths returns the paths mapping, or an empty mapping when absent or malformed.
func (d *Document) Paths() *Map {
	v, _ := d.root.Get("paths")
	if m := v.Map(); m != nil {
		return m
	}
	return NewMap()
}

// Location is where the document was read from.
func (d *Document) Location() string { return d.location }

// LoadedAt is when the document was parsed.
func (d *Document) LoadedAt() time.Time { return d.loadedAt }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
