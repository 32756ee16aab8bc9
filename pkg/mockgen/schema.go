package mockgen

import (
	"github.com/getmockd/specdocs/pkg/spec"
)

// Schema types understood by the generator.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Schema is the typed view of a schema fragment. Only the fields that drive
// mock synthesis are decoded; everything else is ignored.
type Schema struct {
	// Type defaults to "object" when the fragment declares none.
	Type   string
	Format string
	// Enum is nil when absent or empty.
	Enum []spec.Value
	// Example is meaningful only when HasExample is set. A null example
	// counts as no example.
	Example    spec.Value
	HasExample bool
	// Items is nil when the fragment has no items entry.
	Items      *Schema
	Properties []Property

	// opaque marks a fragment that was not a mapping.
	opaque bool
}

// Property is one named entry of an object schema, in declaration order.
type Property struct {
	Name   string
	Schema *Schema
}

// Decode builds a Schema from a raw fragment. A fragment that is not a
// mapping decodes to a schema the generator treats as not representable.
func Decode(v spec.Value) *Schema {
	m := v.Map()
	if m == nil {
		return &Schema{opaque: true}
	}

	s := &Schema{Type: typeOf(m)}

	if f, ok := m.Get("format"); ok {
		s.Format, _ = f.Str()
	}
	if e, ok := m.Get("enum"); ok && len(e.Items()) > 0 {
		s.Enum = e.Items()
	}
	if ex, ok := m.Get("example"); ok && !ex.IsNull() {
		s.Example = ex
		s.HasExample = true
	}
	if items, ok := m.Get("items"); ok {
		s.Items = Decode(items)
	}
	if props, ok := m.Get("properties"); ok {
		props.Map().Range(func(name string, pv spec.Value) bool {
			s.Properties = append(s.Properties, Property{Name: name, Schema: Decode(pv)})
			return true
		})
	}
	return s
}

// typeOf reads the type keyword. A sequence of types (OpenAPI 3.1) resolves
// to its first entry other than "null".
func typeOf(m *spec.Map) string {
	t, ok := m.Get("type")
	if !ok || t.IsNull() {
		return TypeObject
	}
	switch t.Kind() {
	case spec.KindString:
		s, _ := t.Str()
		return s
	case spec.KindSeq:
		for _, item := range t.Items() {
			if s, ok := item.Str(); ok && s != "null" {
				return s
			}
		}
		return TypeObject
	case spec.KindMap:
		return ""
	default:
		return t.Text()
	}
}
