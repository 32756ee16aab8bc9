// Package mockgen synthesizes example values from schema fragments.
//
// Generation is deterministic: the same schema always yields the same value.
// Per node it follows this priority chain:
//  1. Explicit example, returned verbatim (no recursion into children)
//  2. Type-specific generation: enum then format for strings, fixed
//     literals for numbers and booleans, one item for arrays, every
//     property for objects
//  3. Anything else is not representable
package mockgen

import (
	"github.com/getmockd/specdocs/pkg/spec"
)

// DefaultMaxDepth bounds recursion through items and properties.
const DefaultMaxDepth = 32

// Fixed literals produced when a schema carries no example.
const (
	IntegerValue = 123
	NumberValue  = 123.45
	StringValue  = "string"
)

// formatValues maps string formats to their canned example.
var formatValues = map[string]string{
	"email":     "user@example.com",
	"date":      "2024-01-01",
	"date-time": "2024-01-01T00:00:00Z",
	"uri":       "https://example.com",
	"url":       "https://example.com",
	"uuid":      "123e4567-e89b-12d3-a456-426614174000",
}

// Generator produces example values for schemas.
type Generator struct {
	maxDepth int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxDepth overrides DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(g *Generator) {
		if depth > 0 {
			g.maxDepth = depth
		}
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxDepth returns the recursion limit.
func (g *Generator) MaxDepth() int { return g.maxDepth }

// Generate synthesizes a value for schema. The boolean is false when the
// schema is not representable: an unknown type, a fragment that is not a
// mapping, or nesting deeper than the depth limit. Inside arrays and objects
// a child that is not representable becomes null and the parent is still
// produced.
func (g *Generator) Generate(schema *Schema) (spec.Value, bool) {
	return g.generate(schema, 0)
}

// GenerateValue decodes a raw fragment and synthesizes a value for it.
func (g *Generator) GenerateValue(fragment spec.Value) (spec.Value, bool) {
	return g.Generate(Decode(fragment))
}

// Generate synthesizes a value with a default Generator.
func Generate(schema *Schema) (spec.Value, bool) {
	return New().Generate(schema)
}

func (g *Generator) generate(schema *Schema, depth int) (spec.Value, bool) {
	if schema == nil || schema.opaque || depth > g.maxDepth {
		return spec.Null(), false
	}

	if schema.HasExample {
		return schema.Example, true
	}

	switch schema.Type {
	case TypeString:
		return g.generateString(schema), true
	case TypeInteger:
		return spec.Int(IntegerValue), true
	case TypeNumber:
		return spec.Float(NumberValue), true
	case TypeBoolean:
		return spec.Bool(true), true
	case TypeArray:
		return g.generateArray(schema, depth), true
	case TypeObject:
		return g.generateObject(schema, depth), true
	default:
		return spec.Null(), false
	}
}

func (g *Generator) generateString(schema *Schema) spec.Value {
	if len(schema.Enum) > 0 {
		return spec.String(schema.Enum[0].Text())
	}
	if val, ok := formatValues[schema.Format]; ok {
		return spec.String(val)
	}
	return spec.String(StringValue)
}

// generateArray produces a single-element sequence. Missing items default
// to a string schema.
func (g *Generator) generateArray(schema *Schema, depth int) spec.Value {
	items := schema.Items
	if items == nil {
		items = &Schema{Type: TypeString}
	}
	item, _ := g.generate(items, depth+1)
	return spec.Seq(item)
}

// generateObject produces a mapping with one entry per property.
func (g *Generator) generateObject(schema *Schema, depth int) spec.Value {
	obj := spec.NewMap()
	for _, prop := range schema.Properties {
		val, _ := g.generate(prop.Schema, depth+1)
		obj.Set(prop.Name, val)
	}
	return spec.MapValue(obj)
}
