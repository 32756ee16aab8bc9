package spec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// maxNodeDepth bounds nesting (including alias expansion) while decoding.
	maxNodeDepth = 512
	// maxExpandedNodes bounds the size of the decoded tree once every alias
	// is counted at its full expanded size.
	maxExpandedNodes = 4_000_000
)

var (
	errTooDeep  = errors.New("document nesting exceeds maximum depth")
	errTooLarge = errors.New("document expands to too many nodes through aliases")
)

// decodeYAMLBytes parses data as a single YAML document into a Value.
func decodeYAMLBytes(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, err
	}
	return newDecoder().node(&root, 0)
}

// DecodeNode converts a parsed YAML node into a Value, keeping mapping order.
func DecodeNode(n *yaml.Node) (Value, error) {
	return newDecoder().node(n, 0)
}

// anchored is an alias target decoded once. size and height describe the
// expanded subtree so reuse is charged against the limits.
type anchored struct {
	value  Value
	size   int
	height int
}

// decoder converts one node tree. Alias targets are decoded once and the
// resulting Value is shared, since Values are never mutated after decoding.
type decoder struct {
	aliases map[*yaml.Node]anchored
	nodes   int
	deepest int
}

func newDecoder() *decoder {
	return &decoder{aliases: make(map[*yaml.Node]anchored)}
}

func (d *decoder) visit(size, depth int) error {
	d.nodes += size
	if d.nodes > maxExpandedNodes {
		return errTooLarge
	}
	if depth > maxNodeDepth {
		return errTooDeep
	}
	if depth > d.deepest {
		d.deepest = depth
	}
	return nil
}

func (d *decoder) node(n *yaml.Node, depth int) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	if err := d.visit(1, depth); err != nil {
		return Value{}, err
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return d.node(n.Content[0], depth+1)
	case yaml.AliasNode:
		return d.alias(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.node(c, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Seq(items...), nil
	case yaml.MappingNode:
		m, err := d.mapping(n, depth)
		if err != nil {
			return Value{}, err
		}
		return MapValue(m), nil
	case yaml.ScalarNode:
		return decodeScalar(n)
	default:
		return Null(), nil
	}
}

func (d *decoder) alias(target *yaml.Node, depth int) (Value, error) {
	if target == nil {
		return Null(), nil
	}
	if a, ok := d.aliases[target]; ok {
		if err := d.visit(a.size, depth+a.height); err != nil {
			return Value{}, err
		}
		return a.value, nil
	}

	nodes, deepest := d.nodes, d.deepest
	d.deepest = depth
	v, err := d.node(target, depth)
	if err != nil {
		return Value{}, err
	}
	d.aliases[target] = anchored{value: v, size: d.nodes - nodes, height: d.deepest - depth}
	if deepest > d.deepest {
		d.deepest = deepest
	}
	return v, nil
}

func (d *decoder) mapping(n *yaml.Node, depth int) (*Map, error) {
	m := NewMap()
	var merges []*Map
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		if keyNode.ShortTag() == "!!merge" {
			merged, err := d.merge(valNode, depth+1)
			if err != nil {
				return nil, err
			}
			merges = append(merges, merged...)
			continue
		}

		key, err := mappingKey(keyNode)
		if err != nil {
			return nil, err
		}
		val, err := d.node(valNode, depth+1)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}

	// Explicit keys win over merged ones.
	for _, src := range merges {
		src.Range(func(k string, v Value) bool {
			if !m.Has(k) {
				m.Set(k, v)
			}
			return true
		})
	}
	return m, nil
}

func (d *decoder) merge(n *yaml.Node, depth int) ([]*Map, error) {
	v, err := d.node(n, depth)
	if err != nil {
		return nil, err
	}
	switch v.Kind() {
	case KindMap:
		return []*Map{v.Map()}, nil
	case KindSeq:
		var out []*Map
		for _, item := range v.Items() {
			if item.Kind() != KindMap {
				return nil, fmt.Errorf("line %d: merge sequence must contain mappings", n.Line)
			}
			out = append(out, item.Map())
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping", n.Line)
	}
}

// mappingKey renders a key node as a string. Status codes such as 200 are
// integers in YAML but are addressed by their string form.
func mappingKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", n.Line)
	}
	if n.ShortTag() == "!!null" {
		return "", nil
	}
	return n.Value, nil
}

func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		// Out of int64 range: keep the magnitude as a float.
		f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
		if err != nil {
			return Value{}, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case "!!timestamp":
		// Keep the literal text; dates are strings in JSON.
		return String(n.Value), nil
	default:
		return String(n.Value), nil
	}
}

// FromInterface converts plain Go values (as produced by encoding/json or
// yaml.v3 into interface{}) into a Value. Map keys are sorted since Go maps
// carry no order.
func FromInterface(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t))
		}
		return Int(int64(t))
	case float64:
		return Float(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromInterface(item)
		}
		return Seq(items...)
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(t) {
			m.Set(k, FromInterface(t[k]))
		}
		return MapValue(m)
	case Value:
		return t
	default:
		return String(fmt.Sprint(t))
	}
}
