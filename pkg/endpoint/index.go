// Package endpoint derives operation-level views from a loaded specification.
//
// Views are computed on every call and never cached. Every field that may be
// absent in the source gets an explicit default: flags are false, sequences
// are empty, mappings are empty and optional text is null.
package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/specdocs/pkg/spec"
)

// JSONMediaType is the content type mock bodies are synthesized for.
const JSONMediaType = "application/json"

// Detail is the projection of one operation.
type Detail struct {
	Path        string       `json:"path"`
	Method      Method       `json:"method"`
	Summary     *string      `json:"summary"`
	Description *string      `json:"description"`
	OperationID *string      `json:"operationId"`
	Tags        []string     `json:"tags"`
	Parameters  []Parameter  `json:"parameters"`
	RequestBody *RequestBody `json:"requestBody"`
	Responses   *Responses   `json:"responses"`
	Security    spec.Value   `json:"security"`
}

// Parameter is one entry of an operation's parameters sequence.
type Parameter struct {
	Name        *string    `json:"name"`
	In          *string    `json:"in"`
	Description *string    `json:"description"`
	Required    bool       `json:"required"`
	Schema      spec.Value `json:"schema"`
	Example     spec.Value `json:"example"`
}

// RequestBody is the projection of an operation's requestBody.
type RequestBody struct {
	Description *string    `json:"description"`
	Required    bool       `json:"required"`
	Content     spec.Value `json:"content"`
}

// Response is the projection of one entry under responses.
type Response struct {
	Description *string    `json:"description"`
	Content     spec.Value `json:"content"`
	Headers     spec.Value `json:"headers"`
}

// JSONSchema returns content["application/json"].schema.
func (r Response) JSONSchema() (spec.Value, bool) {
	return r.Content.Map().Lookup(JSONMediaType, "schema")
}

// Responses maps status code strings to responses, in declaration order.
type Responses struct {
	codes []string
	byKey map[string]Response
}

func newResponses() *Responses {
	return &Responses{byKey: make(map[string]Response)}
}

// Len returns the number of declared responses.
func (r *Responses) Len() int {
	if r == nil {
		return 0
	}
	return len(r.codes)
}

// Codes returns the status keys in declaration order.
func (r *Responses) Codes() []string {
	if r == nil {
		return nil
	}
	return r.codes
}

// Get returns the response declared under code.
func (r *Responses) Get(code string) (Response, bool) {
	if r == nil {
		return Response{}, false
	}
	resp, ok := r.byKey[code]
	return resp, ok
}

// MarshalJSON encodes the responses as an object keyed in declaration order.
func (r *Responses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, code := range r.Codes() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(code)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.byKey[code])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary is the short form of an operation returned by List.
type Summary struct {
	Path        string   `json:"path"`
	Method      Method   `json:"method"`
	Summary     *string  `json:"summary"`
	OperationID *string  `json:"operationId"`
	Tags        []string `json:"tags"`
}

// Filter narrows List. Zero values mean no filtering.
type Filter struct {
	// Tag keeps operations whose tags contain exactly this string.
	Tag string
	// PathGlob keeps operations whose path matches this doublestar pattern,
	// e.g. "/users/**".
	PathGlob string
}

// Validate checks that PathGlob is a well-formed pattern.
func (f Filter) Validate() error {
	if f.PathGlob != "" && !doublestar.ValidatePattern(f.PathGlob) {
		return fmt.Errorf("invalid path pattern %q: %w", f.PathGlob, doublestar.ErrBadPattern)
	}
	return nil
}

func (f Filter) matches(s Summary) bool {
	if f.Tag != "" && !containsTag(s.Tags, f.Tag) {
		return false
	}
	if f.PathGlob != "" {
		ok, err := doublestar.Match(f.PathGlob, s.Path)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// Lookup projects paths[path][lower(method)]. It returns spec.ErrNotFound
// when the path or the operation is absent. Any key holding a mapping is an
// operation here, including verbs List does not scan such as trace.
func Lookup(doc *spec.Document, path, method string) (*Detail, error) {
	m := Method(strings.ToUpper(method))

	item, ok := doc.Paths().Get(path)
	if !ok || item.Map() == nil {
		return nil, fmt.Errorf("endpoint %s %s: %w", m, path, spec.ErrNotFound)
	}
	opVal, ok := item.Map().Get(m.Key())
	if !ok || opVal.Map() == nil {
		return nil, fmt.Errorf("endpoint %s %s: %w", m, path, spec.ErrNotFound)
	}
	op := opVal.Map()

	return &Detail{
		Path:        path,
		Method:      m,
		Summary:     optText(op, "summary"),
		Description: optText(op, "description"),
		OperationID: optText(op, "operationId"),
		Tags:        tagsOf(op),
		Parameters:  parametersOf(op),
		RequestBody: requestBodyOf(op),
		Responses:   responsesOf(op),
		Security:    orEmptySeq(op, "security"),
	}, nil
}

// List returns one Summary per operation, in declaration order, keeping
// only the operations that pass filter.
func List(doc *spec.Document, filter Filter) ([]Summary, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	out := make([]Summary, 0)
	doc.Paths().Range(func(path string, item spec.Value) bool {
		item.Map().Range(func(key string, opVal spec.Value) bool {
			m, ok := operationKey(key)
			if !ok {
				return true
			}
			op := opVal.Map()
			s := Summary{
				Path:        path,
				Method:      m,
				Summary:     optText(op, "summary"),
				OperationID: optText(op, "operationId"),
				Tags:        tagsOf(op),
			}
			if filter.matches(s) {
				out = append(out, s)
			}
			return true
		})
		return true
	})
	return out, nil
}

// operationKey accepts only the lowercase verb spellings used as keys.
func operationKey(key string) (Method, bool) {
	m, ok := ParseMethod(key)
	if !ok || m.Key() != key {
		return "", false
	}
	return m, true
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func optText(m *spec.Map, key string) *string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	switch v.Kind() {
	case spec.KindNull, spec.KindSeq, spec.KindMap:
		return nil
	}
	s := v.Text()
	return &s
}

func boolOf(m *spec.Map, key string) bool {
	v, _ := m.Get(key)
	b, _ := v.BoolVal()
	return b
}

func tagsOf(op *spec.Map) []string {
	tags := make([]string, 0)
	v, _ := op.Get("tags")
	for _, item := range v.Items() {
		switch item.Kind() {
		case spec.KindNull, spec.KindSeq, spec.KindMap:
			continue
		}
		tags = append(tags, item.Text())
	}
	return tags
}

func orEmptySeq(m *spec.Map, key string) spec.Value {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return spec.Seq()
	}
	return v
}

func orEmptyMap(m *spec.Map, key string) spec.Value {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return spec.MapValue(nil)
	}
	return v
}

func orNull(m *spec.Map, key string) spec.Value {
	v, _ := m.Get(key)
	return v
}

func parametersOf(op *spec.Map) []Parameter {
	params := make([]Parameter, 0)
	v, _ := op.Get("parameters")
	for _, item := range v.Items() {
		p := item.Map()
		if p == nil {
			continue
		}
		params = append(params, Parameter{
			Name:        optText(p, "name"),
			In:          optText(p, "in"),
			Description: optText(p, "description"),
			Required:    boolOf(p, "required"),
			Schema:      orNull(p, "schema"),
			Example:     orNull(p, "example"),
		})
	}
	return params
}

func requestBodyOf(op *spec.Map) *RequestBody {
	v, _ := op.Get("requestBody")
	body := v.Map()
	if body.Len() == 0 {
		return nil
	}
	return &RequestBody{
		Description: optText(body, "description"),
		Required:    boolOf(body, "required"),
		Content:     orEmptyMap(body, "content"),
	}
}

func responsesOf(op *spec.Map) *Responses {
	out := newResponses()
	v, _ := op.Get("responses")
	v.Map().Range(func(code string, rv spec.Value) bool {
		r := rv.Map()
		resp := Response{
			Content: spec.MapValue(nil),
			Headers: spec.MapValue(nil),
		}
		if r != nil {
			resp.Description = optText(r, "description")
			resp.Content = orEmptyMap(r, "content")
			resp.Headers = orEmptyMap(r, "headers")
		}
		out.codes = append(out.codes, code)
		out.byKey[code] = resp
		return true
	})
	return out
}
