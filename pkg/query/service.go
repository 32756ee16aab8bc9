// Package query exposes the read-only operations served over JSON-RPC.
//
// Every operation loads the specification through the shared spec.Store
// first, so the document is read at most once per process (or per reload).
// Results are freshly built on each call.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/getmockd/specdocs/pkg/endpoint"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/mockgen"
	"github.com/getmockd/specdocs/pkg/spec"
)

// DefaultStatusCode is used by Mock callers that do not specify one.
const DefaultStatusCode = 200

// EndpointList is the result of Endpoints. Total is the filtered count.
type EndpointList struct {
	Endpoints []endpoint.Summary `json:"endpoints"`
	Total     int                `json:"total"`
}

// MockResult wraps a synthesized body. StatusCode is the code that was
// requested, even when a different 2xx response was used.
type MockResult struct {
	Path         string     `json:"path"`
	Method       string     `json:"method"`
	StatusCode   int        `json:"status_code"`
	MockResponse spec.Value `json:"mock_response"`
}

// QueryResult holds the matches of a JSONPath expression.
type QueryResult struct {
	Expression string       `json:"expression"`
	Matches    []spec.Value `json:"matches"`
	Total      int          `json:"total"`
}

// Service answers queries against a specification.
type Service struct {
	store *spec.Store
	gen   *mockgen.Generator
	log   *slog.Logger
}

// New creates a Service backed by store.
func New(store *spec.Store, gen *mockgen.Generator) *Service {
	if gen == nil {
		gen = mockgen.New()
	}
	return &Service{
		store: store,
		gen:   gen,
		log:   logging.Nop(),
	}
}

// SetLogger sets the operational logger.
func (s *Service) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// Store returns the backing store.
func (s *Service) Store() *spec.Store { return s.store }

// Schema returns the whole document, or {section: value} when section names
// a top-level key. An unknown section falls back to the whole document.
func (s *Service) Schema(ctx context.Context, section string) (spec.Value, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return spec.Value{}, err
	}
	if section != "" {
		if v, ok := doc.Section(section); ok {
			m := spec.NewMap()
			m.Set(section, v)
			return spec.MapValue(m), nil
		}
	}
	return doc.Value(), nil
}

// Endpoint returns the detail of one operation.
func (s *Service) Endpoint(ctx context.Context, path, method string) (*endpoint.Detail, error) {
	if err := requirePathAndMethod(path, method); err != nil {
		return nil, err
	}
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return endpoint.Lookup(doc, path, method)
}

// Endpoints lists operations matching filter.
func (s *Service) Endpoints(ctx context.Context, filter endpoint.Filter) (*EndpointList, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := endpoint.List(doc, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &EndpointList{Endpoints: summaries, Total: len(summaries)}, nil
}

// Mock synthesizes a response body for an operation. The response declared
// under status is used; failing that, the first declared 2xx response.
func (s *Service) Mock(ctx context.Context, path, method string, status int) (*MockResult, error) {
	detail, err := s.Endpoint(ctx, path, method)
	if err != nil {
		return nil, err
	}

	code, resp, ok := selectResponse(detail.Responses, status)
	if !ok {
		return nil, fmt.Errorf("%s %s: no response for status %d: %w", detail.Method, path, status, ErrNotRepresentable)
	}
	schema, ok := resp.JSONSchema()
	if !ok {
		return nil, fmt.Errorf("%s %s: response %s has no %s schema: %w",
			detail.Method, path, code, endpoint.JSONMediaType, ErrNotRepresentable)
	}
	body, ok := s.gen.GenerateValue(schema)
	if !ok {
		return nil, fmt.Errorf("%s %s: response %s schema: %w", detail.Method, path, code, ErrNotRepresentable)
	}

	if code != strconv.Itoa(status) {
		s.log.Debug("mock fell back to declared response",
			"path", path, "method", detail.Method, "requested", status, "used", code)
	}

	return &MockResult{
		Path:         path,
		Method:       strings.ToUpper(method),
		StatusCode:   status,
		MockResponse: body,
	}, nil
}

// Query evaluates a JSONPath expression against the whole document.
func (s *Service) Query(ctx context.Context, expr string) (*QueryResult, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: expression is required", ErrInvalidArgument)
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath %q: %v", ErrInvalidArgument, expr, err)
	}
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	found := x.Get(doc.Value().Interface())
	matches := make([]spec.Value, 0, len(found))
	for _, f := range found {
		matches = append(matches, spec.FromInterface(f))
	}
	return &QueryResult{Expression: expr, Matches: matches, Total: len(matches)}, nil
}

func requirePathAndMethod(path, method string) error {
	if path == "" || method == "" {
		return fmt.Errorf("%w: both path and method parameters are required", ErrInvalidArgument)
	}
	return nil
}

// selectResponse picks the exact status key, else the first key starting
// with "2" in declaration order.
func selectResponse(responses *endpoint.Responses, status int) (string, endpoint.Response, bool) {
	code := strconv.Itoa(status)
	if resp, ok := responses.Get(code); ok {
		return code, resp, true
	}
	for _, c := range responses.Codes() {
		if strings.HasPrefix(c, "2") {
			resp, _ := responses.Get(c)
			return c, resp, true
		}
	}
	return "", endpoint.Response{}, false
}
