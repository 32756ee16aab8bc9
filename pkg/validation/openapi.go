package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"

	"github.com/getmockd/specdocs/pkg/endpoint"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/query"
)

// Report is the outcome of validating one document.
type Report struct {
	Location   string      `json:"location"`
	Valid      bool        `json:"valid"`
	OpenAPI    string      `json:"openapi,omitempty"`
	Title      string      `json:"title,omitempty"`
	Version    string      `json:"version,omitempty"`
	Operations int         `json:"operations"`
	Errors     []string    `json:"errors,omitempty"`
	Mocks      []MockCheck `json:"mocks,omitempty"`
}

// MockCheck records whether the mock for one 2xx response conforms.
type MockCheck struct {
	Path    string `json:"path"`
	Method  string `json:"method"`
	Status  int    `json:"status"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MockFailures counts mock checks that ran and failed.
func (r *Report) MockFailures() int {
	n := 0
	for _, m := range r.Mocks {
		if !m.Skipped && m.Error != "" {
			n++
		}
	}
	return n
}

// Validator validates the document behind a query.Service.
type Validator struct {
	svc *query.Service
	log *slog.Logger
}

// New creates a Validator reading through svc.
func New(svc *query.Service) *Validator {
	return &Validator{svc: svc, log: logging.Nop()}
}

// SetLogger sets the operational logger.
func (v *Validator) SetLogger(log *slog.Logger) {
	if log != nil {
		v.log = log
	}
}

// Validate reads the document, validates it and checks every mock. The
// error is non-nil only when the document cannot be read or loaded at all;
// problems with a loaded document are listed in the report.
func (v *Validator) Validate(ctx context.Context) (*Report, error) {
	source := v.svc.Store().Source()
	data, err := source.Read(ctx)
	if err != nil {
		return nil, err
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document %s: %w", source.Location(), err)
	}

	report := &Report{Location: source.Location(), OpenAPI: doc.OpenAPI}
	if doc.Info != nil {
		report.Title = doc.Info.Title
		report.Version = doc.Info.Version
	}

	if err := doc.Validate(ctx); err != nil {
		report.Errors = flatten(err)
	}
	report.Valid = len(report.Errors) == 0

	if doc.Paths != nil {
		for _, path := range sortedKeys(doc.Paths.Map()) {
			item := doc.Paths.Value(path)
			ops := item.Operations()
			report.Operations += len(ops)
			for _, method := range sortedKeys(ops) {
				report.Mocks = append(report.Mocks, v.checkMocks(ctx, doc, path, item, method, ops[method])...)
			}
		}
	}

	v.log.Debug("validated document",
		"location", report.Location,
		"valid", report.Valid,
		"operations", report.Operations,
		"mock_failures", report.MockFailures(),
	)
	return report, nil
}

// checkMocks validates the mock for each declared numeric 2xx response.
func (v *Validator) checkMocks(ctx context.Context, doc *openapi3.T, path string, item *openapi3.PathItem, method string, op *openapi3.Operation) []MockCheck {
	if op.Responses == nil {
		return nil
	}
	route := &routers.Route{Spec: doc, Path: path, PathItem: item, Method: method, Operation: op}

	var checks []MockCheck
	for _, code := range sortedKeys(op.Responses.Map()) {
		status, err := strconv.Atoi(code)
		if err != nil || !strings.HasPrefix(code, "2") {
			continue
		}

		check := MockCheck{Path: path, Method: method, Status: status}
		res, err := v.svc.Mock(ctx, path, method, status)
		switch {
		case errors.Is(err, query.ErrNotRepresentable):
			check.Skipped = true
		case err != nil:
			check.Error = err.Error()
		default:
			if err := conform(ctx, route, status, res); err != nil {
				check.Error = err.Error()
			}
		}
		checks = append(checks, check)
	}
	return checks
}

// conform validates a mock body against the route's declared response.
func conform(ctx context.Context, route *routers.Route, status int, res *query.MockResult) error {
	body, err := json.Marshal(res.MockResponse)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, route.Method, "/", nil)
	if err != nil {
		return err
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request: req,
			Route:   route,
		},
		Status: status,
		Header: http.Header{"Content-Type": []string{endpoint.JSONMediaType}},
		Body:   io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{
			IncludeResponseStatus: true,
			MultiError:            true,
		},
	}
	return openapi3filter.ValidateResponse(ctx, input)
}

// flatten splits a kin-openapi MultiError into messages.
func flatten(err error) []string {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var msgs []string
		for _, e := range multi {
			msgs = append(msgs, flatten(e)...)
		}
		return msgs
	}
	return []string{err.Error()}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
