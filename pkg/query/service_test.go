package query

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/specdocs/pkg/endpoint"
	"github.com/getmockd/specdocs/pkg/spec"
)

const fixture = "testdata/openapi.yaml"

func newService(t *testing.T) *Service {
	t.Helper()
	return New(spec.NewStore(spec.NewFileSource(fixture)), nil)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestSchema_Sections(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	full, err := svc.Schema(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"openapi", "info", "servers", "tags", "paths", "components"}, full.Map().Keys())

	again, err := svc.Schema(ctx, "")
	require.NoError(t, err)
	assert.True(t, full.Equal(again))

	for _, section := range []string{"info", "paths", "components", "servers", "tags"} {
		got, err := svc.Schema(ctx, section)
		require.NoError(t, err)
		assert.Equal(t, []string{section}, got.Map().Keys())
	}

	unknown, err := svc.Schema(ctx, "webhooks")
	require.NoError(t, err)
	assert.True(t, full.Equal(unknown), "unknown section falls back to the whole document")

	assert.Equal(t, int64(1), svc.Store().Reads())
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	for _, m := range []string{"get", "GET", "Get"} {
		d, err := svc.Endpoint(ctx, "/books", m)
		require.NoError(t, err)
		assert.Equal(t, endpoint.MethodGet, d.Method)
		assert.Equal(t, "listBooks", *d.OperationID)
	}

	_, err := svc.Endpoint(ctx, "", "get")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Endpoint(ctx, "/books", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Endpoint(ctx, "/books", "put")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Endpoint(ctx, "/nowhere", "get")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndpoint_TraceOperation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openapi: 3.0.3
paths:
  /x:
    trace:
      operationId: traceX
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: {type: object, properties: {echo: {type: boolean}}}
`), 0o600))
	svc := New(spec.NewStore(spec.NewFileSource(path)), nil)
	ctx := context.Background()

	d, err := svc.Endpoint(ctx, "/x", "trace")
	require.NoError(t, err)
	assert.Equal(t, endpoint.Method("TRACE"), d.Method)
	assert.Equal(t, "traceX", *d.OperationID)

	res, err := svc.Mock(ctx, "/x", "trace", 200)
	require.NoError(t, err)
	assert.Equal(t, `{"path":"/x","method":"TRACE","status_code":200,"mock_response":{"echo":true}}`, mustJSON(t, res))
}

func TestEndpoints_FilterIsSubset(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	all, err := svc.Endpoints(ctx, endpoint.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 6, all.Total)
	assert.Len(t, all.Endpoints, all.Total)

	for _, tag := range []string{"books", "admin", "authors", "missing"} {
		filtered, err := svc.Endpoints(ctx, endpoint.Filter{Tag: tag})
		require.NoError(t, err)
		assert.Equal(t, len(filtered.Endpoints), filtered.Total)
		for _, e := range filtered.Endpoints {
			assert.Contains(t, e.Tags, tag)
			assert.Contains(t, all.Endpoints, e)
		}
	}

	admin, err := svc.Endpoints(ctx, endpoint.Filter{Tag: "admin"})
	require.NoError(t, err)
	require.Equal(t, 2, admin.Total)
	assert.Equal(t, endpoint.MethodPost, admin.Endpoints[0].Method)
	assert.Equal(t, endpoint.MethodDelete, admin.Endpoints[1].Method)

	globbed, err := svc.Endpoints(ctx, endpoint.Filter{PathGlob: "/books/*"})
	require.NoError(t, err)
	assert.Equal(t, 2, globbed.Total)

	_, err = svc.Endpoints(ctx, endpoint.Filter{PathGlob: "/books/[x"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	empty, err := svc.Endpoints(ctx, endpoint.Filter{Tag: "missing"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoints":[],"total":0}`, mustJSON(t, empty))
}

func TestMock_ExactStatus(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	res, err := svc.Mock(context.Background(), "/books", "get", DefaultStatusCode)
	require.NoError(t, err)

	assert.Equal(t, "/books", res.Path)
	assert.Equal(t, "GET", res.Method)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t,
		`{"path":"/books","method":"GET","status_code":200,"mock_response":{"items":[{"id":"123e4567-e89b-12d3-a456-426614174000","title":"string","price":123.45,"inStock":true}],"total":123}}`,
		mustJSON(t, res))
}

func TestMock_FallsBackToFirstDeclared2xx(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	res, err := svc.Mock(context.Background(), "/books", "post", 999)
	require.NoError(t, err)

	assert.Equal(t, "POST", res.Method)
	assert.Equal(t, 999, res.StatusCode, "the requested code is reported")
	// "201" is declared before "200" so it wins.
	assert.Equal(t, `{"id":123,"createdAt":"2024-01-01T00:00:00Z"}`, mustJSON(t, res.MockResponse))

	exact, err := svc.Mock(context.Background(), "/books", "POST", 404)
	require.NoError(t, err)
	assert.Equal(t, `{"message":"author not found"}`, mustJSON(t, exact.MockResponse))
}

func TestMock_NotRepresentable(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	tests := []struct {
		name, path, method string
		status             int
	}{
		{"no json content", "/books/{id}", "get", 200},
		{"fallback without content", "/books/{id}", "delete", 200},
		{"exact match without content", "/books/{id}", "get", 404},
		{"no 2xx response", "/authors", "get", 200},
		{"unknown schema type", "/files", "get", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Mock(context.Background(), tt.path, tt.method, tt.status)
			assert.ErrorIs(t, err, ErrNotRepresentable)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMock_ArgumentsAndMissingEndpoint(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Mock(ctx, "", "get", 200)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Mock(ctx, "/missing", "get", 200)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMock_Deterministic(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	first, err := svc.Mock(context.Background(), "/books", "get", 200)
	require.NoError(t, err)
	second, err := svc.Mock(context.Background(), "/books", "get", 200)
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, first), mustJSON(t, second))
}

func TestQuery(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	res, err := svc.Query(ctx, "$.info.title")
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Bookshop API", res.Matches[0].Text())

	tags, err := svc.Query(ctx, "$.paths['/books'].post.tags[*]")
	require.NoError(t, err)
	assert.Equal(t, `["books","admin"]`, mustJSON(t, tags.Matches))

	none, err := svc.Query(ctx, "$.nothing.here")
	require.NoError(t, err)
	assert.Equal(t, 0, none.Total)
	assert.NotNil(t, none.Matches)

	_, err = svc.Query(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Query(ctx, "$.paths[")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_MissingSpecThenFixed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.yaml")
	svc := New(spec.NewStore(spec.NewFileSource(path)), nil)
	ctx := context.Background()

	_, err := svc.Schema(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Endpoints(ctx, endpoint.Filter{})
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	list, err := svc.Endpoints(ctx, endpoint.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 6, list.Total)
}

func TestService_ParseError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [oops"), 0o600))

	svc := New(spec.NewStore(spec.NewFileSource(path)), nil)
	_, err := svc.Endpoint(context.Background(), "/a", "get")
	assert.ErrorIs(t, err, ErrParse)
}
