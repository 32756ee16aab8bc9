package mcp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/specdocs/pkg/auth"
	"github.com/getmockd/specdocs/pkg/metrics"
	"github.com/getmockd/specdocs/pkg/query"
	"github.com/getmockd/specdocs/pkg/ratelimit"
	"github.com/getmockd/specdocs/pkg/spec"
)

var testInfo = ServerInfo{
	Name:        "Test MCP Documentation Server",
	Version:     "1.0.0",
	Description: "Test MCP Documentation Server",
}

func newDispatcher(t *testing.T, path string) *Dispatcher {
	t.Helper()
	svc := query.New(spec.NewStore(spec.NewFileSource(path)), nil)
	return NewDispatcher(svc, testInfo)
}

func newHandler(t *testing.T, cfg *Config, opts ...ServerOption) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewServer(cfg, newDispatcher(t, "testdata/openapi.yaml"), opts...).Handler()
}

func post(h http.Handler, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func rpc(method, params string) string {
	if params == "" {
		return `{"jsonrpc":"2.0","method":"` + method + `","id":1}`
	}
	return `{"jsonrpc":"2.0","method":"` + method + `","params":` + params + `,"id":1}`
}

// decoded is a response with the result left raw.
type decoded struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *JSONRPCError   `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) decoded {
	t.Helper()
	var d decoded
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d), rec.Body.String())
	return d
}

func TestServer_Initialize(t *testing.T) {
	t.Parallel()

	rec := post(newHandler(t, nil), rpc("initialize", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	d := decode(t, rec)
	assert.Equal(t, "2.0", d.JSONRPC)
	assert.JSONEq(t, `1`, string(d.ID))
	assert.Nil(t, d.Error)
	assert.JSONEq(t, `{
		"protocolVersion": "2024-11-05",
		"capabilities": {"tools": {"listChanged": false}},
		"serverInfo": {
			"name": "Test MCP Documentation Server",
			"version": "1.0.0",
			"description": "Test MCP Documentation Server"
		}
	}`, string(d.Result))
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	d := decode(t, post(newHandler(t, nil), rpc("list_tools", "")))
	var res ToolsListResult
	require.NoError(t, json.Unmarshal(d.Result, &res))

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.InputSchema["type"])
	}
	assert.Equal(t, []string{"get_api_schema", "get_endpoint_details", "list_endpoints", "mock_call", "query_api_schema"}, names)
}

func TestServer_Methods(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		result string
		code   int
	}{
		{
			name:   "schema section",
			body:   rpc("get_api_schema", `{"section":"info"}`),
			status: 200,
			result: `{"info":{"title":"Bookshop API","version":"2.1.0"}}`,
		},
		{
			name:   "endpoint list by tag",
			body:   rpc("list_endpoints", `{"tag":"authors"}`),
			status: 200,
			result: `{"endpoints":[{"path":"/authors","method":"GET","summary":"List authors","operationId":null,"tags":["authors"]}],"total":1}`,
		},
		{
			name:   "mock",
			body:   rpc("mock_call", `{"path":"/books","method":"get"}`),
			status: 200,
			result: `{"path":"/books","method":"GET","status_code":200,"mock_response":{"items":[{"id":"123e4567-e89b-12d3-a456-426614174000","title":"string","price":123.45,"inStock":true}],"total":123}}`,
		},
		{
			name:   "mock with fallback",
			body:   rpc("mock_call", `{"path":"/books","method":"POST","status_code":999}`),
			status: 200,
			result: `{"path":"/books","method":"POST","status_code":999,"mock_response":{"id":123,"createdAt":"2024-01-01T00:00:00Z"}}`,
		},
		{
			name:   "query",
			body:   rpc("query_api_schema", `{"expression":"$.info.title"}`),
			status: 200,
			result: `{"expression":"$.info.title","matches":["Bookshop API"],"total":1}`,
		},
		{"unknown method", rpc("tools/list", ""), 404, "", ErrCodeMethodNotFound},
		{"missing endpoint args", rpc("get_endpoint_details", `{"path":"/books"}`), 400, "", ErrCodeInvalidParams},
		{"bad status code type", rpc("mock_call", `{"path":"/books","method":"get","status_code":"x"}`), 400, "", ErrCodeInvalidParams},
		{"positional params", rpc("get_api_schema", `["info"]`), 400, "", ErrCodeInvalidParams},
		{"unknown endpoint", rpc("get_endpoint_details", `{"path":"/nope","method":"get"}`), 404, "", ErrCodeNotFound},
		{"non-verb method", rpc("get_endpoint_details", `{"path":"/books","method":"parameters"}`), 404, "", ErrCodeNotFound},
		{"not representable", rpc("mock_call", `{"path":"/files","method":"get"}`), 500, "", ErrCodeInternalError},
		{"bad glob", rpc("list_endpoints", `{"path":"/books/[x"}`), 400, "", ErrCodeInvalidParams},
		{"bad jsonpath", rpc("query_api_schema", `{"expression":"$.paths["}`), 400, "", ErrCodeInvalidParams},
		{"malformed json", `{"jsonrpc":`, 400, "", ErrCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"initialize","id":1}`, 400, "", ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			d := decode(t, rec)
			if tt.code != 0 {
				require.NotNil(t, d.Error)
				assert.Equal(t, tt.code, d.Error.Code)
				assert.Empty(t, d.Result)
				return
			}
			require.Nil(t, d.Error)
			assert.JSONEq(t, tt.result, string(d.Result))
		})
	}
}

func TestServer_EchoesID(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := post(h, `{"jsonrpc":"2.0","method":"initialize","id":"req-1"}`)
	assert.Equal(t, `"req-1"`, string(decode(t, rec).ID))

	rec = post(h, `{"jsonrpc":"2.0","method":"initialize"}`)
	assert.Equal(t, `null`, string(decode(t, rec).ID))

	rec = post(h, `{"jsonrpc":"2.0","method":"nope","id":42}`)
	assert.Equal(t, `42`, string(decode(t, rec).ID))

	rec = post(h, `not json`)
	assert.Equal(t, `null`, string(decode(t, rec).ID))
}

func TestServer_MissingSpecIsNotFound(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	h := NewServer(cfg, newDispatcher(t, t.TempDir()+"/missing.yaml")).Handler()

	rec := post(h, rpc("get_api_schema", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, decode(t, rec).Error)
	assert.Equal(t, ErrCodeNotFound, decode(t, rec).Error.Code)
	assert.Equal(t, "Not found", decode(t, rec).Error.Message)
}

func TestServer_Auth(t *testing.T) {
	t.Parallel()

	tokens := map[string]string{"frontend-dev": "test-frontend-token", "qa": "test-qa-token"}

	tests := []struct {
		name    string
		cfg     auth.Config
		header  string
		status  int
		code    int
		message string
	}{
		{"valid token", auth.Config{Driver: "token", Tokens: tokens}, "Bearer test-qa-token", 200, 0, ""},
		{"missing header", auth.Config{Driver: "token", Tokens: tokens}, "", 401, ErrCodeUnauthorized, auth.MsgMissingHeader},
		{"wrong scheme", auth.Config{Driver: "token", Tokens: tokens}, "Token test-qa-token", 401, ErrCodeUnauthorized, auth.MsgMissingHeader},
		{"unknown token", auth.Config{Driver: "token", Tokens: tokens}, "Bearer nope", 401, ErrCodeUnauthorized, auth.MsgInvalidToken},
		{"no tokens configured", auth.Config{Driver: "token"}, "Bearer anything", 500, ErrCodeInvalidRequest, auth.MsgNoTokens},
		{"invalid driver", auth.Config{Driver: "ldap", Tokens: tokens}, "Bearer test-qa-token", 500, ErrCodeInvalidRequest, auth.MsgInvalidDriver},
		{"none driver", auth.Config{Driver: "none"}, "", 200, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(t, nil, WithAuthenticator(auth.New(tt.cfg)))
			var headers []string
			if tt.header != "" {
				headers = []string{"Authorization", tt.header}
			}
			rec := post(h, rpc("initialize", ""), headers...)
			assert.Equal(t, tt.status, rec.Code)

			d := decode(t, rec)
			if tt.code == 0 {
				assert.Nil(t, d.Error)
				return
			}
			require.NotNil(t, d.Error)
			assert.Equal(t, tt.code, d.Error.Code)
			assert.Equal(t, tt.message, d.Error.Message)
			assert.Equal(t, `null`, string(d.ID))
		})
	}
}

func TestServer_Disabled(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Enabled = false
	h := newHandler(t, cfg, WithAuthenticator(auth.New(auth.Config{Driver: "token"})))

	for _, target := range []string{"/mcp", "/other"} {
		for _, method := range []string{http.MethodPost, http.MethodGet} {
			req := httptest.NewRequest(method, target, strings.NewReader(rpc("initialize", "")))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())
		}
	}
}

func TestServer_Routing(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Path = "/rpc"
	h := newHandler(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(rpc("initialize", "")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/rpc", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(rpc("initialize", "")))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RequestID(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := post(h, rpc("initialize", ""))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = post(h, rpc("initialize", ""), RequestIDHeader, "trace-123")
	assert.Equal(t, "trace-123", rec.Header().Get(RequestIDHeader))
}

func TestServer_RateLimit(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(ratelimit.Config{MaxAttempts: 2, Decay: time.Minute})
	t.Cleanup(l.Stop)
	h := newHandler(t, nil, WithRateLimiter(l))

	for i := 0; i < 2; i++ {
		rec := post(h, rpc("initialize", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := post(h, rpc("initialize", ""))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Too Many Attempts."}`, rec.Body.String())
}

func TestServer_BodyLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 16
	h := newHandler(t, cfg)

	rec := post(h, rpc("initialize", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	d := decode(t, rec)
	require.NotNil(t, d.Error)
	assert.Equal(t, ErrCodeInvalidRequest, d.Error.Code)
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := NewServer(cfg, newDispatcher(t, "testdata/openapi.yaml"))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	assert.Error(t, srv.Start(), "second start fails")

	resp, err := http.Post("http://"+srv.Addr()+"/mcp", "application/json", bytes.NewBufferString(rpc("list_endpoints", "")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Result query.EndpointList `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 6, body.Result.Total)

	require.NoError(t, srv.Stop())
	assert.Empty(t, srv.Addr())
	assert.NoError(t, srv.Stop(), "stop is idempotent")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty path", func(c *Config) { c.Path = "" }},
		{"relative path", func(c *Config) { c.Path = "mcp" }},
		{"empty address", func(c *Config) { c.Address = "" }},
		{"negative timeout", func(c *Config) { c.ReadTimeout = -time.Second }},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

type call struct {
	method string
	code   int
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []call
}

func (o *recordingObserver) ObserveCall(method string, code int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, call{method, code})
}

func TestServer_ObserverAndMetricsRoute(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	d := newDispatcher(t, "testdata/openapi.yaml")
	d.SetObserver(obs)

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	h := NewServer(DefaultConfig(), d,
		WithAuthenticator(auth.New(auth.Config{Tokens: map[string]string{"qa": "secret"}})),
		WithMetrics("/metrics", metricsHandler),
	).Handler()

	post(h, rpc("initialize", ""), "Authorization", "Bearer secret")
	post(h, rpc("get_endpoint_details", `{"path":"/nowhere","method":"get"}`), "Authorization", "Bearer secret")
	post(h, rpc("tools/call", ""), "Authorization", "Bearer secret")
	post(h, `{oops`, "Authorization", "Bearer secret")

	assert.Equal(t, []call{
		{"initialize", 0},
		{"get_endpoint_details", ErrCodeNotFound},
		{"unknown", ErrCodeMethodNotFound},
		{"unknown", ErrCodeParseError},
	}, obs.calls)

	// The metrics route bypasses auth and accepts GET only.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_PrometheusMetrics(t *testing.T) {
	t.Parallel()

	store := spec.NewStore(spec.NewFileSource("testdata/openapi.yaml"))
	d := NewDispatcher(query.New(store, nil), testInfo)
	m := metrics.NewRPC(store.Loaded)
	d.SetObserver(m)
	h := NewServer(DefaultConfig(), d,
		WithAuthenticator(auth.New(auth.Config{Tokens: map[string]string{"qa": "secret"}})),
		WithMetrics("/metrics", m.Handler()),
	).Handler()

	scrape := func() string {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	assert.Contains(t, scrape(), "specdocs_spec_loaded 0\n")

	// The first tool call loads the document lazily.
	post(h, rpc("list_endpoints", ""), "Authorization", "Bearer secret")
	out := scrape()
	assert.Contains(t, out, "specdocs_spec_loaded 1\n")
	assert.Contains(t, out, `specdocs_rpc_requests_total{code="0",method="list_endpoints"} 1`)
}
