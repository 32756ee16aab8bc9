package mcp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/specdocs/pkg/query"
)

func TestParseMethod(t *testing.T) {
	t.Parallel()

	for _, m := range Methods {
		got, ok := ParseMethod(string(m))
		assert.True(t, ok, m)
		assert.Equal(t, m, got)
	}

	for _, name := range []string{"", "LIST_TOOLS", "tools/list", "ping", "get_api_schema "} {
		_, ok := ParseMethod(name)
		assert.False(t, ok, name)
	}
}

func TestDecodeCall_EveryMethod(t *testing.T) {
	t.Parallel()

	for _, m := range Methods {
		call, rpcErr := DecodeCall(&JSONRPCRequest{JSONRPC: "2.0", Method: string(m)})
		require.Nil(t, rpcErr, m)
		assert.Equal(t, m, call.Method())
	}
}

func TestDecodeCall_Params(t *testing.T) {
	t.Parallel()

	call, rpcErr := DecodeCall(&JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "mock_call",
		Params:  []byte(`{"path":"/books","method":"get","status_code":201}`),
	})
	require.Nil(t, rpcErr)
	mc, ok := call.(MockCall)
	require.True(t, ok)
	assert.Equal(t, "/books", mc.Path)
	assert.Equal(t, "get", mc.HTTPMethod)
	require.NotNil(t, mc.StatusCode)
	assert.Equal(t, 201, *mc.StatusCode)

	call, rpcErr = DecodeCall(&JSONRPCRequest{JSONRPC: "2.0", Method: "mock_call", Params: []byte(`{"path":"/books","method":"get"}`)})
	require.Nil(t, rpcErr)
	assert.Nil(t, call.(MockCall).StatusCode)

	_, rpcErr = DecodeCall(&JSONRPCRequest{JSONRPC: "2.0", Method: "mock_call", Params: []byte(`{"status_code":"200"}`)})
	require.NotNil(t, rpcErr)
	assert.Equal(t, ErrCodeInvalidParams, rpcErr.Code)

	_, rpcErr = DecodeCall(&JSONRPCRequest{JSONRPC: "2.0", Method: "resources/list"})
	require.NotNil(t, rpcErr)
	assert.Equal(t, ErrCodeMethodNotFound, rpcErr.Code)
}

func TestErrorFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid argument", fmt.Errorf("%w: path is required", query.ErrInvalidArgument), ErrCodeInvalidParams},
		{"not found", fmt.Errorf("GET /x: %w", query.ErrNotFound), ErrCodeNotFound},
		{"parse", fmt.Errorf("spec: %w", query.ErrParse), ErrCodeInternalError},
		{"not representable", query.ErrNotRepresentable, ErrCodeInternalError},
		{"other", errors.New("boom"), ErrCodeInternalError},
		{"rpc error passes through", MethodNotFoundError("x"), ErrCodeMethodNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorFor(tt.err).Code)
		})
	}

	assert.Nil(t, ErrorFor(nil))
}
