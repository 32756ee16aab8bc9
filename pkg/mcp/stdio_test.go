package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioServer_Run(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		rpc("initialize", ""),
		"",
		`{"broken":`,
		`{"jsonrpc":"2.0","method":"list_endpoints","params":{"tag":"admin"},"id":"two"}`,
		`{"jsonrpc":"2.0","method":"get_endpoint_details","params":{"path":"/missing","method":"get"},"id":3}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	s := NewStdioServer(newDispatcher(t, "testdata/openapi.yaml"))
	s.SetIO(strings.NewReader(input), &out)
	require.NoError(t, s.Run(context.Background()))

	var lines []decodedLine
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var d decodedLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &d), scanner.Text())
		lines = append(lines, d)
	}
	require.Len(t, lines, 4, "blank lines get no response")

	assert.Equal(t, `1`, string(lines[0].ID))
	assert.Nil(t, lines[0].Error)

	assert.Equal(t, `null`, string(lines[1].ID))
	require.NotNil(t, lines[1].Error)
	assert.Equal(t, ErrCodeParseError, lines[1].Error.Code)

	assert.Equal(t, `"two"`, string(lines[2].ID))
	assert.JSONEq(t, `2`, string(mustField(t, lines[2].Result, "total")))

	require.NotNil(t, lines[3].Error)
	assert.Equal(t, ErrCodeNotFound, lines[3].Error.Code)
}

type decodedLine struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *JSONRPCError   `json:"error"`
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[key]
}

func TestStdioServer_StopsOnCancel(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	s := NewStdioServer(newDispatcher(t, "testdata/openapi.yaml"))
	s.SetIO(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
