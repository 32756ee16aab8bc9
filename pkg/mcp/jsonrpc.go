package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageBytes bounds a single request on either transport.
const MaxMessageBytes = 10 * 1024 * 1024

// ParseRequest parses a JSON-RPC request from an io.Reader.
func ParseRequest(r io.Reader) (*JSONRPCRequest, *JSONRPCError) {
	data, err := io.ReadAll(io.LimitReader(r, MaxMessageBytes+1))
	if err != nil {
		return nil, ParseError(err.Error())
	}
	if len(data) > MaxMessageBytes {
		return nil, InvalidRequestError(fmt.Sprintf("request exceeds %d bytes", MaxMessageBytes))
	}
	return ParseRequestBytes(data)
}

// ParseRequestBytes parses a JSON-RPC request from bytes. Malformed JSON is a
// parse error; well-formed JSON that is not a request object is an invalid
// request.
func ParseRequestBytes(data []byte) (*JSONRPCRequest, *JSONRPCError) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		if json.Valid(data) {
			return nil, InvalidRequestError("request must be a JSON object")
		}
		return nil, ParseError(err.Error())
	}

	req := &JSONRPCRequest{Params: envelope["params"]}

	if raw, ok := envelope["jsonrpc"]; ok {
		_ = json.Unmarshal(raw, &req.JSONRPC)
	}
	if raw, ok := envelope["method"]; ok {
		if err := json.Unmarshal(raw, &req.Method); err != nil {
			return nil, InvalidRequestError("method must be a string")
		}
	}
	if raw, ok := envelope["id"]; ok {
		id, err := decodeID(raw)
		if err != nil {
			return nil, InvalidRequestError(err.Error())
		}
		req.ID = id
	}

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// decodeID accepts a string, a number (kept verbatim) or null.
func decodeID(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var id interface{}
	if err := dec.Decode(&id); err != nil {
		return nil, err
	}
	switch id.(type) {
	case nil, string, json.Number:
		return id, nil
	default:
		return nil, fmt.Errorf("id must be a string, number or null")
	}
}

// ValidateRequest validates a JSON-RPC request.
func ValidateRequest(req *JSONRPCRequest) *JSONRPCError {
	if req.JSONRPC != "2.0" {
		return InvalidRequestError("jsonrpc must be \"2.0\"")
	}

	if req.Method == "" {
		return InvalidRequestError("method is required")
	}

	return nil
}

// MarshalResponse marshals a JSON-RPC response to bytes.
func MarshalResponse(resp *JSONRPCResponse) ([]byte, error) {
	return json.Marshal(resp)
}

// UnmarshalParams unmarshals request params into a typed struct. Absent
// params, null and an empty array all mean "no arguments".
func UnmarshalParams[T any](params json.RawMessage) (*T, *JSONRPCError) {
	var result T

	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &result, nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err == nil && len(list) == 0 {
			return &result, nil
		}
		return nil, InvalidParamsError("params must be an object")
	}
	if trimmed[0] != '{' {
		return nil, InvalidParamsError("params must be an object")
	}

	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, InvalidParamsError(err.Error())
	}
	return &result, nil
}
