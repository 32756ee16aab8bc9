// Package mcp serves the API description over JSON-RPC 2.0.
//
// # Methods
//
// The method set is closed (see Method and DecodeCall):
//   - initialize, list_tools
//   - get_api_schema, get_endpoint_details, list_endpoints, mock_call,
//     query_api_schema
//
// # Errors
//
// Query failures map onto JSON-RPC codes, and over HTTP onto a status:
//
//	-32700 parse error        400
//	-32600 invalid request    400 (500 when auth is misconfigured)
//	-32601 method not found   404
//	-32602 invalid params     400
//	-32004 not found          404
//	-32001 unauthorized       401
//	-32603 internal error     500
//
// # Transports
//
// HTTP: POST on the configured route (default /mcp), behind request IDs,
// access logging, per-IP rate limiting and bearer-token auth.
// Stdio: newline-delimited JSON-RPC over stdin/stdout, logs on stderr.
package mcp
