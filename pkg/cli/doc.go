// Package cli implements the specdocs command-line interface.
//
// Commands:
//
//	serve       serve JSON-RPC over HTTP
//	mcp         serve JSON-RPC over stdin/stdout
//	endpoints   list operations
//	schema      print the document or one section
//	mock        print a synthesized response body
//	query       evaluate a JSONPath expression
//	validate    validate the document and its mocks
//	version     print version information
package cli
