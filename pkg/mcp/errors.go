package mcp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getmockd/specdocs/pkg/query"
)

// Standard JSON-RPC 2.0 error codes.
const (
	// ErrCodeParseError indicates invalid JSON was received.
	ErrCodeParseError = -32700

	// ErrCodeInvalidRequest indicates the JSON is not a valid JSON-RPC request.
	// It is also used when authentication is misconfigured server-side.
	ErrCodeInvalidRequest = -32600

	// ErrCodeMethodNotFound indicates the method does not exist.
	ErrCodeMethodNotFound = -32601

	// ErrCodeInvalidParams indicates invalid method parameters.
	ErrCodeInvalidParams = -32602

	// ErrCodeInternalError indicates an internal JSON-RPC error.
	ErrCodeInternalError = -32603
)

// Server-defined error codes (-32001 to -32099).
const (
	// ErrCodeUnauthorized indicates missing or rejected credentials.
	ErrCodeUnauthorized = -32001

	// ErrCodeNotFound indicates the specification or endpoint does not exist.
	ErrCodeNotFound = -32004
)

// Standard error messages.
var errorMessages = map[int]string{
	ErrCodeParseError:     "Parse error",
	ErrCodeInvalidRequest: "Invalid Request",
	ErrCodeMethodNotFound: "Method not found",
	ErrCodeInvalidParams:  "Invalid params",
	ErrCodeInternalError:  "Internal error",
	ErrCodeUnauthorized:   "Unauthorized",
	ErrCodeNotFound:       "Not found",
}

// httpStatus maps error codes to HTTP status codes.
var httpStatus = map[int]int{
	ErrCodeParseError:     http.StatusBadRequest,
	ErrCodeInvalidRequest: http.StatusBadRequest,
	ErrCodeMethodNotFound: http.StatusNotFound,
	ErrCodeInvalidParams:  http.StatusBadRequest,
	ErrCodeInternalError:  http.StatusInternalServerError,
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeNotFound:       http.StatusNotFound,
}

// HTTPStatus returns the HTTP status used for an error code. Unknown codes
// map to 500.
func HTTPStatus(code int) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewJSONRPCError creates a new JSON-RPC error with the given code.
func NewJSONRPCError(code int, data interface{}) *JSONRPCError {
	msg, ok := errorMessages[code]
	if !ok {
		msg = "Unknown error"
	}
	return &JSONRPCError{
		Code:    code,
		Message: msg,
		Data:    data,
	}
}

// NewJSONRPCErrorWithMessage creates a JSON-RPC error with a custom message.
func NewJSONRPCErrorWithMessage(code int, message string, data interface{}) *JSONRPCError {
	return &JSONRPCError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// ParseError creates a parse error.
func ParseError(detail string) *JSONRPCError {
	return NewJSONRPCErrorWithMessage(ErrCodeParseError, "Parse error: "+detail, nil)
}

// InvalidRequestError creates an invalid request error.
func InvalidRequestError(detail string) *JSONRPCError {
	var data interface{}
	if detail != "" {
		data = map[string]string{"detail": detail}
	}
	return NewJSONRPCError(ErrCodeInvalidRequest, data)
}

// MethodNotFoundError creates a method not found error.
func MethodNotFoundError(method string) *JSONRPCError {
	return NewJSONRPCError(ErrCodeMethodNotFound, map[string]string{
		"method": method,
	})
}

// InvalidParamsError creates an invalid params error.
func InvalidParamsError(detail string) *JSONRPCError {
	return NewJSONRPCErrorWithMessage(ErrCodeInvalidParams, "Invalid params: "+detail, nil)
}

// NotFoundError creates a not found error.
func NotFoundError(err error) *JSONRPCError {
	return NewJSONRPCError(ErrCodeNotFound, detailData(err))
}

// InternalError creates an internal error.
func InternalError(err error) *JSONRPCError {
	return NewJSONRPCError(ErrCodeInternalError, detailData(err))
}

// UnauthorizedError creates an authentication failure with a client-facing message.
func UnauthorizedError(message string) *JSONRPCError {
	return NewJSONRPCErrorWithMessage(ErrCodeUnauthorized, message, nil)
}

func detailData(err error) interface{} {
	if err == nil {
		return nil
	}
	return map[string]string{"detail": err.Error()}
}

// ErrorFor classifies a failure from the query layer.
func ErrorFor(err error) *JSONRPCError {
	var rpcErr *JSONRPCError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &rpcErr):
		return rpcErr
	case errors.Is(err, query.ErrInvalidArgument):
		return InvalidParamsError(err.Error())
	case errors.Is(err, query.ErrNotFound):
		return NotFoundError(err)
	default:
		return InternalError(err)
	}
}

// Error implements the error interface for JSONRPCError.
func (e *JSONRPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s (%d): %v", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// ErrorResponse creates a JSON-RPC error response.
func ErrorResponse(id interface{}, err *JSONRPCError) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   err,
	}
}

// SuccessResponse creates a JSON-RPC success response.
func SuccessResponse(id interface{}, result interface{}) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}
