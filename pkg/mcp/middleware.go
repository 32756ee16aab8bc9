package mcp

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/specdocs/pkg/auth"
	"github.com/getmockd/specdocs/pkg/httputil"
	"github.com/getmockd/specdocs/pkg/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// withRequestID assigns each request an ID, reusing a client-supplied one
// when it is short enough to log.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// withAccessLog logs one line per request.
func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		logging.FromContext(r.Context(), s.logger()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// withAuth rejects requests the authenticator does not accept. Client
// failures are 401 with code -32001; a misconfigured server answers 500 with
// code -32600.
func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.auth == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label, err := s.auth.Check(r)
		if err == nil {
			if label != "" {
				logging.FromContext(r.Context(), s.logger()).Debug("authenticated", "token", label)
			}
			next.ServeHTTP(w, r)
			return
		}

		status := http.StatusInternalServerError
		rpcErr := NewJSONRPCErrorWithMessage(ErrCodeInvalidRequest, auth.Message(err), nil)
		if errors.Is(err, auth.ErrUnauthorized) {
			status = http.StatusUnauthorized
			rpcErr = UnauthorizedError(auth.Message(err))
		} else {
			logging.FromContext(r.Context(), s.logger()).Error("authentication misconfigured", "error", err)
		}
		httputil.WriteJSON(w, status, ErrorResponse(nil, rpcErr))
	})
}

// withEnabled answers 404 to everything while the server is disabled.
func (s *Server) withEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.config.Enabled {
			httputil.WriteNotFound(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
