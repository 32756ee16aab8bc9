package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/getmockd/specdocs/pkg/auth"
	"github.com/getmockd/specdocs/pkg/httputil"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/ratelimit"
)

// Server serves JSON-RPC over HTTP.
type Server struct {
	config     *Config
	dispatcher *Dispatcher
	auth       *auth.Authenticator
	limiter    *ratelimit.Limiter
	extra      map[string]http.Handler
	httpServer *http.Server
	listener   net.Listener
	mu         sync.RWMutex
	running    bool
	log        *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuthenticator requires every JSON-RPC request to pass a.
func WithAuthenticator(a *auth.Authenticator) ServerOption {
	return func(s *Server) { s.auth = a }
}

// WithRateLimiter limits JSON-RPC requests per client IP. The caller owns l
// and stops it.
func WithRateLimiter(l *ratelimit.Limiter) ServerOption {
	return func(s *Server) { s.limiter = l }
}

// WithMetrics serves h on GET path, outside auth and rate limiting.
func WithMetrics(path string, h http.Handler) ServerOption {
	return func(s *Server) {
		if s.extra == nil {
			s.extra = make(map[string]http.Handler)
		}
		s.extra["GET "+path] = h
	}
}

// NewServer creates a new HTTP server around d.
func NewServer(cfg *Config, d *Dispatcher, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		config:     cfg,
		dispatcher: d,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server is already running")
	}

	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Error("server error", "error", err)
		}
	}()

	s.running = true
	s.log.Info("JSON-RPC server listening", "address", ln.Addr().String(), "path", s.config.Path)
	return nil
}

// Addr returns the bound address, or "" when the server is not running.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	srv := s.httpServer
	s.running = false
	s.listener = nil
	s.mu.Unlock()

	// In-flight requests read the logger under mu, so shut down unlocked.
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler for the server.
// This is useful for testing without starting the HTTP server.
//
// Order, outermost first: enabled check, request ID, access log; then on the
// JSON-RPC route only: rate limit, auth.
func (s *Server) Handler() http.Handler {
	rpc := ratelimit.Middleware(s.limiter)(s.withAuth(http.HandlerFunc(s.handleRPC)))

	mux := http.NewServeMux()
	mux.Handle("POST "+s.config.Path, rpc)
	for pattern, h := range s.extra {
		mux.Handle(pattern, h)
	}

	return s.withEnabled(withRequestID(s.withAccessLog(mux)))
}

// handleRPC handles one JSON-RPC POST request.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeResponse(w, ErrorResponse(nil, InvalidRequestError(
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))))
			return
		}
		s.writeResponse(w, ErrorResponse(nil, ParseError(err.Error())))
		return
	}

	s.writeResponse(w, s.dispatcher.HandleBytes(r.Context(), data))
}

// writeResponse writes resp with the HTTP status derived from its error code.
func (s *Server) writeResponse(w http.ResponseWriter, resp *JSONRPCResponse) {
	status := http.StatusOK
	if resp.Error != nil {
		status = HTTPStatus(resp.Error.Code)
	}
	httputil.WriteJSON(w, status, resp)
}

// SetLogger sets the operational logger for the server.
func (s *Server) SetLogger(log *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log != nil {
		s.log = log
	} else {
		s.log = logging.Nop()
	}
}

func (s *Server) logger() *slog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log
}
