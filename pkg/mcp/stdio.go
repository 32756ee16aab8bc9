package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/getmockd/specdocs/pkg/logging"
)

// StdioServer serves JSON-RPC over stdin/stdout, one JSON message per line.
// It runs as a local child process, so there is no auth or rate limiting.
//
// Usage in an MCP client config:
//
//	{
//	  "mcpServers": {
//	    "specdocs": {
//	      "command": "specdocs",
//	      "args": ["mcp", "--openapi", "openapi.yaml"]
//	    }
//	  }
//	}
type StdioServer struct {
	dispatcher *Dispatcher
	reader     io.Reader
	writer     io.Writer
	log        *slog.Logger
	mu         sync.Mutex
}

// NewStdioServer creates a new stdio server around d.
func NewStdioServer(d *Dispatcher) *StdioServer {
	return &StdioServer{
		dispatcher: d,
		reader:     os.Stdin,
		writer:     os.Stdout,
		log:        logging.Nop(),
	}
}

// SetLogger sets the logger. Logs must go to stderr, never to the protocol
// stream on stdout.
func (s *StdioServer) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// SetIO overrides the default stdin/stdout for testing.
func (s *StdioServer) SetIO(reader io.Reader, writer io.Writer) {
	s.reader = reader
	s.writer = writer
}

// Run serves until EOF on the reader, a read error, or ctx is done.
func (s *StdioServer) Run(ctx context.Context) error {
	info := s.dispatcher.Info()
	s.log.Info("stdio server starting",
		"name", info.Name,
		"version", info.Version,
		"protocol", ProtocolVersion,
	)

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stdio server stopped", "reason", ctx.Err())
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("stdin read error: %w", err)
			}
			s.log.Info("stdio server stopped (EOF)")
			return nil
		case line := <-lines:
			if len(line) == 0 {
				continue
			}
			s.log.Debug("received", "message", string(line))
			s.writeResponse(s.dispatcher.HandleBytes(ctx, line))
		}
	}
}

// writeResponse writes a JSON-RPC response as a single line.
func (s *StdioServer) writeResponse(resp *JSONRPCResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		return
	}

	s.log.Debug("sending", "message", string(data))

	data = append(data, '\n')
	if _, err := s.writer.Write(data); err != nil {
		s.log.Error("failed to write response", "error", err)
	}
}
