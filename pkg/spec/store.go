package spec

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getmockd/specdocs/pkg/logging"
)

// State is the load state of a Store.
type State int32

// Store states. A store moves Unloaded → Loading → Loaded | Failed; Failed
// moves back to Loading on the next call.
const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store owns the parsed specification. It is safe for concurrent use.
type Store struct {
	source Source

	mu      sync.Mutex // serializes reads of the source
	state   atomic.Int32
	doc     atomic.Pointer[Document]
	lastErr error
	reads   atomic.Int64

	log *slog.Logger
}

// NewStore creates a store that loads from source on first use.
func NewStore(source Source) *Store {
	return &Store{
		source: source,
		log:    logging.Nop(),
	}
}

// SetLogger sets the operational logger.
func (s *Store) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	} else {
		s.log = logging.Nop()
	}
}

// Source returns the configured source.
func (s *Store) Source() Source { return s.source }

// State returns the current load state.
func (s *Store) State() State { return State(s.state.Load()) }

// Loaded reports whether a parsed document is cached. It stays true while a
// reload is in flight or after a reload fails.
func (s *Store) Loaded() bool { return s.doc.Load() != nil }

// Reads returns how many times the source has been read.
func (s *Store) Reads() int64 { return s.reads.Load() }

// LastError returns the error from the most recent failed load, if any.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Load returns the cached document, reading and parsing the source on the
// first call. Failed loads are not cached; the next call tries again.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	if doc := s.doc.Load(); doc != nil {
		return doc, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have finished loading while we waited.
	if doc := s.doc.Load(); doc != nil {
		return doc, nil
	}
	return s.loadLocked(ctx)
}

// Reload reads the source again and replaces the cached document. On failure
// the previously loaded document, if any, stays in place.
func (s *Store) Reload(ctx context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc.Load()
	doc, err := s.loadLocked(ctx)
	if err != nil && prev != nil {
		s.state.Store(int32(StateLoaded))
	}
	return doc, err
}

// loadLocked performs one read+parse. Caller must hold s.mu.
func (s *Store) loadLocked(ctx context.Context) (*Document, error) {
	s.state.Store(int32(StateLoading))
	start := time.Now()

	doc, err := s.read(ctx)
	if err != nil {
		s.lastErr = err
		s.state.Store(int32(StateFailed))
		s.log.Warn("specification load failed", "location", s.source.Location(), "error", err)
		return nil, err
	}

	s.lastErr = nil
	s.doc.Store(doc)
	s.state.Store(int32(StateLoaded))
	s.log.Info("specification loaded",
		"location", s.source.Location(),
		"paths", doc.Paths().Len(),
		"duration", time.Since(start),
	)
	return doc, nil
}

func (s *Store) read(ctx context.Context) (*Document, error) {
	s.reads.Add(1)

	data, err := s.source.Read(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Location: s.source.Location(), Err: err}
	}
	doc.location = s.source.Location()
	return doc, nil
}

// String describes the store for logs.
func (s *Store) String() string {
	return fmt.Sprintf("spec.Store(%s, %s)", s.source.Location(), s.State())
}
