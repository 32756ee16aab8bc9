package spec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Source reads the raw bytes of a specification.
type Source interface {
	// Location identifies the source in logs and errors.
	Location() string
	// Read returns the document content. A missing document yields an error
	// wrapping ErrNotFound.
	Read(ctx context.Context) ([]byte, error)
}

// NewSource returns an HTTPSource for http(s) URLs and a FileSource otherwise.
func NewSource(location string) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(location)
	}
	return NewFileSource(location)
}

// FileSource reads the specification from the local filesystem.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for a local file.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Location returns the file path.
func (s *FileSource) Location() string { return s.Path }

// Read reads the whole file.
func (s *FileSource) Read(_ context.Context) ([]byte, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(s.Path)
		}
		return nil, fmt.Errorf("stat OpenAPI file: %w", err)
	}
	if info.IsDir() {
		return nil, notFound(s.Path)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(s.Path)
		}
		return nil, fmt.Errorf("read OpenAPI file: %w", err)
	}
	return data, nil
}

// DefaultFetchTimeout bounds a single remote fetch.
const DefaultFetchTimeout = 30 * time.Second

// HTTPSource fetches the specification from a URL.
type HTTPSource struct {
	URL    string
	client *resty.Client
}

// NewHTTPSource creates a source that GETs url on every read.
func NewHTTPSource(url string) *HTTPSource {
	client := resty.New().
		SetTimeout(DefaultFetchTimeout).
		SetHeader("Accept", "application/json, application/x-yaml, application/yaml, text/yaml")
	return &HTTPSource{URL: url, client: client}
}

// Location returns the URL.
func (s *HTTPSource) Location() string { return s.URL }

// Read fetches the document. HTTP 404 and 410 map to ErrNotFound.
func (s *HTTPSource) Read(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching spec from %s: %w", s.URL, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusGone:
		return nil, notFound(s.URL)
	case !resp.IsSuccess():
		return nil, fmt.Errorf("fetching spec from %s: HTTP %d", s.URL, resp.StatusCode())
	}
	return resp.Body(), nil
}
