package mcp

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the HTTP transport configuration.
type Config struct {
	// Enabled controls whether the route answers. When false every request
	// gets 404.
	Enabled bool `json:"enabled"`

	// Path is the HTTP route (e.g., "/mcp").
	Path string `json:"path"`

	// Address is the listen address.
	Address string `json:"address"`

	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration `json:"readTimeout"`

	// WriteTimeout is the HTTP write timeout.
	WriteTimeout time.Duration `json:"writeTimeout"`

	// ShutdownTimeout bounds graceful shutdown in Stop.
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`

	// MaxBodyBytes caps the request body.
	MaxBodyBytes int64 `json:"maxBodyBytes"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Path:            "/mcp",
		Address:         "127.0.0.1:4300",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    MaxMessageBytes,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("path cannot be empty")
	}

	if c.Path[0] != '/' {
		return fmt.Errorf("path must start with '/', got %q", c.Path)
	}

	if c.Address == "" {
		return errors.New("address cannot be empty")
	}

	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}

	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("maxBodyBytes must be at least 1, got %d", c.MaxBodyBytes)
	}

	return nil
}
