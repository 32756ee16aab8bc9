package config

import (
	"time"

	"github.com/getmockd/specdocs/pkg/mcp"
)

// Config is the complete specdocs configuration.
type Config struct {
	// Enabled turns the HTTP route on. When false it answers 404.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// OpenAPI is a file path or an http(s) URL.
	OpenAPI string `yaml:"openapi" json:"openapi" validate:"required"`

	// Route is the HTTP path of the JSON-RPC endpoint.
	Route string `yaml:"route" json:"route" validate:"required,route"`

	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen" validate:"required"`

	// Watch reloads the document when the file changes.
	Watch bool `yaml:"watch" json:"watch"`

	Auth      AuthConfig      `yaml:"auth" json:"auth"`
	Server    mcp.ServerInfo  `yaml:"server" json:"server"`
	RateLimit RateLimitConfig `yaml:"rateLimit" json:"rateLimit"`
	Log       LogConfig       `yaml:"log" json:"log"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `yaml:"-" json:"-"`
}

// AuthConfig selects how JSON-RPC requests are authenticated.
type AuthConfig struct {
	Driver string `yaml:"driver" json:"driver" validate:"oneof=token none"`

	// Tokens maps a label to a shared secret. Empty secrets are ignored.
	Tokens map[string]string `yaml:"tokens" json:"-"`
}

// RateLimitConfig limits requests per client IP.
type RateLimitConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	MaxAttempts    int      `yaml:"maxAttempts" json:"maxAttempts" validate:"min=1"`
	DecayMinutes   int      `yaml:"decayMinutes" json:"decayMinutes" validate:"min=1"`
	TrustedProxies []string `yaml:"trustedProxies" json:"trustedProxies,omitempty" validate:"dive,cidr|ip"`
}

// LogConfig configures the operational logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// MetricsConfig exposes Prometheus metrics on the HTTP listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path" validate:"required,route"`
}

// HTTPConfig holds HTTP server timeouts. Durations use Go syntax ("30s").
type HTTPConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout" json:"readTimeout" validate:"min=0"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" json:"writeTimeout" validate:"min=0"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout" validate:"min=0"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)
