package config

import (
	"time"

	"github.com/getmockd/specdocs/pkg/mcp"
	"github.com/getmockd/specdocs/pkg/ratelimit"
)

// Defaults.
const (
	DefaultOpenAPI            = "openapi.yaml"
	DefaultRoute              = "/mcp"
	DefaultListen             = "127.0.0.1:4300"
	DefaultAuthDriver         = "token"
	DefaultRateLimitAttempts  = ratelimit.DefaultMaxAttempts
	DefaultRateLimitDecayMins = 1
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultReadTimeout        = 30 * time.Second
	DefaultWriteTimeout       = 30 * time.Second
	DefaultShutdownTimeout    = 5 * time.Second
	DefaultMetricsPath        = "/metrics"
)

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Enabled: true,
		OpenAPI: DefaultOpenAPI,
		Route:   DefaultRoute,
		Listen:  DefaultListen,
		Auth: AuthConfig{
			Driver: DefaultAuthDriver,
			Tokens: map[string]string{},
		},
		Server: mcp.DefaultServerInfo(),
		RateLimit: RateLimitConfig{
			Enabled:      true,
			MaxAttempts:  DefaultRateLimitAttempts,
			DecayMinutes: DefaultRateLimitDecayMins,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		HTTP: HTTPConfig{
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Metrics: MetricsConfig{
			Path: DefaultMetricsPath,
		},
		Sources: make(map[string]string),
	}

	for _, key := range []string{
		"enabled", "openapi", "route", "listen", "watch",
		"auth.driver",
		"server.name", "server.version", "server.description",
		"rateLimit.enabled", "rateLimit.maxAttempts", "rateLimit.decayMinutes",
		"log.level", "log.format",
		"http.readTimeout", "http.writeTimeout", "http.shutdownTimeout",
		"metrics.enabled", "metrics.path",
	} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}
