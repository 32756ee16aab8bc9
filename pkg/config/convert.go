package config

import (
	"io"
	"log/slog"
	"time"

	"github.com/getmockd/specdocs/pkg/auth"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/mcp"
	"github.com/getmockd/specdocs/pkg/ratelimit"
)

// MCPConfig returns the HTTP transport settings.
func (c *Config) MCPConfig() *mcp.Config {
	m := mcp.DefaultConfig()
	m.Enabled = c.Enabled
	m.Path = c.Route
	m.Address = c.Listen
	m.ReadTimeout = c.HTTP.ReadTimeout
	m.WriteTimeout = c.HTTP.WriteTimeout
	if c.HTTP.ShutdownTimeout > 0 {
		m.ShutdownTimeout = c.HTTP.ShutdownTimeout
	}
	return m
}

// AuthConfig returns the authenticator settings.
func (c *Config) AuthConfig() auth.Config {
	tokens := make(map[string]string, len(c.Auth.Tokens))
	for k, v := range c.Auth.Tokens {
		tokens[k] = v
	}
	return auth.Config{Driver: c.Auth.Driver, Tokens: tokens}
}

// RateLimitConfig returns the limiter settings, or false when rate limiting
// is disabled.
func (c *Config) RateLimitConfig() (ratelimit.Config, bool) {
	if !c.RateLimit.Enabled {
		return ratelimit.Config{}, false
	}
	return ratelimit.Config{
		MaxAttempts:    c.RateLimit.MaxAttempts,
		Decay:          time.Duration(c.RateLimit.DecayMinutes) * time.Minute,
		TrustedProxies: c.RateLimit.TrustedProxies,
	}, true
}

// Logger builds the operational logger writing to out.
func (c *Config) Logger(out io.Writer) *slog.Logger {
	return logging.FromStrings(c.Log.Level, c.Log.Format, out)
}
