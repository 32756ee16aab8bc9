package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "SPECDOCS_"

// TokenEnvPrefix introduces an auth token. The rest of the name, lowercased
// with underscores turned into dashes, is the token label:
// SPECDOCS_TOKEN_FRONTEND_DEV sets auth.tokens.frontend-dev.
const TokenEnvPrefix = EnvPrefix + "TOKEN_"

type envField struct {
	name string
	key  string
	set  func(cfg *Config, v string) error
}

var envFields = []envField{
	{"ENABLED", "enabled", func(c *Config, v string) error { return setBool(&c.Enabled, v) }},
	{"OPENAPI", "openapi", func(c *Config, v string) error { c.OpenAPI = v; return nil }},
	{"ROUTE", "route", func(c *Config, v string) error { c.Route = v; return nil }},
	{"LISTEN", "listen", func(c *Config, v string) error { c.Listen = v; return nil }},
	{"WATCH", "watch", func(c *Config, v string) error { return setBool(&c.Watch, v) }},
	{"AUTH_DRIVER", "auth.driver", func(c *Config, v string) error {
		c.Auth.Driver = strings.ToLower(strings.TrimSpace(v))
		return nil
	}},
	{"SERVER_NAME", "server.name", func(c *Config, v string) error { c.Server.Name = v; return nil }},
	{"SERVER_VERSION", "server.version", func(c *Config, v string) error { c.Server.Version = v; return nil }},
	{"SERVER_DESCRIPTION", "server.description", func(c *Config, v string) error { c.Server.Description = v; return nil }},
	{"RATE_LIMIT_ENABLED", "rateLimit.enabled", func(c *Config, v string) error { return setBool(&c.RateLimit.Enabled, v) }},
	{"RATE_LIMIT_MAX_ATTEMPTS", "rateLimit.maxAttempts", func(c *Config, v string) error { return setInt(&c.RateLimit.MaxAttempts, v) }},
	{"RATE_LIMIT_DECAY_MINUTES", "rateLimit.decayMinutes", func(c *Config, v string) error { return setInt(&c.RateLimit.DecayMinutes, v) }},
	{"LOG_LEVEL", "log.level", func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil }},
	{"LOG_FORMAT", "log.format", func(c *Config, v string) error { c.Log.Format = strings.ToLower(v); return nil }},
	{"READ_TIMEOUT", "http.readTimeout", func(c *Config, v string) error { return setDuration(&c.HTTP.ReadTimeout, v) }},
	{"WRITE_TIMEOUT", "http.writeTimeout", func(c *Config, v string) error { return setDuration(&c.HTTP.WriteTimeout, v) }},
	{"SHUTDOWN_TIMEOUT", "http.shutdownTimeout", func(c *Config, v string) error { return setDuration(&c.HTTP.ShutdownTimeout, v) }},
	{"METRICS_ENABLED", "metrics.enabled", func(c *Config, v string) error { return setBool(&c.Metrics.Enabled, v) }},
	{"METRICS_PATH", "metrics.path", func(c *Config, v string) error { c.Metrics.Path = v; return nil }},
}

// ApplyEnv overlays SPECDOCS_* variables from environ onto cfg. Empty values
// are ignored.
func ApplyEnv(cfg *Config, environ []string) error {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		vars[name] = value
	}
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	for _, f := range envFields {
		v, ok := vars[EnvPrefix+f.name]
		if !ok {
			continue
		}
		if err := f.set(cfg, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, f.name, err)
		}
		cfg.Sources[f.key] = SourceEnv
	}

	for name, v := range vars {
		label, ok := strings.CutPrefix(name, TokenEnvPrefix)
		if !ok || label == "" {
			continue
		}
		label = strings.ReplaceAll(strings.ToLower(label), "_", "-")
		if cfg.Auth.Tokens == nil {
			cfg.Auth.Tokens = make(map[string]string)
		}
		cfg.Auth.Tokens[label] = v
		cfg.Sources["auth.tokens."+label] = SourceEnv
	}
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid boolean %q", v)
	}
	*dst = b
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid integer %q", v)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid duration %q", v)
	}
	*dst = d
	return nil
}
