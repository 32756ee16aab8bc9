package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrFileNotFound is returned when an explicitly named config file is missing.
var ErrFileNotFound = errors.New("configuration file not found")

// DefaultFileNames are searched for in the working directory, in order, when
// no config file is named.
var DefaultFileNames = []string{"specdocs.yaml", "specdocs.yml", ".specdocs.yaml"}

// ConfigError reports a config file that could not be decoded.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// FindConfigFile returns the first DefaultFileNames entry present in dir, or
// "" when there is none.
func FindConfigFile(dir string) string {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load builds a Config from defaults, the config file and environ (in
// os.Environ form). An empty path searches the working directory; a named
// file must exist. Flags are applied by the caller, followed by Validate.
func Load(path string, environ []string) (*Config, error) {
	cfg := NewDefault()

	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = FindConfigFile(cwd)
		}
	} else if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, environ); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into cfg. Keys absent from the file
// keep their current values; unknown keys are rejected.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := Parse(cfg, data); err != nil {
		return &ConfigError{Path: path, Message: err.Error()}
	}
	return nil
}

// Parse merges YAML data into cfg and records which keys it set.
func Parse(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}
	if len(root.Content) > 0 {
		markSources(cfg.Sources, root.Content[0], "")
	}
	return nil
}

// markSources records every scalar or sequence key under n as SourceFile.
func markSources(sources map[string]string, n *yaml.Node, prefix string) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		val := n.Content[i+1]
		if val.Kind == yaml.MappingNode && key != "auth.tokens" {
			markSources(sources, val, key)
			continue
		}
		sources[key] = SourceFile
	}
}
