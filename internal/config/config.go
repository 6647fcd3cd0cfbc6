// Package config loads codegraph settings.
//
// Settings are layered: [DefaultConfig], then an optional TOML or YAML file,
// then CODEGRAPH_* environment variables. A double underscore in a variable
// name separates sections, so CODEGRAPH_GRAPH__MIN_SIZE sets graph.min_size.
// Command-line flags are applied by the CLI on top of the result.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
)

const (
	appName   = "codegraph"
	envPrefix = "CODEGRAPH_"
)

// DefaultPath returns the config file looked up when none is given:
// $XDG_CONFIG_HOME/codegraph/config.toml, or ~/.config/codegraph/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path, if it exists, and overlays environment
// variable overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			parser, err := parserFor(path)
			if err != nil {
				return nil, err
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Graph.Languages = splitList(cfg.Graph.Languages, true)
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins, false)

	return cfg, nil
}

// envKey maps CODEGRAPH_GRAPH__MIN_SIZE to graph.min_size.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOMLParser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "unsupported config file type %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// splitList expands comma-separated entries, which is how list values
// arrive from the environment.
func splitList(in []string, lower bool) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if lower {
				part = strings.ToLower(part)
			}
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if err := cgerrors.ValidateURL(c.Backend.URL); err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	if c.Cache.TTL < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.ttl must be non-negative")
	}
	if c.Graph.View != vectorizer.ViewFunctions && c.Graph.View != vectorizer.ViewComponents {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "graph.view %q must be %s or %s", c.Graph.View, vectorizer.ViewFunctions, vectorizer.ViewComponents)
	}
	if c.Graph.Threshold < 0 || c.Graph.Threshold > 1 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "graph.threshold %g out of range [0, 1]", c.Graph.Threshold)
	}
	if c.Graph.Limit < 1 || c.Graph.Limit > vectorizer.MaxLimit {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "graph.limit %d out of range [1, %d]", c.Graph.Limit, vectorizer.MaxLimit)
	}
	for _, l := range c.Graph.Languages {
		if err := cgerrors.ValidateLanguage(l); err != nil {
			return fmt.Errorf("graph.languages: %w", err)
		}
	}
	if c.Graph.MinSize < 1 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "graph.min_size must be at least 1")
	}
	if _, err := layout.ParseStrategy(c.Graph.Layout); err != nil {
		return fmt.Errorf("graph.layout: %w", err)
	}
	if c.Server.Addr == "" {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "server.addr is required")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "log.level %q", c.Log.Level)
	}
	return lvl, nil
}

// Save writes the configuration as TOML. The token is never written.
func (c *Config) Save(path string) error {
	out := *c
	out.Backend.Token = ""

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
