package config

import "time"

// Config is the top-level codegraph configuration, read from config.toml
// (or .yaml) and overridden by CODEGRAPH_* environment variables.
type Config struct {
	Backend BackendConfig `koanf:"backend" toml:"backend"`
	Cache   CacheConfig   `koanf:"cache" toml:"cache"`
	Graph   GraphConfig   `koanf:"graph" toml:"graph"`
	Server  ServerConfig  `koanf:"server" toml:"server"`
	Log     LogConfig     `koanf:"log" toml:"log"`
}

// BackendConfig locates the graph backend.
type BackendConfig struct {
	URL   string `koanf:"url" toml:"url"`
	Token string `koanf:"token" toml:"token,omitempty"`
}

// CacheConfig selects where fetched graphs are cached.
type CacheConfig struct {
	Disabled bool `koanf:"disabled" toml:"disabled"`

	// Dir is the file cache directory. Empty means $XDG_CACHE_HOME/codegraph.
	Dir string `koanf:"dir" toml:"dir,omitempty"`

	// RedisURL selects a shared Redis cache instead of the file cache.
	RedisURL string `koanf:"redis_url" toml:"redis_url,omitempty"`

	TTL time.Duration `koanf:"ttl" toml:"ttl"`
}

// GraphConfig holds the default filters and view settings.
type GraphConfig struct {
	Project       string   `koanf:"project" toml:"project,omitempty"`
	View          string   `koanf:"view" toml:"view"`
	Threshold     float64  `koanf:"threshold" toml:"threshold"`
	Limit         int      `koanf:"limit" toml:"limit"`
	Languages     []string `koanf:"languages" toml:"languages,omitempty"`
	Cluster       bool     `koanf:"cluster" toml:"cluster"`
	MinSize       int      `koanf:"min_size" toml:"min_size"`
	Layout        string   `koanf:"layout" toml:"layout"`
	InferLanguage bool     `koanf:"infer_language" toml:"infer_language"`
}

// ServerConfig configures `codegraph serve`.
type ServerConfig struct {
	Addr           string   `koanf:"addr" toml:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins" toml:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `koanf:"level" toml:"level"`
}
