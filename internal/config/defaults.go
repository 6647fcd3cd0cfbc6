package config

import (
	"time"

	"github.com/matzehuels/codegraph/pkg/codegraph/cluster"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
)

// Defaults.
const (
	DefaultBackendURL = "http://localhost:8000"
	DefaultCacheTTL   = 24 * time.Hour
	DefaultAddr       = "localhost:8080"
	DefaultLogLevel   = "info"
)

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{URL: DefaultBackendURL},
		Cache:   CacheConfig{TTL: DefaultCacheTTL},
		Graph: GraphConfig{
			View:      vectorizer.ViewFunctions,
			Threshold: vectorizer.DefaultThreshold,
			Limit:     vectorizer.DefaultLimit,
			Cluster:   true,
			MinSize:   cluster.DefaultMinSize,
			Layout:    string(layout.DefaultStrategy),
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}
