package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/internal/config"
	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "codegraph"

	// redisPrefix namespaces codegraph keys in a shared Redis.
	redisPrefix = "codegraph:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured response cache: Redis when a URL is set,
// otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: url, Prefix: redisPrefix})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSource returns the graph source: a local file when path is set,
// otherwise the configured backend.
func (c *CLI) newSource(ctx context.Context, path string, noCache bool) (pipeline.Source, cache.Cache, error) {
	if path != "" {
		return pipeline.FileSource{Path: path}, cache.NewNullCache(), nil
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	client, err := vectorizer.NewClient(vectorizer.Options{
		BaseURL:  c.Config.Backend.URL,
		Token:    c.Config.Backend.Token,
		Cache:    ch,
		CacheTTL: c.Config.Cache.TTL,
	})
	if err != nil {
		_ = ch.Close()
		return nil, nil, err
	}
	return client, ch, nil
}

// newRunner creates a pipeline runner for one-shot commands. Rendered
// artifacts share the response cache.
func (c *CLI) newRunner(ctx context.Context, path string, noCache bool) (*pipeline.Runner, error) {
	src, ch, err := c.newSource(ctx, path, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(src, ch, nil, c.Logger), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/codegraph/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
