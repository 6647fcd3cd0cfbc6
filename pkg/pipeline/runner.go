package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/codegraph/search"
	"github.com/matzehuels/codegraph/pkg/codegraph/transform"
	"github.com/matzehuels/codegraph/pkg/graph"
)

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = 24 * time.Hour

// Runner encapsulates pipeline execution with caching.
// The CLI, explorer and server use it to avoid duplicating stage wiring.
//
// The Runner is stateless except for its collaborators - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options, provided the Engine's simulation is safe
// for concurrent use.
type Runner struct {
	Source Source
	Engine *layout.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner reading from src.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The layout engine drives a [layout.NopSimulation] until replaced.
func NewRunner(src Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Engine: layout.New(nil, layout.Options{}),
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → arrange → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	snap, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Snapshot = snap
	result.Stats.FetchTime = time.Since(fetchStart)

	r.Logger.Info("fetched graph",
		"project", opts.Project,
		"view", opts.View,
		"nodes", snap.Stats.Nodes,
		"edges", snap.Stats.Edges,
		"duration", result.Stats.FetchTime)

	// Stage 2: Arrange
	layoutStart := time.Now()
	g, err := r.Arrange(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = g
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.Clusters = len(g.Clusters())
	result.Stats.Matches = len(search.Matches(g, opts.Search))

	r.Logger.Info("computed layout",
		"strategy", opts.Layout,
		"nodes", g.NodeCount(),
		"clusters", result.Stats.Clusters,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.GraphHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch loads and normalizes the graph described by opts.
func (r *Runner) Fetch(ctx context.Context, opts Options) (transform.Snapshot, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFetch(); err != nil {
		return transform.Snapshot{}, err
	}
	if r.Source == nil {
		return transform.Snapshot{}, fmt.Errorf("runner has no source")
	}
	return Fetch(ctx, r.Source, opts)
}

// Arrange clusters, lays out and highlights a fetched snapshot.
func (r *Runner) Arrange(ctx context.Context, snap transform.Snapshot, opts Options) (codegraph.Graph, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return codegraph.Graph{}, err
	}
	return Arrange(ctx, r.Engine, snap, opts)
}

// RenderWithCacheInfo renders g with caching. It returns the artifacts, the
// content hash of the graph they were rendered from, and whether every
// artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g codegraph.Graph, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	graphData, err := graph.MarshalRender(graph.FromGraph(g))
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(graphHash, opts.RenderKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, graphHash, true, nil
	}

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, "", false, err
	}
	for format, data := range rendered {
		key := r.Keyer.RenderKey(graphHash, opts.RenderKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, TTLArtifact); err != nil {
			r.Logger.Debug("cache write failed", "format", format, "error", err)
		}
	}
	return rendered, graphHash, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache info.
func (r *Runner) Render(ctx context.Context, g codegraph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
