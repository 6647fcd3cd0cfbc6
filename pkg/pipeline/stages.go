package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/cluster"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/codegraph/search"
	"github.com/matzehuels/codegraph/pkg/codegraph/transform"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/observability"
	"github.com/matzehuels/codegraph/pkg/render/nodelink"
)

// Fetch loads the payload for q from src and normalizes it.
func Fetch(ctx context.Context, src Source, opts Options) (transform.Snapshot, error) {
	q := opts.Query()
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, q.Project, q.View)
	start := time.Now()

	raw, err := src.FetchGraph(ctx, q, opts.Refresh)
	if err != nil {
		hooks.OnFetchComplete(ctx, q.Project, q.View, 0, time.Since(start), err)
		return transform.Snapshot{}, err
	}

	snap := transform.Normalize(raw, opts.TransformOptions())
	hooks.OnFetchComplete(ctx, q.Project, q.View, snap.Stats.Nodes, time.Since(start), nil)

	if logger := opts.Logger; logger != nil && (snap.Stats.DroppedNodes > 0 || snap.Stats.DroppedEdges > 0) {
		logger.Debug("dropped unusable records",
			"nodes", snap.Stats.DroppedNodes,
			"edges", snap.Stats.DroppedEdges)
	}
	return snap, nil
}

// ClusterGraph folds oversized language groups when clustering is enabled
// and returns g unchanged otherwise.
func ClusterGraph(ctx context.Context, g codegraph.Graph, opts Options) codegraph.Graph {
	if !opts.Cluster {
		return g
	}
	out := cluster.Cluster(g, opts.ClusterOptions())
	observability.Pipeline().OnCluster(ctx, g.NodeCount(), out.NodeCount(), len(out.Clusters()))
	return out
}

// Layout positions g with the given strategy.
func Layout(ctx context.Context, engine *layout.Engine, g codegraph.Graph, strategy layout.Strategy) (codegraph.Graph, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(strategy), g.NodeCount())
	start := time.Now()

	out, err := engine.Apply(g, strategy)
	hooks.OnLayoutComplete(ctx, string(strategy), time.Since(start), err)
	return out, err
}

// Arrange runs the structural stages on a snapshot: cluster (when enabled),
// then layout, then highlight with the search query.
func Arrange(ctx context.Context, engine *layout.Engine, snap transform.Snapshot, opts Options) (codegraph.Graph, error) {
	g := ClusterGraph(ctx, snap.Graph, opts)
	g, err := Layout(ctx, engine, g, opts.Strategy())
	if err != nil {
		return codegraph.Graph{}, err
	}
	return search.Highlight(g, opts.Search), nil
}

// Render produces the requested formats for g.
func Render(ctx context.Context, g codegraph.Graph, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := render(ctx, g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(ctx context.Context, g codegraph.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	nodelinkOpts := nodelink.Options{Detailed: opts.Detailed}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalRender(graph.FromGraph(g))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(g, nodelinkOpts))
		case FormatSVG:
			data, err = nodelink.RenderGraphSVG(ctx, g, nodelinkOpts)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
