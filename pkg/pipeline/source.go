package pipeline

import (
	"context"
	"strings"

	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
)

// Source supplies raw graph payloads. [vectorizer.Client] is the backend
// implementation; [FileSource] serves a saved response.
type Source interface {
	FetchGraph(ctx context.Context, q vectorizer.Query, refresh bool) (graph.RawGraph, error)
}

var _ Source = (*vectorizer.Client)(nil)

// FileSource reads a saved backend response from disk on every fetch and
// applies the query's language filter and node limit locally. The similarity
// threshold cannot be re-applied to a saved response and is ignored.
type FileSource struct {
	Path string
}

// FetchGraph reads the file and filters it by q. refresh is ignored.
func (s FileSource) FetchGraph(ctx context.Context, q vectorizer.Query, _ bool) (graph.RawGraph, error) {
	if err := ctx.Err(); err != nil {
		return graph.RawGraph{}, cgerrors.Wrap(cgerrors.ErrCodeTimeout, err, "read %s", s.Path)
	}
	if err := cgerrors.ValidatePath(s.Path); err != nil {
		return graph.RawGraph{}, err
	}
	raw, err := graph.ReadRawFile(s.Path)
	if err != nil {
		if cgerrors.GetCode(err) != "" {
			return graph.RawGraph{}, err
		}
		return graph.RawGraph{}, cgerrors.Wrap(cgerrors.ErrCodeFetch, err, "load graph file")
	}
	return FilterRaw(raw, q.WithDefaults()), nil
}

// FilterRaw keeps the nodes whose language is in q.Languages (all nodes when
// the list is empty), truncates to q.Limit nodes in input order, and drops
// links that no longer have both endpoints.
func FilterRaw(raw graph.RawGraph, q vectorizer.Query) graph.RawGraph {
	want := make(map[string]bool, len(q.Languages))
	for _, l := range q.Languages {
		want[strings.ToLower(l)] = true
	}

	out := graph.RawGraph{
		Nodes: make([]graph.RawNode, 0, len(raw.Nodes)),
		Links: make([]graph.RawLink, 0, len(raw.Links)),
	}
	kept := make(map[string]bool, len(raw.Nodes))
	for _, n := range raw.Nodes {
		if q.Limit > 0 && len(out.Nodes) >= q.Limit {
			break
		}
		if len(want) > 0 && !want[strings.ToLower(n.Language)] {
			continue
		}
		out.Nodes = append(out.Nodes, n)
		kept[n.ID] = true
	}
	for _, l := range raw.Links {
		if kept[l.Source.ID()] && kept[l.Target.ID()] {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

// StaticSource serves a fixed payload, filtered like [FileSource].
type StaticSource struct {
	Graph graph.RawGraph
}

// FetchGraph returns the filtered payload.
func (s StaticSource) FetchGraph(ctx context.Context, q vectorizer.Query, _ bool) (graph.RawGraph, error) {
	if err := ctx.Err(); err != nil {
		return graph.RawGraph{}, cgerrors.Wrap(cgerrors.ErrCodeTimeout, err, "static source")
	}
	return FilterRaw(s.Graph, q.WithDefaults()), nil
}
