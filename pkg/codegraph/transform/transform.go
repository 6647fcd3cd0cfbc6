package transform

import (
	"math"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/graph"
)

// Defaults applied to missing fields.
const (
	DefaultName       = "Unnamed Function"
	DefaultLanguage   = "unknown"
	DefaultComplexity = 1.0
	DefaultWeight     = 1.0
)

// Options configures [Normalize].
type Options struct {
	// InferLanguage fills a missing language from the node's file extension.
	InferLanguage bool
}

// Stats summarizes a normalization run.
type Stats struct {
	Nodes        int // nodes kept
	Edges        int // edges kept
	DroppedNodes int // empty or duplicate ids
	DroppedEdges int // links to unknown nodes
	Languages    int // distinct languages after defaulting
}

// Snapshot is the outcome of one fetch: the backend payload as received and
// the normalized graph derived from it. Neither is modified after creation.
type Snapshot struct {
	Raw   graph.RawGraph
	Graph codegraph.Graph
	Stats Stats

	index map[string]int
}

// Node returns the normalized node with the given id.
func (s Snapshot) Node(id string) (codegraph.Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return codegraph.Node{}, false
	}
	return s.Graph.Nodes[i].Clone(), true
}

// Edges returns the normalized edges. The caller must not modify the slice.
func (s Snapshot) Edges() []codegraph.Edge {
	return s.Graph.Edges
}

// Normalize converts a backend payload to a working graph. It never fails:
// unusable records are dropped and counted in the returned [Stats].
func Normalize(raw graph.RawGraph, opts Options) Snapshot {
	g := codegraph.Graph{
		Nodes: make([]codegraph.Node, 0, len(raw.Nodes)),
		Edges: make([]codegraph.Edge, 0, len(raw.Links)),
	}
	var stats Stats

	index := make(map[string]int, len(raw.Nodes))
	for _, rn := range raw.Nodes {
		if rn.ID == "" {
			stats.DroppedNodes++
			continue
		}
		if _, dup := index[rn.ID]; dup {
			stats.DroppedNodes++
			continue
		}
		index[rn.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, NormalizeNode(rn, opts))
	}

	for _, rl := range raw.Links {
		src, dst := rl.Source.ID(), rl.Target.ID()
		_, okSrc := index[src]
		_, okDst := index[dst]
		if !okSrc || !okDst {
			stats.DroppedEdges++
			continue
		}
		g.Edges = append(g.Edges, NormalizeLink(rl))
	}

	stats.Nodes = len(g.Nodes)
	stats.Edges = len(g.Edges)
	stats.Languages = len(g.Languages())

	return Snapshot{Raw: raw, Graph: g, Stats: stats, index: index}
}

// NormalizeNode applies field defaults to a single node record.
func NormalizeNode(rn graph.RawNode, opts Options) codegraph.Node {
	n := codegraph.Node{
		ID:         rn.ID,
		Name:       rn.Name,
		Kind:       codegraph.ParseKind(rn.Type),
		Language:   rn.Language,
		FilePath:   rn.File,
		Code:       rn.Code,
		Complexity: DefaultComplexity,
	}
	if n.Name == "" {
		n.Name = DefaultName
	}
	if n.Language == "" && opts.InferLanguage {
		n.Language = LanguageForPath(n.FilePath)
	}
	if n.Language == "" {
		n.Language = DefaultLanguage
	}
	if rn.Complexity != nil {
		n.Complexity = math.Max(*rn.Complexity, 0)
	}

	centrality := 0.0
	if rn.Centrality != nil {
		centrality = *rn.Centrality
	}
	n.Size = math.Max(math.Max(centrality, n.Complexity), 1)
	return n
}

// NormalizeLink applies field defaults to a single link record.
func NormalizeLink(rl graph.RawLink) codegraph.Edge {
	e := codegraph.Edge{
		Source:       rl.Source.ID(),
		Target:       rl.Target.ID(),
		Relationship: codegraph.ParseRelationship(rl.Relationship),
		Weight:       DefaultWeight,
	}
	if rl.Weight != nil && *rl.Weight > DefaultWeight {
		e.Weight = *rl.Weight
	}
	return e
}
