// Package search highlights graph nodes that match a free-text query.
//
// Matching is a case-insensitive substring test against the concatenation of
// a node's name, file path and language. Cluster nodes are exempt: they stand
// for many entities the query cannot meaningfully match, so they are never
// highlighted and never dimmed.
//
// Highlighting only touches the Highlighted and Dimmed flags. Node and edge
// counts are never changed.
package search

import (
	"strings"

	"github.com/matzehuels/codegraph/pkg/codegraph"
)

// Highlight returns a copy of g with search flags set for query.
//
// A blank query clears every flag. Otherwise each non-cluster node is
// Highlighted when it matches and Dimmed when it does not.
func Highlight(g codegraph.Graph, query string) codegraph.Graph {
	out := g.Clone()
	q := normalize(query)
	for i := range out.Nodes {
		n := &out.Nodes[i]
		if q == "" || n.IsCluster {
			n.Highlighted, n.Dimmed = false, false
			continue
		}
		n.Highlighted = Match(*n, q)
		n.Dimmed = !n.Highlighted
	}
	return out
}

// Match reports whether n matches an already-normalized query.
// Cluster nodes never match.
func Match(n codegraph.Node, query string) bool {
	if n.IsCluster {
		return false
	}
	return strings.Contains(searchText(n), query)
}

// Matches returns the non-cluster nodes of g matching query, in graph order.
// A blank query matches nothing.
func Matches(g codegraph.Graph, query string) []codegraph.Node {
	q := normalize(query)
	if q == "" {
		return nil
	}
	var out []codegraph.Node
	for _, n := range g.Nodes {
		if Match(n, q) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func searchText(n codegraph.Node) string {
	return strings.ToLower(n.Name + n.FilePath + n.Language)
}
