// Package codegraph provides the working graph model for code-relationship views.
//
// A [Graph] holds functions, classes, modules and other code entities as [Node]
// values connected by typed [Edge] relationships (calls, imports, extends, ...).
// The graph is a plain value: every transform in the sub-packages takes a Graph
// and returns a new one, so a published Graph is never patched in place.
//
// # Sub-packages
//
// The engine is split leaf-first, mirroring the order data flows through it:
//
//   - [github.com/matzehuels/codegraph/pkg/codegraph/transform]: raw fetch records to Graph
//   - [github.com/matzehuels/codegraph/pkg/codegraph/cluster]: same-language clustering and expansion
//   - [github.com/matzehuels/codegraph/pkg/codegraph/layout]: 2D positions (force, circular, hierarchical, grid)
//   - [github.com/matzehuels/codegraph/pkg/codegraph/search]: free-text highlighting
//   - [github.com/matzehuels/codegraph/pkg/codegraph/palette]: colours for languages, clusters and search state
//
// # Invariants
//
// A well-formed Graph satisfies:
//
//   - Node IDs are unique and non-empty.
//   - Every edge endpoint refers to a node in the graph. Dangling edges are
//     removed by [Graph.Prune] and never rendered.
//   - Clustering is single-level: a cluster's members are never clusters.
//   - A node owned by a cluster is not simultaneously present in the node set.
//
// [Graph.Validate] reports the first violated invariant.
package codegraph
