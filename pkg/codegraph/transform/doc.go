// Package transform turns backend fetch records into a working graph.
//
// # Overview
//
// The vectorization backend returns loosely-typed node and link records in
// which every field except the node id may be missing. [Normalize] applies the
// defaults the rest of the engine relies on:
//
//   - missing name becomes "Unnamed Function"
//   - missing language becomes "unknown"
//   - missing complexity becomes 1, negative complexity is clamped to 0
//   - node size is max(centrality, complexity, 1)
//   - missing or sub-unit edge weight becomes 1
//
// Records that cannot be represented are dropped rather than rejected: nodes
// with an empty or repeated id (the first occurrence wins) and links whose
// endpoints are not in the node set. [Stats] reports how many were dropped.
//
// # Snapshots
//
// The result is a [Snapshot] holding both the untouched input and the
// normalized, unclustered graph. The cluster package restores member nodes
// from it when a cluster is expanded, so a snapshot is taken once per fetch
// and kept for as long as that fetch's graph is current.
//
// # Language Inference
//
// With [Options.InferLanguage] set, nodes without a language but with a file
// path take the language implied by the file extension ([LanguageForPath]).
package transform
