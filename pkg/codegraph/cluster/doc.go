// Package cluster collapses oversized same-language node groups into
// synthetic cluster nodes and expands them back.
//
// # Clustering
//
// [Cluster] groups the non-cluster nodes of a graph by language. Every group
// with more than [Options.MinSize] members is replaced by one cluster node:
//
//	Before: parse.js, lex.js, emit.js, walk.js, main.py
//	After:  cluster:javascript (4 members), main.py
//
// Cluster ids are deterministic ("cluster:" + language) so the same fetch
// always yields the same ids. Edges are redirected through the membership
// map: an edge into an absorbed member now points at its cluster, edges
// between members of the same cluster disappear, and parallel edges produced
// by redirection are merged with their weights summed. A cluster never gets
// a self-loop from its own members.
//
// When no group qualifies the graph is returned unchanged.
//
// # Expansion
//
// [Expand] reverses clustering for one cluster. Members are restored from the
// [transform.Snapshot] taken when the graph was fetched, not from the cluster
// itself, so they come back with their original fields. They are seeded on a
// small ring around the cluster's last position so a force simulation settles
// them nearby. Edges touching the restored members are re-derived from the
// snapshot under the membership of the clusters that remain collapsed.
//
// Expanding an id that is not a cluster, or a cluster without recorded
// members, returns the graph unchanged.
package cluster
