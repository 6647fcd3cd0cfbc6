package cluster

import (
	"math"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/transform"
)

// SeedRadius is the base radius of the ring on which expanded members are
// placed around their cluster's position. It grows with the square root of
// the member count.
const SeedRadius = 20.0

// Expand returns a copy of g with the cluster clusterID replaced by its
// members, restored from snap. Other clusters stay collapsed.
func Expand(g codegraph.Graph, clusterID string, snap transform.Snapshot) codegraph.Graph {
	idx := g.Index()
	ci, ok := idx[clusterID]
	if !ok || !g.Nodes[ci].IsCluster || len(g.Nodes[ci].MemberIDs) == 0 {
		return g.Clone()
	}
	c := g.Nodes[ci]

	members := restore(c, snap, idx)

	out := codegraph.Graph{
		Nodes: make([]codegraph.Node, 0, len(g.Nodes)-1+len(members)),
		Edges: make([]codegraph.Edge, 0, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		if i == ci {
			out.Nodes = append(out.Nodes, members...)
			continue
		}
		out.Nodes = append(out.Nodes, n.Clone())
	}

	for _, e := range g.Edges {
		if e.Source != clusterID && e.Target != clusterID {
			out.Edges = append(out.Edges, e)
		}
	}
	out.Edges = append(out.Edges, rederive(out, members, snap)...)

	return out.Prune()
}

// ExpandAll expands every cluster in g.
func ExpandAll(g codegraph.Graph, snap transform.Snapshot) codegraph.Graph {
	out := g.Clone()
	for _, c := range g.Clusters() {
		out = Expand(out, c.ID, snap)
	}
	return out
}

// restore looks up the cluster's members in the snapshot and seeds their
// positions. Members missing from the snapshot, or already present in the
// graph, are skipped.
func restore(c codegraph.Node, snap transform.Snapshot, present map[string]int) []codegraph.Node {
	members := make([]codegraph.Node, 0, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		if _, dup := present[id]; dup {
			continue
		}
		if n, ok := snap.Node(id); ok {
			members = append(members, n)
		}
	}

	r := SeedRadius * math.Sqrt(float64(len(members)))
	for i := range members {
		theta := float64(i) * 2 * math.Pi / float64(len(members))
		members[i].Position = codegraph.Point{
			X: c.Position.X + r*math.Cos(theta),
			Y: c.Position.Y + r*math.Sin(theta),
		}
		members[i].Positioned = true
	}
	return members
}

// rederive rebuilds the edges incident to the restored members from the
// snapshot, resolving endpoints through the clusters still present in g.
func rederive(g codegraph.Graph, members []codegraph.Node, snap transform.Snapshot) []codegraph.Edge {
	restored := make(map[string]bool, len(members))
	for _, m := range members {
		restored[m.ID] = true
	}

	owner := make(map[string]string)
	for _, c := range g.Clusters() {
		for _, m := range c.MemberIDs {
			owner[m] = c.ID
		}
	}

	var touching []codegraph.Edge
	for _, e := range snap.Edges() {
		if restored[e.Source] || restored[e.Target] {
			touching = append(touching, e)
		}
	}
	return redirect(touching, owner)
}
