package graph

import (
	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/palette"
)

// FromGraph converts a working graph to render output.
//
// Node colours reflect language, cluster and search state. Links whose source
// or target is not in the node set are left out, so the renderer never sees a
// dangling edge regardless of how the graph was produced.
func FromGraph(g codegraph.Graph) RenderGraph {
	out := RenderGraph{
		Nodes: make([]RenderNode, 0, len(g.Nodes)),
		Links: make([]RenderLink, 0, len(g.Edges)),
	}

	present := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		present[n.ID] = true
		out.Nodes = append(out.Nodes, renderNode(n))
	}

	for _, e := range g.Edges {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		out.Links = append(out.Links, RenderLink{
			Source:       Endpoint(e.Source),
			Target:       Endpoint(e.Target),
			Value:        e.Weight,
			Relationship: string(e.Relationship),
		})
	}
	return out
}

func renderNode(n codegraph.Node) RenderNode {
	rn := RenderNode{
		ID:          n.ID,
		Name:        n.Name,
		Language:    n.Language,
		Val:         n.Size,
		Color:       palette.ForNode(n),
		Kind:        string(n.Kind),
		FilePath:    n.FilePath,
		Complexity:  n.Complexity,
		IsCluster:   n.IsCluster,
		Highlighted: n.Highlighted,
	}
	if n.IsCluster {
		rn.MemberIDs = append([]string(nil), n.MemberIDs...)
	}
	if n.Positioned {
		x, y := n.Position.X, n.Position.Y
		rn.X, rn.Y = &x, &y
	}
	return rn
}

// Positions returns the coordinates reported for each node that has both x
// and y set.
func (g RenderGraph) Positions() map[string]codegraph.Point {
	out := make(map[string]codegraph.Point, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.X != nil && n.Y != nil {
			out[n.ID] = codegraph.Point{X: *n.X, Y: *n.Y}
		}
	}
	return out
}

// LinkIDs returns each link's endpoints as plain ids, whichever form the
// renderer sent them in.
func (g RenderGraph) LinkIDs() [][2]string {
	out := make([][2]string, len(g.Links))
	for i, l := range g.Links {
		out[i] = [2]string{l.Source.ID(), l.Target.ID()}
	}
	return out
}
