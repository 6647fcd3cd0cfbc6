package cluster

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/codegraph/pkg/codegraph"
)

// DefaultMinSize is the group size a language must exceed to be clustered.
const DefaultMinSize = 3

// IDPrefix prefixes every cluster node id.
const IDPrefix = "cluster:"

// Options configures [Cluster].
type Options struct {
	// MinSize is the threshold k: groups with more than k members are
	// clustered. Zero or negative means DefaultMinSize.
	MinSize int
}

func (o Options) minSize() int {
	if o.MinSize <= 0 {
		return DefaultMinSize
	}
	return o.MinSize
}

// ID returns the cluster id for a language, before collision handling.
func ID(language string) string {
	return IDPrefix + language
}

type group struct {
	language string
	members  []codegraph.Node
}

// Cluster returns a copy of g in which every language group larger than the
// threshold is collapsed into a single cluster node. Existing cluster nodes
// are left alone and never absorbed.
func Cluster(g codegraph.Graph, opts Options) codegraph.Graph {
	groups := groupByLanguage(g.Nodes)

	k := opts.minSize()
	var qualifying []group
	for _, grp := range groups {
		if len(grp.members) > k {
			qualifying = append(qualifying, grp)
		}
	}
	if len(qualifying) == 0 {
		return g.Clone()
	}

	taken := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		taken[n.ID] = true
	}

	owner := make(map[string]string)
	clusters := make([]codegraph.Node, 0, len(qualifying))
	for _, grp := range qualifying {
		c := newClusterNode(uniqueID(grp.language, taken), grp)
		taken[c.ID] = true
		for _, m := range c.MemberIDs {
			owner[m] = c.ID
		}
		clusters = append(clusters, c)
	}

	out := codegraph.Graph{
		Nodes: make([]codegraph.Node, 0, len(g.Nodes)-len(owner)+len(clusters)),
	}
	for _, n := range g.Nodes {
		if _, absorbed := owner[n.ID]; !absorbed {
			out.Nodes = append(out.Nodes, n.Clone())
		}
	}
	out.Nodes = append(out.Nodes, clusters...)
	out.Edges = redirect(g.Edges, owner)

	return out.Prune()
}

func groupByLanguage(nodes []codegraph.Node) []group {
	index := make(map[string]int)
	var groups []group
	for _, n := range nodes {
		if n.IsCluster {
			continue
		}
		i, ok := index[n.Language]
		if !ok {
			i = len(groups)
			index[n.Language] = i
			groups = append(groups, group{language: n.Language})
		}
		groups[i].members = append(groups[i].members, n)
	}
	return groups
}

func uniqueID(language string, taken map[string]bool) string {
	id := ID(language)
	for n := 2; taken[id]; n++ {
		id = ID(language) + "#" + strconv.Itoa(n)
	}
	return id
}

func newClusterNode(id string, grp group) codegraph.Node {
	c := codegraph.Node{
		ID:        id,
		Name:      fmt.Sprintf("%s (%d)", grp.language, len(grp.members)),
		Kind:      codegraph.KindCluster,
		Language:  grp.language,
		Size:      float64(len(grp.members)),
		IsCluster: true,
		MemberIDs: make([]string, 0, len(grp.members)),
	}

	var sum codegraph.Point
	positioned := 0
	for _, m := range grp.members {
		c.MemberIDs = append(c.MemberIDs, m.ID)
		c.Complexity += m.Complexity
		if m.Positioned {
			sum.X += m.Position.X
			sum.Y += m.Position.Y
			positioned++
		}
	}
	if positioned > 0 {
		c.Position = codegraph.Point{X: sum.X / float64(positioned), Y: sum.Y / float64(positioned)}
		c.Positioned = true
	}
	return c
}

// redirect rewrites edge endpoints through owner (member id to cluster id).
// Edges that end up inside one cluster are dropped; redirected edges sharing
// the same endpoints are merged into the first, with weights summed. Edges
// neither of whose endpoints moved are kept as they are.
func redirect(edges []codegraph.Edge, owner map[string]string) []codegraph.Edge {
	out := make([]codegraph.Edge, 0, len(edges))
	merged := make(map[[2]string]int)

	for _, e := range edges {
		src, srcMoved := resolve(e.Source, owner)
		dst, dstMoved := resolve(e.Target, owner)
		if !srcMoved && !dstMoved {
			out = append(out, e)
			continue
		}
		if src == dst {
			continue
		}

		key := [2]string{src, dst}
		if i, ok := merged[key]; ok {
			out[i].Weight += e.Weight
			continue
		}
		merged[key] = len(out)
		e.Source, e.Target = src, dst
		out = append(out, e)
	}
	return out
}

func resolve(id string, owner map[string]string) (string, bool) {
	if c, ok := owner[id]; ok {
		return c, true
	}
	return id, false
}
