package layout

import "github.com/matzehuels/codegraph/pkg/codegraph"

// Levels assigns each node its breadth-first discovery depth.
//
// Roots are nodes with no incoming edge. A single search starts from all of
// them at level 0; the first visit fixes a node's level and later visits are
// skipped, which is what keeps cycles from looping. Nodes still unvisited
// afterwards (members of cycles no root reaches) each seed a further search
// at level 0, in array order.
//
// A level is therefore the shortest depth from a root. An edge that skips
// ahead (r→a→c plus r→c) leaves its target on the same level as a sibling
// source, so "child below parent" holds for the edges the search followed,
// not for every edge.
//
// Edges whose endpoints are not in g are ignored.
func Levels(g codegraph.Graph) map[string]int {
	idx := g.Index()
	children := make(map[string][]string, len(g.Nodes))
	inDegree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		_, okSrc := idx[e.Source]
		_, okDst := idx[e.Target]
		if !okSrc || !okDst {
			continue
		}
		children[e.Source] = append(children[e.Source], e.Target)
		inDegree[e.Target]++
	}

	levels := make(map[string]int, len(g.Nodes))
	bfs := func(seeds []string) {
		queue := make([]string, 0, len(seeds))
		for _, id := range seeds {
			if _, seen := levels[id]; !seen {
				levels[id] = 0
				queue = append(queue, id)
			}
		}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, child := range children[curr] {
				if _, seen := levels[child]; seen {
					continue
				}
				levels[child] = levels[curr] + 1
				queue = append(queue, child)
			}
		}
	}

	var roots []string
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			roots = append(roots, n.ID)
		}
	}
	bfs(roots)

	for _, n := range g.Nodes {
		if _, seen := levels[n.ID]; !seen {
			bfs([]string{n.ID})
		}
	}
	return levels
}

// HierarchicalPositions lays nodes out in rows by [Levels]. Row members keep
// array order, are spaced evenly along x and centred on 0; y is the level
// times levelHeight.
func HierarchicalPositions(g codegraph.Graph, levelHeight, spacing float64) map[string]codegraph.Point {
	pos := make(map[string]codegraph.Point, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return pos
	}

	levels := Levels(g)
	rows := make(map[int][]string)
	for _, n := range g.Nodes {
		l := levels[n.ID]
		rows[l] = append(rows[l], n.ID)
	}

	for level, ids := range rows {
		off := float64(len(ids)-1) / 2
		for i, id := range ids {
			pos[id] = codegraph.Point{
				X: (float64(i) - off) * spacing,
				Y: float64(level) * levelHeight,
			}
		}
	}
	return pos
}
