package cluster

import (
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/transform"
	"github.com/matzehuels/codegraph/pkg/graph"
)

// fixture builds a snapshot from (id, language) pairs and (source, target) links.
func fixture(nodes [][2]string, links [][2]string) transform.Snapshot {
	raw := graph.RawGraph{Nodes: []graph.RawNode{}, Links: []graph.RawLink{}}
	for _, n := range nodes {
		raw.Nodes = append(raw.Nodes, graph.RawNode{ID: n[0], Name: n[0], Language: n[1]})
	}
	for _, l := range links {
		raw.Links = append(raw.Links, graph.RawLink{Source: graph.Endpoint(l[0]), Target: graph.Endpoint(l[1]), Relationship: "calls"})
	}
	return transform.Normalize(raw, transform.Options{})
}

func nodeIDs(g codegraph.Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func edgeSet(g codegraph.Graph) map[[2]string]float64 {
	out := make(map[[2]string]float64)
	for _, e := range g.Edges {
		out[[2]string{e.Source, e.Target}] += e.Weight
	}
	return out
}

func TestClusterFiveNodes(t *testing.T) {
	snap := fixture([][2]string{
		{"a", "js"}, {"b", "js"}, {"c", "js"}, {"d", "js"}, {"e", "py"},
	}, nil)

	got := Cluster(snap.Graph, Options{MinSize: 3})

	if got.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2 (%v)", got.NodeCount(), nodeIDs(got))
	}
	if want := []string{"e", "cluster:js"}; !slices.Equal(nodeIDs(got), want) {
		t.Errorf("ids = %v, want %v", nodeIDs(got), want)
	}
	c, _ := got.NodeByID("cluster:js")
	if !c.IsCluster || c.Size != 4 || c.Kind != codegraph.KindCluster || c.Language != "js" {
		t.Errorf("cluster = %+v", c)
	}
	if !slices.Equal(c.MemberIDs, []string{"a", "b", "c", "d"}) {
		t.Errorf("MemberIDs = %v", c.MemberIDs)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestClusterRedirectsCrossLanguageEdge(t *testing.T) {
	snap := fixture(
		[][2]string{{"A", "python"}, {"B", "js"}, {"c", "js"}, {"d", "js"}, {"e", "js"}},
		[][2]string{{"A", "B"}},
	)

	got := Cluster(snap.Graph, Options{})

	if got.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", got.EdgeCount())
	}
	if e := got.Edges[0]; e.Source != "A" || e.Target != "cluster:js" {
		t.Errorf("edge = %s→%s, want A→cluster:js", e.Source, e.Target)
	}
}

func TestClusterEdgeHandling(t *testing.T) {
	snap := fixture(
		[][2]string{
			{"j1", "js"}, {"j2", "js"}, {"j3", "js"}, {"j4", "js"},
			{"g1", "go"}, {"g2", "go"}, {"g3", "go"}, {"g4", "go"},
			{"p", "py"}, {"q", "py"},
		},
		[][2]string{
			{"j1", "j2"}, // internal: dropped
			{"p", "j1"},  // redirected
			{"p", "j2"},  // parallel after redirect: merged
			{"j3", "g1"}, // both ends redirected
			{"p", "q"},   // untouched
		},
	)

	got := Cluster(snap.Graph, Options{})

	want := map[[2]string]float64{
		{"p", "cluster:js"}:          2,
		{"cluster:js", "cluster:go"}: 1,
		{"p", "q"}:                   1,
	}
	if es := edgeSet(got); !reflect.DeepEqual(es, want) {
		t.Errorf("edges = %v, want %v", es, want)
	}
	for _, e := range got.Edges {
		if e.Source == e.Target {
			t.Errorf("self-loop on %s", e.Source)
		}
	}
	if got.NodeCount() > snap.Graph.NodeCount() {
		t.Error("clustering increased node count")
	}
}

func TestClusterIdempotentBelowThreshold(t *testing.T) {
	snap := fixture(
		[][2]string{{"a", "js"}, {"b", "js"}, {"c", "js"}, {"d", "py"}},
		[][2]string{{"a", "d"}},
	)

	got := Cluster(snap.Graph, Options{MinSize: 3})

	if !reflect.DeepEqual(got, snap.Graph) {
		t.Errorf("Cluster changed a graph with no qualifying group:\n got %+v\nwant %+v", got, snap.Graph)
	}
	if len(got.Clusters()) != 0 {
		t.Error("cluster nodes created")
	}
}

func TestClusterDoesNotModifyInput(t *testing.T) {
	snap := fixture([][2]string{{"a", "js"}, {"b", "js"}, {"c", "js"}, {"d", "js"}}, [][2]string{{"a", "b"}})
	before := snap.Graph.Clone()

	_ = Cluster(snap.Graph, Options{})

	if !reflect.DeepEqual(before, snap.Graph) {
		t.Error("input graph was modified")
	}
}

func TestClusterCentroidAndCollision(t *testing.T) {
	g := codegraph.Graph{
		Nodes: []codegraph.Node{
			{ID: "cluster:js", Language: "other"},
			{ID: "a", Language: "js", Position: codegraph.Point{X: 0, Y: 0}, Positioned: true},
			{ID: "b", Language: "js", Position: codegraph.Point{X: 10, Y: 20}, Positioned: true},
			{ID: "c", Language: "js"},
			{ID: "d", Language: "js"},
		},
		Edges: []codegraph.Edge{},
	}

	got := Cluster(g, Options{})

	c, ok := got.NodeByID("cluster:js#2")
	if !ok {
		t.Fatalf("expected suffixed id, got %v", nodeIDs(got))
	}
	if !c.Positioned || c.Position != (codegraph.Point{X: 5, Y: 10}) {
		t.Errorf("Position = %+v (positioned=%v), want centroid {5 10}", c.Position, c.Positioned)
	}
}

func TestClusterSkipsExistingClusters(t *testing.T) {
	snap := fixture([][2]string{
		{"a", "js"}, {"b", "js"}, {"c", "js"}, {"d", "js"},
	}, nil)
	once := Cluster(snap.Graph, Options{})
	twice := Cluster(once, Options{MinSize: 0})

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-clustering changed the graph: %v", nodeIDs(twice))
	}
}

func TestExpandRoundTrip(t *testing.T) {
	snap := fixture(
		[][2]string{
			{"a", "js"}, {"b", "js"}, {"c", "js"}, {"d", "js"},
			{"x", "py"},
			{"g1", "go"}, {"g2", "go"}, {"g3", "go"}, {"g4", "go"},
		},
		[][2]string{{"a", "b"}, {"x", "a"}, {"x", "c"}, {"d", "x"}, {"a", "g1"}, {"g2", "g3"}},
	)

	clustered := Cluster(snap.Graph, Options{})
	clustered = clustered.WithPositions(map[string]codegraph.Point{"cluster:js": {X: 100, Y: -50}})

	got := Expand(clustered, "cluster:js", snap)

	for _, id := range []string{"a", "b", "c", "d"} {
		n, ok := got.NodeByID(id)
		if !ok {
			t.Fatalf("member %s not restored", id)
		}
		orig, _ := snap.Node(id)
		if n.Name != orig.Name || n.Language != orig.Language || n.Size != orig.Size {
			t.Errorf("member %s = %+v, want fields of %+v", id, n, orig)
		}
		if !n.Positioned {
			t.Errorf("member %s not seeded", id)
		}
		if dx, dy := n.Position.X-100, n.Position.Y+50; dx*dx+dy*dy > 100*100 {
			t.Errorf("member %s seeded far from cluster: %+v", id, n.Position)
		}
	}
	if got.HasNode("cluster:js") {
		t.Error("expanded cluster still present")
	}
	if !got.HasNode("cluster:go") {
		t.Error("other cluster was expanded")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	want := map[[2]string]float64{
		{"a", "b"}:          1,
		{"x", "a"}:          1,
		{"x", "c"}:          1,
		{"d", "x"}:          1,
		{"a", "cluster:go"}: 1,
	}
	if es := edgeSet(got); !reflect.DeepEqual(es, want) {
		t.Errorf("edges = %v, want %v", es, want)
	}
}

func TestExpandAllRestoresSnapshot(t *testing.T) {
	snap := fixture(
		[][2]string{
			{"a", "js"}, {"b", "js"}, {"c", "js"}, {"d", "js"},
			{"g1", "go"}, {"g2", "go"}, {"g3", "go"}, {"g4", "go"},
		},
		[][2]string{{"a", "g1"}, {"g1", "a"}, {"b", "c"}},
	)

	got := ExpandAll(Cluster(snap.Graph, Options{}), snap)

	gotIDs, wantIDs := nodeIDs(got), nodeIDs(snap.Graph)
	slices.Sort(gotIDs)
	slices.Sort(wantIDs)
	if !slices.Equal(gotIDs, wantIDs) {
		t.Errorf("ids = %v, want %v", gotIDs, wantIDs)
	}
	if !reflect.DeepEqual(edgeSet(got), edgeSet(snap.Graph)) {
		t.Errorf("edges = %v, want %v", edgeSet(got), edgeSet(snap.Graph))
	}
}

func TestRepeatedToggles(t *testing.T) {
	snap := fixture(
		[][2]string{{"a", "js"}, {"b", "js"}, {"c", "js"}, {"d", "js"}, {"x", "py"}},
		[][2]string{{"x", "a"}, {"b", "x"}},
	)

	g := snap.Graph
	for i := 0; i < 3; i++ {
		g = Expand(Cluster(g, Options{}), "cluster:js", snap)
	}

	if !reflect.DeepEqual(edgeSet(g), edgeSet(snap.Graph)) {
		t.Errorf("edges drifted: %v", edgeSet(g))
	}
	if g.NodeCount() != snap.Graph.NodeCount() {
		t.Errorf("NodeCount = %d, want %d", g.NodeCount(), snap.Graph.NodeCount())
	}
}

func TestExpandNoOp(t *testing.T) {
	snap := fixture([][2]string{{"a", "js"}, {"b", "py"}}, [][2]string{{"a", "b"}})
	g := snap.Graph
	g.Nodes = append(g.Nodes, codegraph.Node{ID: "cluster:empty", IsCluster: true})

	tests := []struct {
		name string
		id   string
	}{
		{"Missing", "cluster:nope"},
		{"NotACluster", "a"},
		{"NoMembers", "cluster:empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(g, tt.id, snap)
			if !reflect.DeepEqual(nodeIDs(got), nodeIDs(g)) || got.EdgeCount() != g.EdgeCount() {
				t.Errorf("Expand(%q) changed the graph", tt.id)
			}
		})
	}
}
