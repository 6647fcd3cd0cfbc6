package search

import (
	"slices"
	"testing"

	"github.com/matzehuels/codegraph/pkg/codegraph"
)

func named(names ...string) codegraph.Graph {
	g := codegraph.Graph{Edges: []codegraph.Edge{}}
	for _, n := range names {
		g.Nodes = append(g.Nodes, codegraph.Node{ID: n, Name: n, Language: "js"})
	}
	return g
}

func flags(g codegraph.Graph) []bool {
	out := make([]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Highlighted
	}
	return out
}

func TestHighlightParse(t *testing.T) {
	g := named("parseJSON", "render", "parseXML")

	got := Highlight(g, "parse")

	if want := []bool{true, false, true}; !slices.Equal(flags(got), want) {
		t.Errorf("flags = %v, want %v", flags(got), want)
	}
	if !got.Nodes[1].Dimmed || got.Nodes[0].Dimmed {
		t.Error("Dimmed should mirror non-matches")
	}
}

func TestHighlightFields(t *testing.T) {
	g := codegraph.Graph{Nodes: []codegraph.Node{
		{ID: "1", Name: "main", FilePath: "cmd/Server/main.go", Language: "go"},
		{ID: "2", Name: "helper", Language: "Python"},
		{ID: "3", Name: "other", Language: "rust"},
	}}

	tests := []struct {
		query string
		want  []bool
	}{
		{"server", []bool{true, false, false}},
		{"PYTHON", []bool{false, true, false}},
		{"  MAIN  ", []bool{true, false, false}},
		{"zzz", []bool{false, false, false}},
	}
	for _, tt := range tests {
		if got := flags(Highlight(g, tt.query)); !slices.Equal(got, tt.want) {
			t.Errorf("Highlight(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestHighlightClustersExempt(t *testing.T) {
	g := named("parse")
	g.Nodes = append(g.Nodes, codegraph.Node{ID: "cluster:js", Name: "parse cluster", IsCluster: true, MemberIDs: []string{"x"}})

	got := Highlight(g, "parse")

	c := got.Nodes[1]
	if c.Highlighted || c.Dimmed {
		t.Errorf("cluster flags = highlighted:%v dimmed:%v", c.Highlighted, c.Dimmed)
	}
}

func TestBlankQueryClears(t *testing.T) {
	g := Highlight(named("a", "b"), "a")
	cleared := Highlight(g, "   ")
	for _, n := range cleared.Nodes {
		if n.Highlighted || n.Dimmed {
			t.Errorf("%s still flagged", n.ID)
		}
	}
}

func TestHighlightPreservesCounts(t *testing.T) {
	g := named("a", "b", "c")
	g.Edges = []codegraph.Edge{{Source: "a", Target: "b", Weight: 1}, {Source: "b", Target: "c", Weight: 1}}

	got := Highlight(g, "b")
	if got.NodeCount() != 3 || got.EdgeCount() != 2 {
		t.Errorf("counts = %d/%d", got.NodeCount(), got.EdgeCount())
	}
	if g.Nodes[1].Highlighted {
		t.Error("Highlight modified its input")
	}
}

func TestMatches(t *testing.T) {
	g := named("parseJSON", "render", "parseXML")
	var ids []string
	for _, n := range Matches(g, "PARSE") {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []string{"parseJSON", "parseXML"}) {
		t.Errorf("Matches = %v", ids)
	}
	if Matches(g, "") != nil {
		t.Error("blank query should match nothing")
	}
}
