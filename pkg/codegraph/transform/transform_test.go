package transform

import (
	"testing"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/graph"
)

func ptr(f float64) *float64 { return &f }

func TestNormalizeNodeDefaults(t *testing.T) {
	tests := []struct {
		name           string
		in             graph.RawNode
		wantName       string
		wantLang       string
		wantComplexity float64
		wantSize       float64
	}{
		{
			name:           "AllMissing",
			in:             graph.RawNode{ID: "a"},
			wantName:       DefaultName,
			wantLang:       DefaultLanguage,
			wantComplexity: 1,
			wantSize:       1,
		},
		{
			name:           "CentralityWins",
			in:             graph.RawNode{ID: "a", Name: "parse", Language: "go", Complexity: ptr(3), Centrality: ptr(7.5)},
			wantName:       "parse",
			wantLang:       "go",
			wantComplexity: 3,
			wantSize:       7.5,
		},
		{
			name:           "ComplexityWins",
			in:             graph.RawNode{ID: "a", Complexity: ptr(4), Centrality: ptr(0.2)},
			wantName:       DefaultName,
			wantLang:       DefaultLanguage,
			wantComplexity: 4,
			wantSize:       4,
		},
		{
			name:           "NegativeComplexityClamped",
			in:             graph.RawNode{ID: "a", Complexity: ptr(-2)},
			wantName:       DefaultName,
			wantLang:       DefaultLanguage,
			wantComplexity: 0,
			wantSize:       1,
		},
		{
			name:           "ExplicitZeroComplexity",
			in:             graph.RawNode{ID: "a", Complexity: ptr(0)},
			wantName:       DefaultName,
			wantLang:       DefaultLanguage,
			wantComplexity: 0,
			wantSize:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NormalizeNode(tt.in, Options{})
			if n.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", n.Name, tt.wantName)
			}
			if n.Language != tt.wantLang {
				t.Errorf("Language = %q, want %q", n.Language, tt.wantLang)
			}
			if n.Complexity != tt.wantComplexity {
				t.Errorf("Complexity = %v, want %v", n.Complexity, tt.wantComplexity)
			}
			if n.Size != tt.wantSize {
				t.Errorf("Size = %v, want %v", n.Size, tt.wantSize)
			}
			if n.IsCluster || n.Positioned || n.Highlighted {
				t.Errorf("unexpected flags on %+v", n)
			}
		})
	}
}

func TestNormalizeNodeKind(t *testing.T) {
	if k := NormalizeNode(graph.RawNode{ID: "a", Type: "class"}, Options{}).Kind; k != codegraph.KindClass {
		t.Errorf("Kind = %q, want class", k)
	}
	if k := NormalizeNode(graph.RawNode{ID: "a", Type: "cluster"}, Options{}).Kind; k != codegraph.KindFunction {
		t.Errorf("raw cluster type should not produce a cluster, got %q", k)
	}
}

func TestInferLanguage(t *testing.T) {
	rn := graph.RawNode{ID: "a", File: "src/Parser.TS"}

	if got := NormalizeNode(rn, Options{}).Language; got != DefaultLanguage {
		t.Errorf("without inference Language = %q", got)
	}
	if got := NormalizeNode(rn, Options{InferLanguage: true}).Language; got != "typescript" {
		t.Errorf("with inference Language = %q, want typescript", got)
	}

	rn.Language = "deno"
	if got := NormalizeNode(rn, Options{InferLanguage: true}).Language; got != "deno" {
		t.Errorf("explicit language overridden: %q", got)
	}

	if got := NormalizeNode(graph.RawNode{ID: "b", File: "Makefile"}, Options{InferLanguage: true}).Language; got != DefaultLanguage {
		t.Errorf("unknown extension Language = %q", got)
	}
}

func TestNormalizeLink(t *testing.T) {
	e := NormalizeLink(graph.RawLink{Source: "a", Target: "b"})
	if e.Weight != 1 || e.Relationship != codegraph.RelReferences {
		t.Errorf("defaults = %+v", e)
	}
	e = NormalizeLink(graph.RawLink{Source: "a", Target: "b", Relationship: "calls", Weight: ptr(0.3)})
	if e.Weight != 1 {
		t.Errorf("sub-unit weight = %v, want 1", e.Weight)
	}
	e = NormalizeLink(graph.RawLink{Source: "a", Target: "b", Weight: ptr(4)})
	if e.Weight != 4 {
		t.Errorf("weight = %v, want 4", e.Weight)
	}
}

func TestNormalizeDropsUnusableRecords(t *testing.T) {
	raw := graph.RawGraph{
		Nodes: []graph.RawNode{
			{ID: "a", Name: "first"},
			{ID: ""},
			{ID: "b"},
			{ID: "a", Name: "second"},
		},
		Links: []graph.RawLink{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "missing"},
		},
	}

	snap := Normalize(raw, Options{})

	want := Stats{Nodes: 2, Edges: 1, DroppedNodes: 2, DroppedEdges: 1, Languages: 1}
	if snap.Stats != want {
		t.Errorf("Stats = %+v, want %+v", snap.Stats, want)
	}
	if n, _ := snap.Node("a"); n.Name != "first" {
		t.Errorf("duplicate id should keep first, got %q", n.Name)
	}
	if err := snap.Graph.Validate(); err != nil {
		t.Errorf("normalized graph invalid: %v", err)
	}
	if len(snap.Raw.Nodes) != 4 {
		t.Error("raw payload should be retained untouched")
	}
}

func TestNormalizeEmpty(t *testing.T) {
	snap := Normalize(graph.RawGraph{}, Options{})
	if !snap.Graph.Empty() || snap.Graph.EdgeCount() != 0 {
		t.Errorf("graph = %+v", snap.Graph)
	}
	if _, ok := snap.Node("x"); ok {
		t.Error("empty snapshot returned a node")
	}
}

func TestSnapshotNodeIsCopy(t *testing.T) {
	snap := Normalize(graph.RawGraph{Nodes: []graph.RawNode{{ID: "a", Name: "x"}}}, Options{})
	n, _ := snap.Node("a")
	n.Name = "mutated"
	if again, _ := snap.Node("a"); again.Name != "x" {
		t.Error("Snapshot.Node leaked a reference into the snapshot")
	}
}
