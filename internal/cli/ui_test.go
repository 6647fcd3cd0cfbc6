package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/codegraph/pkg/codegraph"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		name    string
		stats   graphStats
		want    []string
		notWant []string
	}{
		{"fresh", graphStats{nodes: 12, edges: 30}, []string{"12 nodes", "30 edges", "fresh"}, []string{"clusters", "matches"}},
		{"cached with clusters", graphStats{nodes: 3, clusters: 2, matches: 1, cached: true}, []string{"3 nodes", "2 clusters", "1 matches", "cached"}, []string{"edges"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t)
			printStats(tt.stats)
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out.String(), w) {
					t.Errorf("output %q should not contain %q", out, w)
				}
			}
		})
	}
}

func TestStatusLines(t *testing.T) {
	out := captureStdout(t)
	printSuccess("Rendered %s", "acme")
	printWarning("Dropped %d links", 2)
	printFile("acme.svg")

	got := out.String()
	for _, w := range []string{iconSuccess, "Rendered acme", iconWarning, "Dropped 2 links", iconArrow, "acme.svg"} {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}

func TestNodeTable(t *testing.T) {
	nodes := []codegraph.Node{
		{ID: "cluster:javascript", Name: "javascript (4)", IsCluster: true, Language: "javascript"},
		{ID: "5", Name: "main", Language: "python", FilePath: "app/main.py", Size: 12},
	}
	out := nodeTable(nodes, 1)
	for _, w := range []string{"Name", "◆ javascript (4)", "▸ ", "app/main.py", "12"} {
		if !strings.Contains(out, w) {
			t.Errorf("table missing %q:\n%s", w, out)
		}
	}
}
