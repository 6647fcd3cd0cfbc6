package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/palette"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes kind, language and file path in node labels.
	// When false, only the node name is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format.
//
// Positioned nodes are pinned at their layout coordinates (in points), so a
// graph rendered after a layout pass keeps the engine's placement. Cluster
// nodes are drawn as double octagons; dimmed nodes are greyed out.
func ToDOT(g codegraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [color=\"#9ca3af\", arrowsize=0.6];\n")
	buf.WriteString("\n")

	present := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		present[n.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n codegraph.Node, detailed bool) string {
	if !detailed || n.IsCluster {
		return n.Name
	}
	parts := []string{n.Name, fmt.Sprintf("%s · %s", n.Kind, n.Language)}
	if n.FilePath != "" {
		parts = append(parts, n.FilePath)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n codegraph.Node, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", palette.ForNode(n)),
		fmt.Sprintf("width=%s", fmtFloat(nodeWidth(n))),
	}
	if n.IsCluster {
		attrs = append(attrs, "shape=doubleoctagon", "fontcolor=white")
	}
	if n.Highlighted {
		attrs = append(attrs, "penwidth=3")
	}
	if n.Dimmed {
		attrs = append(attrs, "fontcolor=\"#9ca3af\"")
	}
	if n.Positioned {
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.Position.X), fmtFloat(-n.Position.Y)))
	}
	return attrs
}

func edgeAttrs(e codegraph.Edge) []string {
	attrs := []string{fmt.Sprintf("penwidth=%s", fmtFloat(edgeWidth(e.Weight)))}
	if e.Relationship != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", string(e.Relationship)))
	}
	return attrs
}

// nodeWidth scales the node's size weight to inches, capped so hub nodes
// don't swallow the diagram.
func nodeWidth(n codegraph.Node) float64 {
	w := 0.5 + 0.1*n.Size
	if w > 3 {
		w = 3
	}
	return w
}

func edgeWidth(weight float64) float64 {
	if weight < 1 {
		return 1
	}
	if weight > 6 {
		return 6
	}
	return weight
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Engine selects the Graphviz layout used by [RenderSVG].
func Engine(g codegraph.Graph) graphviz.Layout {
	for _, n := range g.Nodes {
		if !n.Positioned {
			return graphviz.DOT
		}
	}
	return graphviz.NEATO
}

// RenderSVG renders a DOT graph to SVG using Graphviz with the given layout
// engine. Use [graphviz.NEATO] for DOT produced from a positioned graph so the
// pinned coordinates are honoured.
func RenderSVG(ctx context.Context, dot string, engine graphviz.Layout) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(engine)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderGraphSVG renders g directly, picking the layout engine with [Engine].
func RenderGraphSVG(ctx context.Context, g codegraph.Graph, opts Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(g, opts), Engine(g))
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
