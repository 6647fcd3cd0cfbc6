// Package render groups the graph renderers.
//
// The [nodelink] subpackage turns a positioned code graph into Graphviz DOT
// and SVG, and runs the fdp-backed force simulation used when no browser
// renderer is attached.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderGraphSVG(ctx, g, nodelink.Options{})
//
// [nodelink]: github.com/matzehuels/codegraph/pkg/render/nodelink
package render
