// Package nodelink renders code graphs as node-link diagrams with Graphviz.
//
// # Overview
//
// This package is the headless rendering side of codegraph. It produces
// Graphviz DOT from a working graph, renders it to SVG in-process, and
// provides a force [Simulation] backed by Graphviz's fdp engine for use
// where no browser renderer is attached (CLI, tests, server fallback).
//
// # Usage
//
// Convert a laid-out graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Engine(g))
//
// Plug the fdp simulation into the layout engine:
//
//	sim := nodelink.NewSimulation(ctx, logger)
//	engine := layout.New(sim, layout.Options{})
//	g, err := engine.Apply(g, layout.Force)
//
// # DOT Format
//
// Node colours come from the palette package, so DOT, SVG and the JSON
// render graph agree. Positioned nodes carry pinned pos attributes in points
// and are rendered with neato; unpositioned graphs fall back to dot.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process layout and
// rendering; no Graphviz installation is required.
package nodelink
