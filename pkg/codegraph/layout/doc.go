// Package layout assigns 2D positions to graph nodes.
//
// # Strategies
//
// Four interchangeable strategies are supported. Switching strategy always
// recomputes every position; nothing is adjusted incrementally.
//
//   - [Force]: delegated to a [Simulation]. The engine asks it to reheat and
//     reads back whatever positions it reports.
//   - [Circular]: node i of N sits at angle i·2π/N on a circle of radius
//     50·√N, in array order.
//   - [Hierarchical]: nodes without incoming edges are roots. A breadth-first
//     search from all roots assigns each node the depth at which it is first
//     discovered. Nodes sharing a level are spaced evenly along x, centred on
//     0, and y grows with the level.
//   - [Grid]: ceil(√N) columns, filled row by row, centred on the origin.
//
// # Simulation
//
// The physics engine lives outside this package, behind the [Simulation]
// interface. After any layout, and after any structural change made outside
// a layout run (see [Engine.Reheat]), the engine asks the simulation to
// reheat so the rendered view settles the same way regardless of strategy.
// [NopSimulation] and [RecordingSimulation] serve headless use and tests.
//
// # Empty Graphs
//
// Every strategy treats N = 0 as a no-op and returns the empty graph; none
// of them divides by the node count without checking it first.
package layout
