package nodelink

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
)

// pointsPerInch converts Graphviz "plain" output coordinates to points.
const pointsPerInch = 72.0

// Simulation settles positions with Graphviz's fdp force-directed engine.
// It is the headless stand-in for a browser force simulation: Reheat runs fdp
// to convergence, seeded with the positions it currently holds.
//
// Simulation is safe for concurrent use.
type Simulation struct {
	ctx    context.Context
	logger *log.Logger

	mu  sync.Mutex
	pos map[string]codegraph.Point
	err error
}

var _ layout.Simulation = (*Simulation)(nil)

// NewSimulation returns an fdp-backed simulation. ctx bounds each Graphviz
// run; logger receives failures (nil discards them).
func NewSimulation(ctx context.Context, logger *log.Logger) *Simulation {
	return &Simulation{
		ctx:    ctx,
		logger: logger,
		pos:    make(map[string]codegraph.Point),
	}
}

// Reheat runs fdp over g. Nodes the simulation already knows start from their
// last position; a failed run leaves positions unchanged and is reported by
// [Simulation.Err].
func (s *Simulation) Reheat(g codegraph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.Empty() {
		s.pos = make(map[string]codegraph.Point)
		s.err = nil
		return
	}

	pos, err := settle(s.ctx, g, s.pos)
	if err != nil {
		s.err = err
		if s.logger != nil {
			s.logger.Warn("force settle failed", "nodes", g.NodeCount(), "error", err)
		}
		return
	}
	s.pos = pos
	s.err = nil
}

// Positions returns a copy of the settled positions.
func (s *Simulation) Positions() map[string]codegraph.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]codegraph.Point, len(s.pos))
	for id, p := range s.pos {
		out[id] = p
	}
	return out
}

// SetPositions replaces the seed positions used by the next Reheat.
func (s *Simulation) SetPositions(pos map[string]codegraph.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = make(map[string]codegraph.Point, len(pos))
	for id, p := range pos {
		s.pos[id] = p
	}
}

// Err returns the error from the last Reheat, if any.
func (s *Simulation) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func settle(ctx context.Context, g codegraph.Graph, seed map[string]codegraph.Point) (map[string]codegraph.Point, error) {
	dot, names := forceDOT(g, seed)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.FDP)

	pg, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer pg.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, pg, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return parsePlain(buf.Bytes(), names)
}

// forceDOT writes g with synthetic node names (n0, n1, ...) so arbitrary ids
// survive the round trip through the plain output format.
func forceDOT(g codegraph.Graph, seed map[string]codegraph.Point) (string, map[string]string) {
	names := make(map[string]string, len(g.Nodes))
	idx := make(map[string]string, len(g.Nodes))

	var buf bytes.Buffer
	buf.WriteString("graph F {\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  node [shape=point];\n")
	for i, n := range g.Nodes {
		name := "n" + strconv.Itoa(i)
		names[name] = n.ID
		idx[n.ID] = name
		if p, ok := seed[n.ID]; ok {
			fmt.Fprintf(&buf, "  %s [pos=\"%s,%s\"];\n", name, fmtFloat(p.X), fmtFloat(-p.Y))
		} else {
			fmt.Fprintf(&buf, "  %s;\n", name)
		}
	}
	for _, e := range g.Edges {
		src, ok1 := idx[e.Source]
		dst, ok2 := idx[e.Target]
		if !ok1 || !ok2 || src == dst {
			continue
		}
		fmt.Fprintf(&buf, "  %s -- %s [weight=%s];\n", src, dst, fmtFloat(edgeWidth(e.Weight)))
	}
	buf.WriteString("}\n")
	return buf.String(), names
}

// parsePlain reads node coordinates from Graphviz "plain" output:
//
//	node <name> <x> <y> <width> <height> ...
//
// Coordinates are in inches with y growing upwards; they are returned in
// points with y growing downwards, matching the layout engine.
func parsePlain(data []byte, names map[string]string) (map[string]codegraph.Point, error) {
	out := make(map[string]codegraph.Point, len(names))
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] != "node" {
			continue
		}
		id, ok := names[fields[1]]
		if !ok {
			continue
		}
		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("node %s: x: %w", fields[1], err)
		}
		y, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("node %s: y: %w", fields[1], err)
		}
		out[id] = codegraph.Point{X: x * pointsPerInch, Y: -y * pointsPerInch}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(names) {
		return nil, fmt.Errorf("layout placed %d of %d nodes", len(out), len(names))
	}
	return out, nil
}
