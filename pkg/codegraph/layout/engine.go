package layout

import (
	"math"

	"github.com/matzehuels/codegraph/pkg/codegraph"
)

// Default geometry.
const (
	DefaultRadiusFactor = 50.0
	DefaultLevelHeight  = 100.0
	DefaultNodeSpacing  = 100.0
	DefaultCellSize     = 100.0
)

// Options holds the geometry constants of the non-force strategies.
// Zero values select the defaults.
type Options struct {
	RadiusFactor float64 // circular: r = RadiusFactor·√N
	LevelHeight  float64 // hierarchical: vertical distance between levels
	NodeSpacing  float64 // hierarchical: horizontal distance within a level
	CellSize     float64 // grid: cell width and height
}

// WithDefaults returns o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.RadiusFactor <= 0 {
		o.RadiusFactor = DefaultRadiusFactor
	}
	if o.LevelHeight <= 0 {
		o.LevelHeight = DefaultLevelHeight
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	return o
}

// Engine applies layout strategies and keeps a [Simulation] informed.
type Engine struct {
	sim  Simulation
	opts Options
}

// New returns an Engine driving sim. A nil sim is replaced by [NopSimulation].
func New(sim Simulation, opts Options) *Engine {
	if sim == nil {
		sim = NopSimulation{}
	}
	return &Engine{sim: sim, opts: opts.WithDefaults()}
}

// Simulation returns the simulation the engine drives.
func (e *Engine) Simulation() Simulation { return e.sim }

// Apply returns a copy of g with every node positioned by strategy.
//
// For the force strategy the simulation is reheated and its reported
// positions applied. For the others positions are computed here, pushed to
// the simulation, and the simulation is reheated. An empty graph is returned
// as is without touching the simulation.
func (e *Engine) Apply(g codegraph.Graph, strategy Strategy) (codegraph.Graph, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return codegraph.Graph{}, err
	}
	if g.Empty() {
		return g.Clone(), nil
	}

	if strategy == Force {
		e.sim.Reheat(g)
		return g.WithPositions(e.sim.Positions()), nil
	}

	pos := e.Compute(g, strategy)
	out := g.WithPositions(pos)
	e.sim.SetPositions(pos)
	e.sim.Reheat(out)
	return out, nil
}

// Reheat signals a structural change made outside a layout run, such as a
// cluster expansion. Positions already on g are pushed to the simulation
// first so the new nodes start from their seeded positions.
func (e *Engine) Reheat(g codegraph.Graph) {
	if g.Empty() {
		return
	}
	e.sim.SetPositions(g.Positions())
	e.sim.Reheat(g)
}

// Compute returns the positions strategy assigns to g without applying them
// or involving the simulation. The force strategy has no positions of its
// own and yields nil.
func (e *Engine) Compute(g codegraph.Graph, strategy Strategy) map[string]codegraph.Point {
	switch strategy {
	case Circular:
		return CircularPositions(g, e.opts.RadiusFactor)
	case Hierarchical:
		return HierarchicalPositions(g, e.opts.LevelHeight, e.opts.NodeSpacing)
	case Grid:
		return GridPositions(g, e.opts.CellSize)
	default:
		return nil
	}
}

// CircularPositions places node i at angle i·2π/N on a circle of radius
// factor·√N.
func CircularPositions(g codegraph.Graph, factor float64) map[string]codegraph.Point {
	n := len(g.Nodes)
	pos := make(map[string]codegraph.Point, n)
	if n == 0 {
		return pos
	}
	r := factor * math.Sqrt(float64(n))
	for i, node := range g.Nodes {
		theta := float64(i) * 2 * math.Pi / float64(n)
		pos[node.ID] = codegraph.Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}
	return pos
}

// GridPositions fills ceil(√N) columns row by row with cells of the given
// size, centring the whole grid on the origin.
func GridPositions(g codegraph.Graph, cell float64) map[string]codegraph.Point {
	n := len(g.Nodes)
	pos := make(map[string]codegraph.Point, n)
	if n == 0 {
		return pos
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	offX := float64(cols-1) / 2
	offY := float64(rows-1) / 2
	for i, node := range g.Nodes {
		col, row := i%cols, i/cols
		pos[node.ID] = codegraph.Point{
			X: (float64(col) - offX) * cell,
			Y: (float64(row) - offY) * cell,
		}
	}
	return pos
}
