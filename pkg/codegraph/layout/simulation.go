package layout

import (
	"maps"
	"sync"

	"github.com/matzehuels/codegraph/pkg/codegraph"
)

// Simulation is the force-directed physics collaborator.
//
// Reheat asks it to re-run its settling iterations for g. Positions reports
// the positions it currently holds, and SetPositions seeds them. A
// simulation that settles asynchronously may return the pre-settle positions
// from Positions; callers treat whatever it reports as current.
type Simulation interface {
	Reheat(g codegraph.Graph)
	Positions() map[string]codegraph.Point
	SetPositions(pos map[string]codegraph.Point)
}

// NopSimulation ignores every request and reports no positions.
// Under it the force strategy leaves positions as they were.
type NopSimulation struct{}

func (NopSimulation) Reheat(codegraph.Graph)                  {}
func (NopSimulation) Positions() map[string]codegraph.Point   { return nil }
func (NopSimulation) SetPositions(map[string]codegraph.Point) {}

// RecordingSimulation keeps the last seeded positions and counts reheats.
// It is safe for concurrent use.
type RecordingSimulation struct {
	mu      sync.Mutex
	pos     map[string]codegraph.Point
	last    codegraph.Graph
	reheats int
}

// Reheat records g as the last graph seen.
func (s *RecordingSimulation) Reheat(g codegraph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reheats++
	s.last = g
}

// Positions returns a copy of the seeded positions.
func (s *RecordingSimulation) Positions() map[string]codegraph.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.pos)
}

// SetPositions replaces the held positions.
func (s *RecordingSimulation) SetPositions(pos map[string]codegraph.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = maps.Clone(pos)
}

// Reheats returns the number of reheat requests received.
func (s *RecordingSimulation) Reheats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reheats
}

// LastGraph returns the graph passed to the most recent Reheat.
func (s *RecordingSimulation) LastGraph() codegraph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
