package server

import (
	"maps"
	"sync"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/graph"
)

// Websocket message types.
const (
	MsgGraph     = "graph"
	MsgReheat    = "reheat"
	MsgPositions = "positions"
	MsgError     = "error"
)

// RemoteSimulation is a [layout.Simulation] run by the browser renderer.
// Reheats and seeded positions are broadcast to every client; positions the
// renderer reports after settling are recorded with [RemoteSimulation.Report].
type RemoteSimulation struct {
	hub *Hub

	mu      sync.Mutex
	pos     map[string]codegraph.Point
	reheats int
}

var _ layout.Simulation = (*RemoteSimulation)(nil)

// NewRemoteSimulation returns a simulation that talks to hub's clients.
func NewRemoteSimulation(hub *Hub) *RemoteSimulation {
	return &RemoteSimulation{hub: hub, pos: make(map[string]codegraph.Point)}
}

// Reheat asks the renderers to re-run their force simulation on g.
func (s *RemoteSimulation) Reheat(g codegraph.Graph) {
	s.mu.Lock()
	s.reheats++
	s.mu.Unlock()
	s.hub.Broadcast(MsgReheat, graph.FromGraph(g))
}

// Positions returns the last positions seeded or reported.
func (s *RemoteSimulation) Positions() map[string]codegraph.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.pos)
}

// SetPositions replaces the held positions and pushes them to the renderers.
func (s *RemoteSimulation) SetPositions(pos map[string]codegraph.Point) {
	s.mu.Lock()
	s.pos = maps.Clone(pos)
	if s.pos == nil {
		s.pos = make(map[string]codegraph.Point)
	}
	s.mu.Unlock()
	s.hub.Broadcast(MsgPositions, pos)
}

// Report merges positions a renderer settled on. Nothing is broadcast.
func (s *RemoteSimulation) Report(pos map[string]codegraph.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.pos, pos)
}

// Reheats returns how many times the simulation was reheated.
func (s *RemoteSimulation) Reheats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reheats
}
