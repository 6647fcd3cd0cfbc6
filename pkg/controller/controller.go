package controller

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/cluster"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/codegraph/search"
	"github.com/matzehuels/codegraph/pkg/codegraph/transform"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

var (
	// ErrSuperseded is returned by a fetch whose response arrived after the
	// filters changed again. The response is discarded.
	ErrSuperseded = errors.New("fetch superseded by newer filters")

	// ErrNoFilters is returned by Retry and Refresh before anything was loaded.
	ErrNoFilters = errors.New("nothing loaded yet")
)

// Options configures a [Controller].
type Options struct {
	// Source supplies graph payloads. Required.
	Source pipeline.Source

	// Engine positions nodes and drives the force simulation. Defaults to
	// an engine over [layout.NopSimulation].
	Engine *layout.Engine

	// Strategy is the initial layout strategy. Defaults to force.
	Strategy layout.Strategy

	// InferLanguage fills missing languages from file extensions.
	InferLanguage bool

	// Logger receives fetch failures and transitions. Defaults to discard.
	Logger *log.Logger
}

// Controller owns the current graph and applies user events to it one at a
// time. Every event replaces the graph value wholesale; published graphs are
// never modified.
//
// A Controller is safe for concurrent use. The fetch is the only operation
// that runs without the lock held; when it returns, its result is applied only
// if no newer fetch was issued in the meantime.
type Controller struct {
	src           pipeline.Source
	engine        *layout.Engine
	logger        *log.Logger
	inferLanguage bool

	mu         sync.Mutex
	state      State
	err        error
	filters    Filters
	hasFilters bool
	gen        uint64
	snap       transform.Snapshot
	graph      codegraph.Graph
	query      string
	strategy   layout.Strategy

	notifyMu sync.Mutex
	subs     map[int]func(Event)
	nextSub  int
	pending  []Event
}

// New returns an idle controller.
func New(opts Options) *Controller {
	if opts.Engine == nil {
		opts.Engine = layout.New(nil, layout.Options{})
	}
	if opts.Strategy == "" {
		opts.Strategy = layout.DefaultStrategy
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Controller{
		src:           opts.Source,
		engine:        opts.Engine,
		logger:        opts.Logger,
		inferLanguage: opts.InferLanguage,
		graph:         emptyGraph(),
		strategy:      opts.Strategy,
		subs:          make(map[int]func(Event)),
	}
}

// =============================================================================
// Events
// =============================================================================

// Load fetches the graph for f and runs the full pipeline on it.
func (c *Controller) Load(ctx context.Context, f Filters) error {
	return c.fetch(ctx, f, false)
}

// SetFilters applies changed filters: refetch, normalize, cluster when
// enabled, lay out, and re-apply the current search.
func (c *Controller) SetFilters(ctx context.Context, f Filters) error {
	return c.fetch(ctx, f, false)
}

// Retry re-issues the fetch for the current filters.
func (c *Controller) Retry(ctx context.Context) error {
	f, ok := c.currentFilters()
	if !ok {
		return ErrNoFilters
	}
	return c.fetch(ctx, f, false)
}

// Refresh re-issues the fetch for the current filters, bypassing the cache.
func (c *Controller) Refresh(ctx context.Context) error {
	f, ok := c.currentFilters()
	if !ok {
		return ErrNoFilters
	}
	return c.fetch(ctx, f, true)
}

// Search sets the query and re-highlights the current graph. Nothing is
// refetched, clustered or laid out. While a fetch is in flight the query is
// recorded and applied when the fetch completes.
func (c *Controller) Search(query string) {
	c.mu.Lock()
	c.query = query
	if c.state == Ready {
		c.transition(Searching, nil)
		c.graph = search.Highlight(c.graph, query)
		c.transition(Ready, nil)
	}
	c.mu.Unlock()
	c.flush()
}

// SetLayout switches the layout strategy and re-runs only the layout. While
// a fetch is in flight the strategy is recorded and used when it completes.
func (c *Controller) SetLayout(ctx context.Context, name string) error {
	strategy, err := layout.ParseStrategy(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.strategy = strategy
	if c.state == Ready {
		c.transition(LayoutChanging, nil)
		g, err := pipeline.Layout(ctx, c.engine, c.graph, strategy)
		if err == nil {
			c.graph = g
		}
		c.transition(Ready, nil)
		c.mu.Unlock()
		c.flush()
		return err
	}
	c.mu.Unlock()
	c.flush()
	return nil
}

// ClickNode expands the node if it is a cluster and reports whether the graph
// changed. Clicks on ordinary nodes, memberless clusters and unknown ids are
// no-ops, as is any click while not Ready.
func (c *Controller) ClickNode(id string) bool {
	c.mu.Lock()
	if c.state != Ready {
		c.mu.Unlock()
		return false
	}
	n, ok := c.graph.NodeByID(id)
	if !ok || !n.IsCluster || len(n.MemberIDs) == 0 {
		c.mu.Unlock()
		return false
	}

	g := cluster.Expand(c.graph, id, c.snap)
	g = search.Highlight(g, c.query)
	c.engine.Reheat(g)
	if c.strategy == layout.Force {
		g = g.WithPositions(c.engine.Simulation().Positions())
	}
	c.graph = g
	c.logger.Debug("expanded cluster", "cluster", id, "members", len(n.MemberIDs))
	c.emit(Event{From: Ready, To: Ready, Graph: g, Reheat: true})
	c.mu.Unlock()
	c.flush()
	return true
}

// UpdatePositions records positions reported by the renderer once its
// simulation settled. Unknown ids are ignored. It returns the number of
// nodes updated and emits no event.
func (c *Controller) UpdatePositions(pos map[string]codegraph.Point) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return 0
	}
	known := make(map[string]codegraph.Point, len(pos))
	for _, n := range c.graph.Nodes {
		if p, ok := pos[n.ID]; ok {
			known[n.ID] = p
		}
	}
	if len(known) > 0 {
		c.graph = c.graph.WithPositions(known)
	}
	return len(known)
}

// =============================================================================
// Accessors
// =============================================================================

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that put the controller in the Error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Graph returns the current graph. The caller must not modify it.
func (c *Controller) Graph() codegraph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph
}

// Render returns the current graph in the renderer's wire format.
func (c *Controller) Render() graph.RenderGraph {
	return graph.FromGraph(c.Graph())
}

// Snapshot returns the normalized payload of the last successful fetch.
func (c *Controller) Snapshot() transform.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Filters returns the current filters.
func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.clone()
}

// Query returns the current search query.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Strategy returns the current layout strategy.
func (c *Controller) Strategy() layout.Strategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy
}

// Subscribe registers fn to receive every event in order and returns a
// function that removes it. fn runs on the goroutine that caused the event.
// It may read controller state through the accessors but must not issue
// events of its own.
func (c *Controller) Subscribe(fn func(Event)) (cancel func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()
		delete(c.subs, id)
	}
}

// =============================================================================
// Internals
// =============================================================================

func (c *Controller) fetch(ctx context.Context, f Filters, refresh bool) error {
	if c.src == nil {
		return cgerrors.New(cgerrors.ErrCodeInternal, "controller has no source")
	}
	f = withDefaults(f)
	if err := f.Query().Validate(); err != nil {
		return err
	}
	if f.MinSize < 1 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "minSize must be at least 1, got %d", f.MinSize)
	}

	c.mu.Lock()
	prev := c.saved()
	c.gen++
	gen := c.gen
	c.filters = f.clone()
	c.hasFilters = true
	next := Loading
	if c.state == Ready || c.state == Filtering {
		next = Filtering
	}
	c.transition(next, nil)
	opts := c.pipelineOptions(f, refresh)
	c.mu.Unlock()
	c.flush()

	snap, err := pipeline.Fetch(ctx, c.src, opts)

	c.mu.Lock()
	if gen != c.gen || !f.Equal(c.filters) {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded fetch", "project", f.Project, "generation", gen)
		return ErrSuperseded
	}
	if err == nil {
		// The query and strategy may have changed while fetching.
		opts.Search = c.query
		opts.Layout = string(c.strategy)
		var g codegraph.Graph
		g, err = pipeline.Arrange(ctx, c.engine, snap, opts)
		if err == nil {
			c.snap, c.graph, c.err = snap, g, nil
			c.transition(Ready, nil)
			c.mu.Unlock()
			c.flush()
			c.logger.Debug("graph ready", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "clusters", len(g.Clusters()))
			return nil
		}
	}

	if errors.Is(err, context.Canceled) {
		// An abandoned fetch is not a backend failure.
		c.restore(prev)
		c.mu.Unlock()
		c.flush()
		c.logger.Debug("fetch abandoned", "project", f.Project, "generation", gen)
		return err
	}

	c.snap = transform.Snapshot{}
	c.graph = emptyGraph()
	c.err = err
	c.transition(Error, err)
	c.mu.Unlock()
	c.flush()
	c.logger.Error("graph load failed", "project", f.Project, "error", err)
	return err
}

// savedState is what a fetch replaces before it knows its outcome.
type savedState struct {
	state      State
	filters    Filters
	hasFilters bool
	snap       transform.Snapshot
	graph      codegraph.Graph
	err        error
}

// saved captures the state a fetch may need to roll back to. Callers hold mu.
func (c *Controller) saved() savedState {
	return savedState{c.state, c.filters.clone(), c.hasFilters, c.snap, c.graph, c.err}
}

// restore rolls back to s and announces the transition. Callers hold mu.
func (c *Controller) restore(s savedState) {
	c.filters, c.hasFilters = s.filters, s.hasFilters
	c.snap, c.graph, c.err = s.snap, s.graph, s.err
	c.transition(s.state, s.err)
}

func (c *Controller) currentFilters() (Filters, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.clone(), c.hasFilters
}

func (c *Controller) pipelineOptions(f Filters, refresh bool) pipeline.Options {
	q := f.Query()
	return pipeline.Options{
		Project:       q.Project,
		View:          q.View,
		Threshold:     q.Threshold,
		Limit:         q.Limit,
		Languages:     q.Languages,
		Refresh:       refresh,
		InferLanguage: c.inferLanguage,
		Cluster:       f.Cluster,
		MinSize:       f.MinSize,
		Layout:        string(c.strategy),
		Search:        c.query,
		Logger:        c.logger,
	}
}

// transition moves to the given state and queues an event. Callers hold mu.
func (c *Controller) transition(to State, err error) {
	ev := Event{From: c.state, To: to, Graph: c.graph, Err: err}
	c.state = to
	c.emit(ev)
}

// emit queues ev for delivery. Callers hold mu.
func (c *Controller) emit(ev Event) {
	c.pending = append(c.pending, ev)
}

// flush delivers queued events in order. Callers must not hold mu.
func (c *Controller) flush() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	events := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, ev := range events {
		for _, fn := range c.subs {
			fn(ev)
		}
	}
}

func withDefaults(f Filters) Filters {
	q := f.Query()
	f.View, f.Limit = q.View, q.Limit
	if f.MinSize == 0 {
		f.MinSize = cluster.DefaultMinSize
	}
	return f
}

func emptyGraph() codegraph.Graph {
	return codegraph.Graph{Nodes: []codegraph.Node{}, Edges: []codegraph.Edge{}}
}
