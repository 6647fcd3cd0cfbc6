package controller

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

// fakeSource serves payloads keyed by project. When gate is set, each fetch
// blocks until it receives from the project's gate channel.
type fakeSource struct {
	mu      sync.Mutex
	graphs  map[string]graph.RawGraph
	errs    map[string]error
	gates   map[string]chan struct{}
	started chan string
	calls   []vectorizer.Query
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		graphs:  make(map[string]graph.RawGraph),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (s *fakeSource) FetchGraph(ctx context.Context, q vectorizer.Query, _ bool) (graph.RawGraph, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	gate := s.gates[q.Project]
	g, err := s.graphs[q.Project], s.errs[q.Project]
	s.mu.Unlock()

	s.started <- q.Project
	if gate != nil {
		<-gate
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return graph.RawGraph{}, ctxErr
	}
	if err != nil {
		return graph.RawGraph{}, err
	}
	return pipeline.FilterRaw(g, q), nil
}

func (s *fakeSource) set(project string, g graph.RawGraph, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[project] = g
	s.errs[project] = err
}

func (s *fakeSource) gate(project string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[project] = ch
	return ch
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func scenario() graph.RawGraph {
	mk := func(id, name, lang string) graph.RawNode {
		return graph.RawNode{ID: id, Name: name, Language: lang}
	}
	return graph.RawGraph{
		Nodes: []graph.RawNode{
			mk("j1", "parseJSON", "javascript"),
			mk("j2", "render", "javascript"),
			mk("j3", "parseXML", "javascript"),
			mk("j4", "mount", "javascript"),
			mk("p1", "main", "python"),
		},
		Links: []graph.RawLink{
			{Source: "p1", Target: "j2", Relationship: "calls"},
			{Source: "j1", Target: "j3"},
		},
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []State
	for _, ev := range r.events {
		out = append(out, ev.To)
	}
	return out
}

func newController(t *testing.T, src pipeline.Source) (*Controller, *recorder, *layout.RecordingSimulation) {
	t.Helper()
	sim := &layout.RecordingSimulation{}
	c := New(Options{
		Source:   src,
		Engine:   layout.New(sim, layout.Options{}),
		Strategy: layout.Grid,
	})
	rec := &recorder{}
	c.Subscribe(rec.record)
	return c, rec, sim
}

func TestLoadRunsFullCycle(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, sim := newController(t, src)

	if c.State() != Idle {
		t.Fatalf("initial state = %v", c.State())
	}
	if err := c.Load(context.Background(), Filters{Project: "acme", Cluster: true}); err != nil {
		t.Fatal(err)
	}

	if got := rec.states(); !slices.Equal(got, []State{Loading, Ready}) {
		t.Errorf("transitions = %v", got)
	}
	g := c.Graph()
	if g.NodeCount() != 2 || len(g.Clusters()) != 1 {
		t.Errorf("graph = %d nodes, %d clusters", g.NodeCount(), len(g.Clusters()))
	}
	for _, n := range g.Nodes {
		if !n.Positioned {
			t.Errorf("node %s not positioned", n.ID)
		}
	}
	if sim.Reheats() != 1 {
		t.Errorf("reheats = %d, want 1", sim.Reheats())
	}
	if f := c.Filters(); f.View != vectorizer.ViewFunctions || f.MinSize != 3 {
		t.Errorf("filters not defaulted: %+v", f)
	}
}

func TestSetFiltersFromReady(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, _ := newController(t, src)
	ctx := context.Background()

	if err := c.Load(ctx, Filters{Project: "acme", Cluster: true}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetFilters(ctx, Filters{Project: "acme", Cluster: false}); err != nil {
		t.Fatal(err)
	}

	if got := rec.states(); !slices.Equal(got, []State{Loading, Ready, Filtering, Ready}) {
		t.Errorf("transitions = %v", got)
	}
	if c.Graph().NodeCount() != 5 {
		t.Errorf("unclustered graph = %d nodes", c.Graph().NodeCount())
	}
	if src.callCount() != 2 {
		t.Errorf("fetches = %d, want 2", src.callCount())
	}
}

func TestSearchOnlyHighlights(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, sim := newController(t, src)
	ctx := context.Background()

	if err := c.Load(ctx, Filters{Project: "acme"}); err != nil {
		t.Fatal(err)
	}
	before := c.Graph()
	c.Search("parse")

	g := c.Graph()
	if g.NodeCount() != before.NodeCount() || g.EdgeCount() != before.EdgeCount() {
		t.Error("search changed counts")
	}
	var flags []bool
	for _, n := range g.Nodes[:3] {
		flags = append(flags, n.Highlighted)
	}
	if !slices.Equal(flags, []bool{true, false, true}) {
		t.Errorf("highlighted = %v", flags)
	}
	if src.callCount() != 1 || sim.Reheats() != 1 {
		t.Errorf("search refetched (%d) or re-laid out (%d)", src.callCount(), sim.Reheats())
	}
	if got := rec.states(); !slices.Equal(got[2:], []State{Searching, Ready}) {
		t.Errorf("transitions = %v", got)
	}
	if c.Query() != "parse" {
		t.Errorf("Query() = %q", c.Query())
	}
}

func TestSetLayoutOnlyRepositions(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, sim := newController(t, src)
	ctx := context.Background()

	if err := c.Load(ctx, Filters{Project: "acme"}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetLayout(ctx, "circular"); err != nil {
		t.Fatal(err)
	}
	if c.Strategy() != layout.Circular {
		t.Errorf("Strategy() = %v", c.Strategy())
	}
	if src.callCount() != 1 {
		t.Errorf("layout change refetched")
	}
	if sim.Reheats() != 2 {
		t.Errorf("reheats = %d, want 2", sim.Reheats())
	}
	if got := rec.states(); !slices.Equal(got[2:], []State{LayoutChanging, Ready}) {
		t.Errorf("transitions = %v", got)
	}

	err := c.SetLayout(ctx, "spiral")
	if !cgerrors.Is(err, cgerrors.ErrCodeInvalidLayout) {
		t.Errorf("err = %v, want INVALID_LAYOUT", err)
	}
	if c.Strategy() != layout.Circular {
		t.Error("invalid layout should not change the strategy")
	}
}

func TestClickNodeExpandsCluster(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, sim := newController(t, src)
	ctx := context.Background()

	if err := c.Load(ctx, Filters{Project: "acme", Cluster: true}); err != nil {
		t.Fatal(err)
	}
	c.Search("parse")

	if c.ClickNode("p1") {
		t.Error("click on a plain node should be a no-op")
	}
	if c.ClickNode("missing") {
		t.Error("click on an unknown id should be a no-op")
	}

	clusterID := c.Graph().Clusters()[0].ID
	if !c.ClickNode(clusterID) {
		t.Fatal("click on cluster should expand it")
	}
	g := c.Graph()
	if g.NodeCount() != 5 || len(g.Clusters()) != 0 {
		t.Errorf("expanded graph = %d nodes, %d clusters", g.NodeCount(), len(g.Clusters()))
	}
	if err := g.Validate(); err != nil {
		t.Errorf("expanded graph invalid: %v", err)
	}
	j1, _ := g.NodeByID("j1")
	if !j1.Highlighted {
		t.Error("search should be re-applied to restored members")
	}
	if sim.Reheats() != 2 {
		t.Errorf("reheats = %d, want 2", sim.Reheats())
	}

	rec.mu.Lock()
	last := rec.events[len(rec.events)-1]
	rec.mu.Unlock()
	if !last.Reheat || last.To != Ready {
		t.Errorf("last event = %+v", last)
	}
}

func TestFetchFailureResetsGraph(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, _ := newController(t, src)
	ctx := context.Background()

	if err := c.Load(ctx, Filters{Project: "acme"}); err != nil {
		t.Fatal(err)
	}
	fail := cgerrors.New(cgerrors.ErrCodeMalformedResponse, "response missing \"nodes\"")
	src.set("acme", graph.RawGraph{}, fail)

	err := c.SetFilters(ctx, Filters{Project: "acme", Threshold: 0.8})
	if !errors.Is(err, fail) {
		t.Fatalf("err = %v", err)
	}
	if c.State() != Error || !errors.Is(c.Err(), fail) {
		t.Errorf("state = %v err = %v", c.State(), c.Err())
	}
	if !c.Graph().Empty() {
		t.Error("graph should be empty after a failed fetch")
	}
	if n := len(c.Render().Nodes); n != 0 {
		t.Errorf("render nodes = %d", n)
	}

	// Search and click are harmless in Error.
	c.Search("x")
	if c.ClickNode("j1") {
		t.Error("click in Error should be a no-op")
	}

	src.set("acme", scenario(), nil)
	if err := c.Retry(ctx); err != nil {
		t.Fatal(err)
	}
	if c.State() != Ready || c.Err() != nil {
		t.Errorf("after retry state = %v err = %v", c.State(), c.Err())
	}
	if got := rec.states(); !slices.Equal(got, []State{Loading, Ready, Filtering, Error, Loading, Ready}) {
		t.Errorf("transitions = %v", got)
	}
	if c.Query() != "x" {
		t.Error("query set during Error should be kept")
	}
}

func TestCancelledFetchKeepsGraph(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	src.set("other", scenario(), nil)
	c, rec, _ := newController(t, src)

	if err := c.Load(context.Background(), Filters{Project: "acme"}); err != nil {
		t.Fatal(err)
	}
	before := c.Graph()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.SetFilters(ctx, Filters{Project: "other"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if c.State() != Ready || c.Err() != nil {
		t.Errorf("state = %v err = %v, want ready without error", c.State(), c.Err())
	}
	if c.Graph().NodeCount() != before.NodeCount() || c.Filters().Project != "acme" {
		t.Errorf("graph = %d nodes for %q, want %d for acme", c.Graph().NodeCount(), c.Filters().Project, before.NodeCount())
	}
	if got := rec.states(); !slices.Equal(got, []State{Loading, Ready, Filtering, Ready}) {
		t.Errorf("transitions = %v", got)
	}

	// Retry refetches the filters that were in force before the abandoned fetch.
	if err := c.Retry(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Filters().Project != "acme" {
		t.Errorf("retry used %q", c.Filters().Project)
	}
}

func TestCancelledFirstLoadReturnsToIdle(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, _, _ := newController(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Load(ctx, Filters{Project: "acme"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if c.State() != Idle || c.Err() != nil {
		t.Errorf("state = %v err = %v, want idle", c.State(), c.Err())
	}
}

func TestClickMemberlessClusterIsNoop(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, sim := newController(t, src)
	if err := c.Load(context.Background(), Filters{Project: "acme"}); err != nil {
		t.Fatal(err)
	}

	c.mu.Lock()
	c.graph = codegraph.Graph{
		Nodes: append(slices.Clone(c.graph.Nodes), codegraph.Node{ID: "cluster:empty", Name: "empty", IsCluster: true}),
		Edges: c.graph.Edges,
	}
	c.mu.Unlock()
	events, reheats := len(rec.states()), sim.Reheats()

	if c.ClickNode("cluster:empty") {
		t.Error("click on a cluster without members should be a no-op")
	}
	if sim.Reheats() != reheats || len(rec.states()) != events {
		t.Errorf("no-op click reheated (%d -> %d) or emitted (%d -> %d)", reheats, sim.Reheats(), events, len(rec.states()))
	}
}

func TestRetryBeforeLoad(t *testing.T) {
	c, _, _ := newController(t, newFakeSource())
	if err := c.Retry(context.Background()); !errors.Is(err, ErrNoFilters) {
		t.Errorf("err = %v", err)
	}
}

func TestInvalidFiltersLeaveStateAlone(t *testing.T) {
	c, rec, _ := newController(t, newFakeSource())
	err := c.Load(context.Background(), Filters{Project: "acme", Limit: vectorizer.MaxLimit + 1})
	if !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
	if c.State() != Idle || len(rec.states()) != 0 {
		t.Errorf("state = %v events = %v", c.State(), rec.states())
	}
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	src := newFakeSource()
	small := graph.RawGraph{Nodes: []graph.RawNode{{ID: "s1", Language: "go"}}, Links: []graph.RawLink{}}
	src.set("old", scenario(), nil)
	src.set("new", small, nil)
	gate := src.gate("old")
	c, _, _ := newController(t, src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Load(ctx, Filters{Project: "old"}) }()
	<-src.started // old fetch is in flight

	if err := c.SetFilters(ctx, Filters{Project: "new"}); err != nil {
		t.Fatal(err)
	}
	<-src.started
	close(gate)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("old fetch err = %v, want ErrSuperseded", err)
	}
	g := c.Graph()
	if g.NodeCount() != 1 || g.Nodes[0].ID != "s1" {
		t.Errorf("graph = %+v, want the newer result", g.Nodes)
	}
	if c.Filters().Project != "new" {
		t.Errorf("filters = %+v", c.Filters())
	}
}

func TestQueryAndLayoutDuringFetchApplyOnCompletion(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	gate := src.gate("acme")
	c, _, _ := newController(t, src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Load(ctx, Filters{Project: "acme"}) }()
	<-src.started

	c.Search("render")
	if err := c.SetLayout(ctx, "hierarchical"); err != nil {
		t.Fatal(err)
	}
	if c.State() != Loading {
		t.Errorf("state = %v, want Loading", c.State())
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	n, _ := c.Graph().NodeByID("j2")
	if !n.Highlighted {
		t.Error("query set during fetch should be applied")
	}
	p1, _ := c.Graph().NodeByID("p1")
	j2 := n
	if !(j2.Position.Y > p1.Position.Y) {
		t.Errorf("hierarchical layout not applied: p1=%v j2=%v", p1.Position, j2.Position)
	}
}

func TestUpdatePositions(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c, rec, _ := newController(t, src)

	if n := c.UpdatePositions(map[string]codegraph.Point{"j1": {}}); n != 0 {
		t.Error("positions before Ready should be ignored")
	}
	if err := c.Load(context.Background(), Filters{Project: "acme"}); err != nil {
		t.Fatal(err)
	}
	events := len(rec.states())

	n := c.UpdatePositions(map[string]codegraph.Point{"j1": {X: 7, Y: 8}, "ghost": {X: 1}})
	if n != 1 {
		t.Errorf("updated = %d, want 1", n)
	}
	j1, _ := c.Graph().NodeByID("j1")
	if j1.Position != (codegraph.Point{X: 7, Y: 8}) {
		t.Errorf("j1 = %v", j1.Position)
	}
	if len(rec.states()) != events {
		t.Error("UpdatePositions should not emit events")
	}
}

func TestUnsubscribe(t *testing.T) {
	src := newFakeSource()
	src.set("acme", scenario(), nil)
	c := New(Options{Source: src})

	var count int
	cancel := c.Subscribe(func(Event) { count++ })
	if err := c.Load(context.Background(), Filters{Project: "acme"}); err != nil {
		t.Fatal(err)
	}
	cancel()
	c.Search("parse")
	if count != 2 {
		t.Errorf("events after cancel: count = %d, want 2", count)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Idle:           "idle",
		LayoutChanging: "layout_changing",
		Error:          "error",
		State(42):      "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
	if !Loading.Busy() || !Filtering.Busy() || Ready.Busy() {
		t.Error("Busy() wrong")
	}
}

func TestStateText(t *testing.T) {
	for s := Idle; s <= Error; s++ {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got State
		if err := got.UnmarshalText(b); err != nil || got != s {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", b, got, err, s)
		}
	}
	var s State
	if err := s.UnmarshalText([]byte("melting")); err == nil {
		t.Error("unknown name should fail")
	}
}

func TestFiltersEqual(t *testing.T) {
	a := Filters{Project: "p", Languages: []string{"go"}, Cluster: true}
	b := a.clone()
	if !a.Equal(b) {
		t.Error("clone should be equal")
	}
	b.Languages[0] = "rust"
	if a.Equal(b) || a.Languages[0] != "go" {
		t.Error("clone should not share languages")
	}
}
