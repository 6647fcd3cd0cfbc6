package controller

import (
	"fmt"
	"slices"

	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
)

// State is a controller lifecycle state.
type State int

// Controller states. Filtering, Searching and LayoutChanging are entered
// from Ready and always lead back to Ready (or Error for a failed refetch).
const (
	Idle State = iota
	Loading
	Ready
	Filtering
	Searching
	LayoutChanging
	Error
)

var stateNames = [...]string{
	Idle:           "idle",
	Loading:        "loading",
	Ready:          "ready",
	Filtering:      "filtering",
	Searching:      "searching",
	LayoutChanging: "layout_changing",
	Error:          "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name as produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown controller state %q", b)
}

// Busy reports whether a fetch is in flight.
func (s State) Busy() bool {
	return s == Loading || s == Filtering
}

// Filters are the parameters that require a refetch when they change.
type Filters struct {
	Project   string   `json:"project"`
	View      string   `json:"view,omitempty"`
	Threshold float64  `json:"threshold"`
	Limit     int      `json:"limit,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Cluster   bool     `json:"cluster"`
	MinSize   int      `json:"minSize,omitempty"`
}

// Query returns the backend query for f.
func (f Filters) Query() vectorizer.Query {
	return vectorizer.Query{
		Project:   f.Project,
		View:      f.View,
		Threshold: f.Threshold,
		Limit:     f.Limit,
		Languages: slices.Clone(f.Languages),
	}.WithDefaults()
}

// Equal reports whether f and o describe the same fetch and clustering.
func (f Filters) Equal(o Filters) bool {
	return f.Project == o.Project &&
		f.View == o.View &&
		f.Threshold == o.Threshold &&
		f.Limit == o.Limit &&
		slices.Equal(f.Languages, o.Languages) &&
		f.Cluster == o.Cluster &&
		f.MinSize == o.MinSize
}

func (f Filters) clone() Filters {
	f.Languages = slices.Clone(f.Languages)
	return f
}

// Event reports one state transition or graph change.
type Event struct {
	From   State
	To     State
	Graph  codegraph.Graph
	Err    error
	Reheat bool // the simulation was reheated for this change
}
