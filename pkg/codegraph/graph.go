package codegraph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.Validate] when a node has an empty ID.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.Validate] when two nodes share an ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDanglingEdge is returned by [Graph.Validate] when an edge references a
	// node that is not in the graph.
	ErrDanglingEdge = errors.New("edge references missing node")

	// ErrNestedCluster is returned by [Graph.Validate] when a cluster lists
	// another cluster as a member.
	ErrNestedCluster = errors.New("cluster contains another cluster")

	// ErrSharedMember is returned by [Graph.Validate] when a member ID is owned
	// by a cluster while also present in the node set, or owned by two clusters.
	ErrSharedMember = errors.New("member owned more than once")
)

// Kind classifies a code entity.
type Kind string

// Node kinds. KindCluster is reserved for synthetic aggregate nodes.
const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindVariable  Kind = "variable"
	KindModule    Kind = "module"
	KindFile      Kind = "file"
	KindPackage   Kind = "package"
	KindNamespace Kind = "namespace"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindType      Kind = "type"
	KindCluster   Kind = "cluster"
)

var validKinds = map[Kind]bool{
	KindFunction: true, KindClass: true, KindVariable: true, KindModule: true,
	KindFile: true, KindPackage: true, KindNamespace: true, KindInterface: true,
	KindEnum: true, KindType: true, KindCluster: true,
}

// ParseKind maps a raw type string to a Kind. Unknown or empty values map to
// KindFunction, the dominant entity in call graphs. "cluster" is never accepted
// from input: only the cluster engine creates cluster nodes.
func ParseKind(s string) Kind {
	k := Kind(s)
	if k == KindCluster || !validKinds[k] {
		return KindFunction
	}
	return k
}

// Relationship is the type of a directed edge.
type Relationship string

// Edge relationships.
const (
	RelImports    Relationship = "imports"
	RelCalls      Relationship = "calls"
	RelExtends    Relationship = "extends"
	RelImplements Relationship = "implements"
	RelReferences Relationship = "references"
	RelUses       Relationship = "uses"
)

// ParseRelationship maps a raw relationship string to a Relationship.
// Unknown or empty values map to RelReferences.
func ParseRelationship(s string) Relationship {
	switch r := Relationship(s); r {
	case RelImports, RelCalls, RelExtends, RelImplements, RelReferences, RelUses:
		return r
	default:
		return RelReferences
	}
}

// Point is a 2D position assigned by a layout.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a code entity or a synthetic cluster standing in for many entities.
//
// The zero value is not usable: ID must be set. Nodes produced by the
// transform package always carry defaulted Name, Language, Complexity and Size.
type Node struct {
	ID         string
	Name       string
	Kind       Kind
	Language   string
	FilePath   string
	Code       string
	Complexity float64 // >= 0
	Size       float64 // importance weight used for visual size, >= 1

	Position   Point
	Positioned bool // Position was assigned by a layout or seeded by expansion

	IsCluster bool
	MemberIDs []string // only set on cluster nodes

	Highlighted bool // matched the active search
	Dimmed      bool // search active and not matched; never set on clusters
}

// Clone returns a copy of n that shares no slices with it.
func (n Node) Clone() Node {
	n.MemberIDs = slices.Clone(n.MemberIDs)
	return n
}

// Edge is a directed relationship between two nodes.
type Edge struct {
	Source       string
	Target       string
	Relationship Relationship
	Weight       float64 // >= 1
}

// Graph is the working graph value. Treat it as immutable once published:
// transforms return new graphs rather than modifying their input.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Empty reports whether the graph has no nodes.
func (g Graph) Empty() bool { return len(g.Nodes) == 0 }

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: slices.Clone(g.Edges),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	return out
}

// Index returns a map from node ID to its position in g.Nodes.
func (g Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// NodeByID returns the node with the given ID.
func (g Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given ID exists.
func (g Graph) HasNode(id string) bool {
	_, ok := g.NodeByID(id)
	return ok
}

// Clusters returns the cluster nodes in graph order.
func (g Graph) Clusters() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.IsCluster {
			out = append(out, n)
		}
	}
	return out
}

// Languages returns the distinct node languages in order of first appearance.
func (g Graph) Languages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range g.Nodes {
		if !seen[n.Language] {
			seen[n.Language] = true
			out = append(out, n.Language)
		}
	}
	return out
}

// Prune returns a copy of g without edges whose source or target is missing.
// This is the recovery path for edges left behind when nodes are absorbed or
// removed: they are dropped silently rather than reported.
func (g Graph) Prune() Graph {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	out := g.Clone()
	out.Edges = slices.DeleteFunc(out.Edges, func(e Edge) bool {
		return !ids[e.Source] || !ids[e.Target]
	})
	return out
}

// Validate checks the graph invariants and returns the first violation.
func (g Graph) Validate() error {
	ids := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return ErrInvalidNodeID
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		ids[n.ID] = n
	}

	owner := make(map[string]string)
	for _, n := range g.Nodes {
		if !n.IsCluster {
			continue
		}
		for _, m := range n.MemberIDs {
			if member, present := ids[m]; present {
				if member.IsCluster {
					return fmt.Errorf("%w: %s in %s", ErrNestedCluster, m, n.ID)
				}
				return fmt.Errorf("%w: %s", ErrSharedMember, m)
			}
			if prev, taken := owner[m]; taken {
				return fmt.Errorf("%w: %s in %s and %s", ErrSharedMember, m, prev, n.ID)
			}
			owner[m] = n.ID
		}
	}

	for _, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("%w: %s→%s", ErrDanglingEdge, e.Source, e.Target)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("%w: %s→%s", ErrDanglingEdge, e.Source, e.Target)
		}
	}
	return nil
}

// Positions returns the assigned positions keyed by node ID.
// Nodes that have not been positioned are omitted.
func (g Graph) Positions() map[string]Point {
	out := make(map[string]Point, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Positioned {
			out[n.ID] = n.Position
		}
	}
	return out
}

// WithPositions returns a copy of g with positions applied from pos.
// Nodes missing from pos keep their current position.
func (g Graph) WithPositions(pos map[string]Point) Graph {
	out := g.Clone()
	for i := range out.Nodes {
		if p, ok := pos[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = p
			out.Nodes[i].Positioned = true
		}
	}
	return out
}
