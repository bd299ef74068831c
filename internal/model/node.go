// Package model holds the shared data model used by both the geometric
// contact engine (Mode A) and the contact-plan scheduler (Mode B): nodes,
// bundles, contact windows, queue entries, and delivery records.
package model

import "time"

// Kind distinguishes mobile satellites from stationary ground stations.
type Kind int

const (
	GroundStation Kind = iota
	Satellite
)

func (k Kind) String() string {
	if k == Satellite {
		return "satellite"
	}
	return "ground-station"
}

// PositionFunc is the per-node projection of the consumed position
// oracle: pure for a given t, returning kilometres in an Earth-centered
// frame.
type PositionFunc func(t time.Time) (x, y, z float64)

// Node is a mobile or stationary participant in the network. Identity is
// by Name, which must be unique and non-empty; Index is the dense
// insertion-order index used to break routing and log-ordering ties
// deterministically ("ascending node index").
type Node struct {
	Index    int
	Name     string
	Kind     Kind
	Position PositionFunc
}

// XYZKm evaluates the node's position at t.
func (n *Node) XYZKm(t time.Time) (x, y, z float64) { return n.Position(t) }

// Registry is an ordered collection of nodes, keyed by name, with stable
// index-order iteration — the "dictionary with stable iteration" the
// design notes call for.
type Registry struct {
	byName map[string]*Node
	order  []*Node
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Node)}
}

// Add appends a node, assigning it the next index. Returns an error if
// the name is empty or already registered.
func (r *Registry) Add(name string, kind Kind, pos PositionFunc) (*Node, error) {
	if name == "" {
		return nil, errEmptyName
	}
	if _, exists := r.byName[name]; exists {
		return nil, errDuplicateName(name)
	}
	n := &Node{Index: len(r.order), Name: name, Kind: kind, Position: pos}
	r.byName[name] = n
	r.order = append(r.order, n)
	return n, nil
}

func (r *Registry) ByName(name string) (*Node, bool) {
	n, ok := r.byName[name]
	return n, ok
}

func (r *Registry) ByIndex(i int) *Node { return r.order[i] }

// Len reports the number of registered nodes.
func (r *Registry) Len() int { return len(r.order) }

// All iterates nodes in ascending index order.
func (r *Registry) All() []*Node { return r.order }
