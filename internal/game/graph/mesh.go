package graph

import (
	"fmt"
	"math"

	"airport-sim/pkg/types"

	"github.com/brunoga/deep"
)

// NavigationMesh is the full set of nodes and derived edges. The mesh built
// from a definition is a template: it is never mutated after the edges are
// calculated, and every aircraft searches on its own Clone.
type NavigationMesh struct {
	Nodes []Node
}

// Record is one node of an external graph definition.
type Record struct {
	ID        int          `json:"id"`
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Type      string       `json:"type"`
	Neighbors NeighborList `json:"neighbors"`
}

// Build creates a mesh from node records. Ids must be unique, 1-based and
// dense; records may come in any order.
func Build(records []Record) (*NavigationMesh, error) {
	n := len(records)
	nodes := make([]Node, n)
	seen := make([]bool, n)
	position := make([]int, n) // 1-based input position of each node

	for i, rec := range records {
		if rec.ID < 1 || rec.ID > n {
			return nil, &ParseError{Record: i + 1, Msg: "node id out of range", ID: rec.ID}
		}
		if seen[rec.ID-1] {
			return nil, &ParseError{Record: i + 1, Msg: "duplicate node id", ID: rec.ID}
		}
		seen[rec.ID-1] = true
		position[rec.ID-1] = i + 1

		cat, ok := ParseCategory(rec.Type)
		if !ok {
			return nil, &ParseError{Record: i + 1, Msg: "unknown node type " + rec.Type, ID: rec.ID}
		}
		nodes[rec.ID-1] = Node{
			ID:        rec.ID,
			Position:  types.NewPoint(rec.X, rec.Y),
			Category:  cat,
			Neighbors: append([]int(nil), rec.Neighbors...),
		}
	}

	for i, node := range nodes {
		for _, nb := range node.Neighbors {
			if nb < 1 || nb > n {
				return nil, &ParseError{Record: position[i], ID: node.ID, Msg: fmt.Sprintf("unknown neighbor %d", nb)}
			}
		}
	}

	m := &NavigationMesh{Nodes: nodes}
	m.calculateEdges()
	return m, nil
}

// calculateEdges derives one outgoing edge per neighbor, weighted by the
// Manhattan distance between the two node coordinates.
func (m *NavigationMesh) calculateEdges() {
	for i := range m.Nodes {
		node := &m.Nodes[i]
		node.Edges = make([]Edge, 0, len(node.Neighbors))
		for _, nb := range node.Neighbors {
			node.Edges = append(node.Edges, Edge{
				To:     nb,
				Weight: node.Position.Manhattan(m.Nodes[nb-1].Position),
			})
		}
	}
}

func (m *NavigationMesh) Size() int {
	return len(m.Nodes)
}

// Node returns the node with the given 1-based id, or nil.
func (m *NavigationMesh) Node(id int) *Node {
	if id < 1 || id > len(m.Nodes) {
		return nil
	}
	return &m.Nodes[id-1]
}

// NodeAt returns the node at exactly p.
func (m *NavigationMesh) NodeAt(p types.Point) (*Node, bool) {
	for i := range m.Nodes {
		if m.Nodes[i].Position == p {
			return &m.Nodes[i], true
		}
	}
	return nil, false
}

func (m *NavigationMesh) FirstOfCategory(c Category) (*Node, bool) {
	for i := range m.Nodes {
		if m.Nodes[i].Category == c {
			return &m.Nodes[i], true
		}
	}
	return nil, false
}

// Clone returns an independent deep copy for a new owner.
func (m *NavigationMesh) Clone() *NavigationMesh {
	c := deep.MustCopy(*m)
	return &c
}

func (m *NavigationMesh) ResetMarkers() {
	for i := range m.Nodes {
		m.Nodes[i].Marker = OPEN
	}
}

// IrregularEdge is an edge whose Euclidean length is not a whole number.
// Aircraft advance a whole number of units per tick, so they overshoot the
// far end of such a segment and any milestone on it is skipped.
type IrregularEdge struct {
	From, To int
	Length   float64
}

func (m *NavigationMesh) IrregularEdges() []IrregularEdge {
	var irregular []IrregularEdge
	for _, node := range m.Nodes {
		for _, e := range node.Edges {
			l := node.Position.Vec2().DistanceTo(m.Nodes[e.To-1].Position.Vec2())
			if l != math.Trunc(l) {
				irregular = append(irregular, IrregularEdge{From: node.ID, To: e.To, Length: l})
			}
		}
	}
	return irregular
}
