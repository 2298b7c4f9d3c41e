package graph

import (
	"airport-sim/pkg/types"
)

type Category int

const (
	WAYPOINT Category = iota
	LANDINGPOINT_A320
	LANDINGPOINT_A380
	LANDINGPOINT_OTHERS
	TERMINAL
	WAITINGPOINT
	ENDPOINT
)

var CategoryStringMap = map[Category]string{
	WAYPOINT:            "WAYPOINT",
	LANDINGPOINT_A320:   "LANDINGPOINT_A320",
	LANDINGPOINT_A380:   "LANDINGPOINT_A380",
	LANDINGPOINT_OTHERS: "LANDINGPOINT_OTHERS",
	TERMINAL:            "TERMINAL",
	WAITINGPOINT:        "WAITINGPOINT",
	ENDPOINT:            "ENDPOINT",
}

func (c Category) String() string {
	if s, ok := CategoryStringMap[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseCategory maps the category names used in graph definitions.
func ParseCategory(s string) (Category, bool) {
	for c, name := range CategoryStringMap {
		if name == s {
			return c, true
		}
	}
	return 0, false
}

// Marker is the transient search state of a node. It is only meaningful
// during a single search on a working copy.
type Marker int

const (
	OPEN Marker = iota
	CLOSED
)

type Edge struct {
	To     int
	Weight int
}

type Node struct {
	ID        int
	Position  types.Point
	Category  Category
	Neighbors []int
	Edges     []Edge
	Marker    Marker
}

// EdgeTo returns the outgoing edge to the node with the given id.
func (n *Node) EdgeTo(id int) (Edge, bool) {
	for _, e := range n.Edges {
		if e.To == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Path is an ordered sequence of nodes, start and destination inclusive.
// An empty path means there is no route.
type Path []Node

func (p Path) Empty() bool {
	return len(p) == 0
}

// Cost sums the edge weights along the path.
func (p Path) Cost() int {
	cost := 0
	for i := 1; i < len(p); i++ {
		cost += p[i-1].Position.Manhattan(p[i].Position)
	}
	return cost
}

func (p Path) Last() (Node, bool) {
	if len(p) == 0 {
		return Node{}, false
	}
	return p[len(p)-1], true
}

// IDs returns the node ids along the path.
func (p Path) IDs() []int {
	ids := make([]int, len(p))
	for i, n := range p {
		ids[i] = n.ID
	}
	return ids
}
