// Package astar finds routes across a navigation mesh.
//
// Search works on a mesh owned by the caller and uses the node markers of
// that mesh as its closed set, so concurrent searches must each use their
// own working copy (see graph.NavigationMesh.Clone).
//
// The search closes a node the first time it enters the open list and
// never relaxes it afterwards. On the airport graph this finds the
// shortest route, but in general a cheaper route through an already closed
// node is missed; use the shortest package when exact costs matter.
package astar

import (
	"fmt"
	"sort"

	"airport-sim/internal/game/graph"
	"airport-sim/pkg/types"

	"github.com/labstack/gommon/log"
)

// LookupError reports a coordinate that has no node in the mesh.
type LookupError struct {
	Point types.Point
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no graph node at %s", e.Point)
}

type entry struct {
	id     int
	g, h   int
	parent int
}

func (e entry) f() int { return e.g + e.h }

func heuristic(p, q types.Point) int {
	return p.Manhattan(q)
}

// Search returns the route from start to destination, both inclusive. An
// empty path means destination cannot be reached from start. The only
// error is a *LookupError when start is not a node.
func Search(mesh *graph.NavigationMesh, start, destination types.Point) (graph.Path, error) {
	startNode, ok := mesh.NodeAt(start)
	if !ok {
		return nil, &LookupError{Point: start}
	}

	mesh.ResetMarkers()
	expanded := make(map[int]entry)
	var open []entry

	add := func(n *graph.Node, g, parent int) {
		open = append(open, entry{id: n.ID, g: g, h: heuristic(n.Position, destination), parent: parent})
		n.Marker = graph.CLOSED
	}
	add(startNode, 0, 0)

	for len(open) > 0 {
		// Lowest f first; equal f keeps insertion order.
		sort.SliceStable(open, func(i, j int) bool { return open[i].f() < open[j].f() })
		current := open[0]
		open = open[1:]
		expanded[current.id] = current

		node := mesh.Node(current.id)
		if node.Position == destination {
			return reconstruct(mesh, expanded, current), nil
		}

		for _, e := range node.Edges {
			next := mesh.Node(e.To)
			if next.Marker == graph.OPEN {
				add(next, current.g+e.Weight, current.id)
			}
		}
	}

	log.Warnf("ASTAR: no path found from %s to %s", start, destination)
	return graph.Path{}, nil
}

func reconstruct(mesh *graph.NavigationMesh, expanded map[int]entry, last entry) graph.Path {
	var reversed []graph.Node
	for e := last; ; e = expanded[e.parent] {
		reversed = append(reversed, *mesh.Node(e.id))
		if e.parent == 0 {
			break
		}
	}
	path := make(graph.Path, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}
