// Package shortest routes over a contraction hierarchy built from the
// template mesh. Unlike astar it always returns a minimum-cost route.
package shortest

import (
	"sync"

	"airport-sim/internal/game/astar"
	"airport-sim/internal/game/graph"
	"airport-sim/pkg/types"

	"github.com/LdDl/ch"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
)

type Router struct {
	mu sync.Mutex
	g  *ch.Graph
}

// New contracts the mesh. The mesh is only read.
func New(mesh *graph.NavigationMesh) (*Router, error) {
	g := &ch.Graph{}
	for _, n := range mesh.Nodes {
		if err := g.CreateVertex(int64(n.ID)); err != nil {
			return nil, errors.Wrapf(err, "create vertex %d", n.ID)
		}
	}
	for _, n := range mesh.Nodes {
		for _, e := range n.Edges {
			if err := g.AddEdge(int64(n.ID), int64(e.To), float64(e.Weight)); err != nil {
				return nil, errors.Wrapf(err, "add edge %d->%d", n.ID, e.To)
			}
		}
	}
	g.PrepareContractionHierarchies()
	return &Router{g: g}, nil
}

// Search has the same contract as astar.Search. The working copy is only
// used to resolve coordinates and node data; its markers are untouched.
func (r *Router) Search(mesh *graph.NavigationMesh, start, destination types.Point) (graph.Path, error) {
	from, ok := mesh.NodeAt(start)
	if !ok {
		return nil, &astar.LookupError{Point: start}
	}
	to, ok := mesh.NodeAt(destination)
	if !ok {
		log.Warnf("SHORTEST: no node at destination %s", destination)
		return graph.Path{}, nil
	}
	if from.ID == to.ID {
		return graph.Path{*from}, nil
	}

	r.mu.Lock()
	cost, ids := r.g.ShortestPath(int64(from.ID), int64(to.ID))
	r.mu.Unlock()

	if cost < 0 || len(ids) == 0 {
		log.Warnf("SHORTEST: no path found from %s to %s", start, destination)
		return graph.Path{}, nil
	}
	path := make(graph.Path, 0, len(ids))
	for _, id := range ids {
		n := mesh.Node(int(id))
		if n == nil {
			return nil, errors.Errorf("router returned unknown node %d", id)
		}
		path = append(path, *n)
	}
	return path, nil
}
