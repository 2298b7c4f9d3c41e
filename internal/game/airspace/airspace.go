package airspace

import (
	"airport-sim/internal/game/astar"
	"airport-sim/internal/game/graph"
	"airport-sim/pkg/types"
)

// Layout holds the fixed coordinates aircraft check against while they
// move. All of them except Checkpoint and FinalApproach must be graph
// nodes.
type Layout struct {
	Start         types.Point // runway threshold, where aircraft appear
	HoldingPoint  types.Point
	Endpoint      types.Point // runway end, where departures leave
	Checkpoint    types.Point // aircraft request the runway here before departing
	FinalApproach types.Point // last check before the take-off run
	Runway        types.Rect
	Gates         []types.Point
}

// DefaultLayout matches resources/graph.json.
func DefaultLayout() Layout {
	return Layout{
		Start:         types.NewPoint(29, 324),
		HoldingPoint:  types.NewPoint(300, 280),
		Endpoint:      types.NewPoint(1388, 324),
		Checkpoint:    types.NewPoint(668, 300),
		FinalApproach: types.NewPoint(668, 323),
		Runway: types.Rect{
			Min: types.NewPoint(28, 309),
			Max: types.NewPoint(1399, 337),
		},
		Gates: []types.Point{
			types.NewPoint(20, 86),
			types.NewPoint(46, 86),
			types.NewPoint(73, 86),
			types.NewPoint(100, 86),
			types.NewPoint(184, 86),
		},
	}
}

// RunwayBorder is the y coordinate an aircraft crosses when it leaves the
// runway towards the taxiways.
func (l Layout) RunwayBorder() int {
	return l.Runway.Min.Y
}

// Validate checks that every coordinate aircraft route to is a node of mesh.
func (l Layout) Validate(mesh *graph.NavigationMesh) error {
	points := append([]types.Point{l.Start, l.HoldingPoint, l.Endpoint}, l.Gates...)
	for _, p := range points {
		if _, ok := mesh.NodeAt(p); !ok {
			return &astar.LookupError{Point: p}
		}
	}
	return nil
}
