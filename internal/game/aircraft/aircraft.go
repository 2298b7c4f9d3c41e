package aircraft

import (
	"context"
	"sync"
	"time"

	"airport-sim/internal/game/airspace"
	"airport-sim/internal/game/flightplan"
	"airport-sim/internal/game/graph"
	"airport-sim/pkg/types"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
)

// ErrNoRoute is returned when a re-plan finds no path to the next target.
var ErrNoRoute = errors.New("no route")

// Planner finds a path between two mesh coordinates on a working copy.
// astar.Search and shortest.Router.Search both satisfy it.
type Planner func(mesh *graph.NavigationMesh, start, destination types.Point) (graph.Path, error)

// Environment is what an airplane shares with the rest of the airport.
type Environment struct {
	Layout    airspace.Layout
	Runway    *airspace.Runway
	Terminals *airspace.TerminalPool
	Timing    Timing
	Planner   Planner

	// Notify, if set, is called after every status change.
	Notify func(ac *Airplane, status Status)
}

type Airplane struct {
	ID   types.AircraftID
	Plan flightplan.FlightPlan

	env     Environment
	mesh    *graph.NavigationMesh
	landing types.Point

	// Owned by the movement task.
	path           graph.Path
	tick           time.Duration
	checkpointDone bool
	finalDone      bool

	mu          sync.RWMutex
	status      Status
	position    types.Vec2
	heading     float64
	terminal    *airspace.Terminal
	holdsRunway bool
	stalled     bool
	err         error
}

// NewAirplane creates an airplane at the runway threshold with a route to
// the landing point of its type. It works on its own clone of template.
func NewAirplane(id types.AircraftID, plan flightplan.FlightPlan, template *graph.NavigationMesh, env Environment) (*Airplane, error) {
	mesh := template.Clone()

	cat := flightplan.LandingCategory(plan.Type)
	lp, ok := mesh.FirstOfCategory(cat)
	if !ok {
		return nil, errors.Errorf("%s: mesh has no %s node", plan.Callsign, cat)
	}

	ac := &Airplane{
		ID:       id,
		Plan:     plan,
		env:      env,
		mesh:     mesh,
		landing:  lp.Position,
		tick:     env.Timing.Tick,
		status:   LANDING,
		position: env.Layout.Start.Vec2(),
	}
	if err := ac.replan(lp.Position); err != nil {
		return nil, err
	}
	if len(ac.path) > 1 {
		ac.heading = ac.path[0].Position.Vec2().AngleTo(ac.path[1].Position.Vec2())
	}
	return ac, nil
}

// RequestRunway blocks until the runway admits the airplane.
func (ac *Airplane) RequestRunway(ctx context.Context) error {
	if err := ac.env.Runway.RequestEntry(ctx, ac.ID); err != nil {
		return err
	}
	ac.mu.Lock()
	ac.holdsRunway = true
	ac.mu.Unlock()
	return nil
}

func (ac *Airplane) replan(dest types.Point) error {
	from, ok := ac.Position().Point()
	if !ok {
		return errors.Errorf("%s: re-plan from %s, which is not a mesh coordinate", ac.Plan.Callsign, ac.Position())
	}
	path, err := ac.env.Planner(ac.mesh, from, dest)
	if err != nil {
		return errors.Wrapf(err, "%s: planning %s to %s", ac.Plan.Callsign, from, dest)
	}
	if path.Empty() {
		return errors.Wrapf(ErrNoRoute, "%s: %s to %s", ac.Plan.Callsign, from, dest)
	}
	ac.path = path
	return nil
}

func (ac *Airplane) setStatus(s Status) {
	ac.mu.Lock()
	ac.status = s
	ac.mu.Unlock()

	log.Infof("%s: %s at %s", s, ac.Plan.Callsign, ac.Position())
	if ac.env.Notify != nil {
		ac.env.Notify(ac, s)
	}
}

func (ac *Airplane) setPosition(p types.Vec2) {
	ac.mu.Lock()
	ac.position = p
	ac.mu.Unlock()
}

func (ac *Airplane) setHeading(h float64) {
	ac.mu.Lock()
	ac.heading = h
	ac.mu.Unlock()
}

// abort records err and gives back every lease the airplane still holds.
func (ac *Airplane) abort(err error) {
	ac.mu.Lock()
	ac.err = err
	term := ac.terminal
	ac.terminal = nil
	holds := ac.holdsRunway
	ac.holdsRunway = false
	ac.mu.Unlock()

	if term != nil {
		ac.env.Terminals.Release(term)
	}
	if holds {
		ac.env.Runway.Vacate(ac.ID)
	}
	log.Errorf("ABORT: %s: %v", ac.Plan.Callsign, err)
}

func (ac *Airplane) Status() Status {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.status
}

func (ac *Airplane) Position() types.Vec2 {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.position
}

func (ac *Airplane) Heading() float64 {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.heading
}

func (ac *Airplane) Stalled() bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.stalled
}

// Err is the error that aborted the airplane, if any.
func (ac *Airplane) Err() error {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.err
}

func (ac *Airplane) Snapshot() Snapshot {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	s := Snapshot{
		ID:         ac.ID,
		Callsign:   ac.Plan.Callsign,
		Type:       ac.Plan.Type,
		Passengers: ac.Plan.Passengers,
		Status:     ac.status,
		Position:   ac.position,
		Heading:    ac.heading,
		Stalled:    ac.stalled,
		Err:        ac.err,
	}
	if ac.terminal != nil {
		s.Terminal = ac.terminal.Name
	}
	return s
}
