package aircraft

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"airport-sim/internal/game/airspace"
	"airport-sim/internal/game/astar"
	"airport-sim/internal/game/flightplan"
	"airport-sim/internal/game/graph"
	"airport-sim/pkg/types"

	"github.com/pkg/errors"
)

// smallMesh is a landing point linked to a waiting point, a terminal and
// the runway end.
func smallMesh(t *testing.T) *graph.NavigationMesh {
	t.Helper()
	m, err := graph.Build([]graph.Record{
		{ID: 1, X: 0, Y: 40, Type: "WAYPOINT", Neighbors: graph.NeighborList{2}},
		{ID: 2, X: 40, Y: 40, Type: "LANDINGPOINT_A320", Neighbors: graph.NeighborList{3}},
		{ID: 3, X: 40, Y: 0, Type: "WAITINGPOINT", Neighbors: graph.NeighborList{4}},
		{ID: 4, X: 0, Y: 0, Type: "TERMINAL", Neighbors: graph.NeighborList{5}},
		{ID: 5, X: -40, Y: 0, Type: "ENDPOINT"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func smallLayout() airspace.Layout {
	return airspace.Layout{
		Start:         types.NewPoint(0, 40),
		HoldingPoint:  types.NewPoint(40, 0),
		Endpoint:      types.NewPoint(-40, 0),
		Checkpoint:    types.NewPoint(1000, 1000),
		FinalApproach: types.NewPoint(1000, 1001),
		Runway:        types.Rect{Min: types.NewPoint(0, 30), Max: types.NewPoint(100, 50)},
		Gates:         []types.Point{types.NewPoint(0, 0)},
	}
}

func fastTiming() Timing {
	return Timing{
		Tick:                 20 * time.Microsecond,
		TaxiTick:             20 * time.Microsecond,
		BoardingPerPassenger: time.Microsecond,
		FinalCheck:           time.Millisecond,
		Step:                 1,
	}
}

type recorder struct {
	mu       sync.Mutex
	statuses map[types.AircraftID][]Status
}

func newRecorder() *recorder {
	return &recorder{statuses: make(map[types.AircraftID][]Status)}
}

func (r *recorder) notify(ac *Airplane, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[ac.ID] = append(r.statuses[ac.ID], s)
}

func (r *recorder) get(id types.AircraftID) []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses[id]...)
}

func newEnv(layout airspace.Layout, timing Timing, rec *recorder) Environment {
	return Environment{
		Layout:    layout,
		Runway:    airspace.NewRunway(layout.Runway),
		Terminals: airspace.NewTerminalPool(layout.Gates),
		Timing:    timing,
		Planner:   astar.Search,
		Notify:    rec.notify,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(200 * time.Microsecond)
	}
}

func land(ctx context.Context, t *testing.T, ac *Airplane) error {
	t.Helper()
	if err := ac.RequestRunway(ctx); err != nil {
		t.Fatalf("RequestRunway %s: %v", ac.Plan.Callsign, err)
	}
	return ac.Fly(ctx)
}

func TestSingleAirplaneFullLifecycle(t *testing.T) {
	rec := newRecorder()
	layout := smallLayout()
	env := newEnv(layout, fastTiming(), rec)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go env.Runway.Run(ctx, 100*time.Microsecond)

	plan := flightplan.FlightPlan{Callsign: "DAL100", Type: flightplan.A320, Passengers: 120}
	ac, err := NewAirplane("AC1", plan, smallMesh(t), env)
	if err != nil {
		t.Fatal(err)
	}
	if s := ac.Snapshot(); s.Status != LANDING || !s.Position.Equals(layout.Start) || s.Heading != 0 {
		t.Errorf("initial snapshot %+v", s)
	}

	if err := land(ctx, t, ac); err != nil {
		t.Fatalf("Fly: %v", err)
	}

	want := []Status{LANDED, LEFTRUNWAY, OFFBOARDING, DEPARTED, HASLEFT}
	got := rec.get(ac.ID)
	if len(got) != len(want) {
		t.Fatalf("statuses %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statuses %v, want %v", got, want)
		}
	}
	if !ac.Position().Equals(layout.Endpoint) {
		t.Errorf("final position %s, want %s", ac.Position(), layout.Endpoint)
	}
	if env.Runway.IsBlocked() {
		t.Errorf("runway still blocked")
	}
	if env.Terminals.Free() != 1 {
		t.Errorf("terminal still leased")
	}
	if ac.Stalled() || ac.Err() != nil {
		t.Errorf("stalled %v err %v", ac.Stalled(), ac.Err())
	}
}

func TestDepartureRequestsRunwayAtCheckpoint(t *testing.T) {
	mesh, err := graph.LoadFile(filepath.Join("..", "..", "..", "resources", "graph.json"))
	if err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	layout := airspace.DefaultLayout()
	env := newEnv(layout, fastTiming(), rec)

	var mu sync.Mutex
	var heldAt []Status
	env.Notify = func(a *Airplane, s Status) {
		rec.notify(a, s)
		mu.Lock()
		defer mu.Unlock()
		if env.Runway.Holder() == a.ID {
			heldAt = append(heldAt, s)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	go env.Runway.Run(ctx, 100*time.Microsecond)

	plan := flightplan.FlightPlan{Callsign: "UAL200", Type: flightplan.A380, Passengers: 300}
	ac, err := NewAirplane("AC1", plan, mesh, env)
	if err != nil {
		t.Fatal(err)
	}

	takeoff := make(chan struct{})
	go func() {
		for ctx.Err() == nil {
			if ac.Status() == DEPARTED && env.Runway.Holder() == ac.ID {
				close(takeoff)
				return
			}
			time.Sleep(100 * time.Microsecond)
		}
	}()

	if err := land(ctx, t, ac); err != nil {
		t.Fatalf("Fly: %v", err)
	}
	select {
	case <-takeoff:
	default:
		t.Errorf("runway never held on the take-off run")
	}

	if ac.Status() != HASLEFT || !ac.Position().Equals(layout.Endpoint) {
		t.Fatalf("ended %s at %s", ac.Status(), ac.Position())
	}
	if h := ac.Heading(); h != 0 {
		t.Errorf("heading on the take-off run %.1f, want 0", h)
	}
	// Status changes on the ground happen after the runway was vacated.
	mu.Lock()
	defer mu.Unlock()
	if len(heldAt) != 1 || heldAt[0] != LANDED {
		t.Errorf("runway held at %v, want only [LANDED]", heldAt)
	}
	if env.Runway.IsBlocked() {
		t.Errorf("runway still blocked after departure")
	}
	if env.Terminals.Free() != len(layout.Gates) {
		t.Errorf("%d terminals free", env.Terminals.Free())
	}
}

func TestLifecycleIsMonotonic(t *testing.T) {
	mesh, err := graph.LoadFile(filepath.Join("..", "..", "..", "resources", "graph.json"))
	if err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	env := newEnv(airspace.DefaultLayout(), fastTiming(), rec)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go env.Runway.Run(ctx, 100*time.Microsecond)

	var planes []*Airplane
	for i, ty := range flightplan.AllTypes() {
		plan := flightplan.FlightPlan{Callsign: fmt.Sprintf("JAL%03d", i), Type: ty, Passengers: 100}
		ac, err := NewAirplane(types.AircraftID(fmt.Sprintf("AC%d", i)), plan, mesh, env)
		if err != nil {
			t.Fatal(err)
		}
		planes = append(planes, ac)
	}

	var wg sync.WaitGroup
	for _, ac := range planes {
		wg.Add(1)
		go func(ac *Airplane) {
			defer wg.Done()
			if err := ac.RequestRunway(ctx); err != nil {
				t.Errorf("RequestRunway: %v", err)
				return
			}
			if err := ac.Fly(ctx); err != nil {
				t.Errorf("Fly %s: %v", ac.Plan.Callsign, err)
			}
		}(ac)
	}
	wg.Wait()

	for _, ac := range planes {
		prev := LANDING
		got := rec.get(ac.ID)
		for _, s := range got {
			if s != prev+1 {
				t.Errorf("%s statuses %v are not a forward sequence", ac.Plan.Callsign, got)
				break
			}
			prev = s
		}
		if prev != HASLEFT {
			t.Errorf("%s finished in %s", ac.Plan.Callsign, prev)
		}
	}
}

func TestStepMismatchStalls(t *testing.T) {
	timing := fastTiming()
	timing.Step = 3
	rec := newRecorder()
	env := newEnv(smallLayout(), timing, rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	plan := flightplan.FlightPlan{Callsign: "AAL300", Type: flightplan.A320, Passengers: 80}
	ac, err := NewAirplane("AC1", plan, smallMesh(t), env)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- ac.Fly(ctx) }()
	waitFor(t, "stall", ac.Stalled)

	if ac.Status() != LANDING {
		t.Errorf("status %s, want LANDING", ac.Status())
	}
	// 14 steps of 3 overshoot the landing point at x=40.
	if p := ac.Position(); p.X != 42 || p.Y != 40 {
		t.Errorf("stalled at %s", p)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Fly after shutdown: %v", err)
	}
	if ac.Err() != nil {
		t.Errorf("stall recorded as error %v", ac.Err())
	}
}

func TestNoFreeTerminalAbortsSecondAirplane(t *testing.T) {
	timing := fastTiming()
	timing.BoardingPerPassenger = 20 * time.Millisecond // first one dwells for 2s
	rec := newRecorder()
	env := newEnv(smallLayout(), timing, rec)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go env.Runway.Run(ctx, 100*time.Microsecond)

	first, err := NewAirplane("AC1", flightplan.FlightPlan{Callsign: "SWA100", Type: flightplan.A320, Passengers: 100}, smallMesh(t), env)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewAirplane("AC2", flightplan.FlightPlan{Callsign: "SWA200", Type: flightplan.A320, Passengers: 100}, smallMesh(t), env)
	if err != nil {
		t.Fatal(err)
	}

	firstDone := make(chan error, 1)
	go func() {
		if err := first.RequestRunway(ctx); err != nil {
			firstDone <- err
			return
		}
		firstDone <- first.Fly(ctx)
	}()
	waitFor(t, "first at the gate", func() bool { return first.Status() == OFFBOARDING })

	err = land(ctx, t, second)
	var re *airspace.ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("second airplane returned %v, want a ResourceError", err)
	}
	if re.Aircraft != second.ID {
		t.Errorf("ResourceError for %s", re.Aircraft)
	}
	if !errors.As(second.Err(), &re) {
		t.Errorf("Err() = %v", second.Err())
	}
	if h := env.Terminals.Terminals()[0].Holder(); h != first.ID {
		t.Errorf("gate held by %q", h)
	}
	if env.Runway.IsBlocked() {
		t.Errorf("runway left blocked")
	}

	cancel()
	if err := <-firstDone; err != nil {
		t.Errorf("first airplane: %v", err)
	}
}

func TestAbortReleasesRunway(t *testing.T) {
	// The waiting point cannot be reached from the landing point.
	mesh, err := graph.Build([]graph.Record{
		{ID: 1, X: 0, Y: 40, Type: "WAYPOINT", Neighbors: graph.NeighborList{2}},
		{ID: 2, X: 40, Y: 40, Type: "LANDINGPOINT_A320"},
		{ID: 3, X: 40, Y: 0, Type: "WAITINGPOINT"},
	})
	if err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	env := newEnv(smallLayout(), fastTiming(), rec)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go env.Runway.Run(ctx, 100*time.Microsecond)

	ac, err := NewAirplane("AC1", flightplan.FlightPlan{Callsign: "FFT100", Type: flightplan.A320, Passengers: 90}, mesh, env)
	if err != nil {
		t.Fatal(err)
	}
	err = land(ctx, t, ac)
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("Fly returned %v, want ErrNoRoute", err)
	}
	if env.Runway.IsBlocked() || env.Runway.Holder() != "" {
		t.Errorf("aborted airplane still holds the runway")
	}
	if len(rec.get(ac.ID)) != 0 {
		t.Errorf("status changed to %v before the failed re-plan", rec.get(ac.ID))
	}
}

func TestNewAirplaneErrors(t *testing.T) {
	env := newEnv(smallLayout(), fastTiming(), newRecorder())

	_, err := NewAirplane("AC1", flightplan.FlightPlan{Callsign: "AI100", Type: flightplan.A380}, smallMesh(t), env)
	if err == nil {
		t.Errorf("expected an error for a mesh without an A380 landing point")
	}

	env.Layout.Start = types.NewPoint(5, 5)
	_, err = NewAirplane("AC1", flightplan.FlightPlan{Callsign: "AI100", Type: flightplan.A320}, smallMesh(t), env)
	var le *astar.LookupError
	if !errors.As(err, &le) {
		t.Errorf("expected a LookupError for a start off the mesh, got %v", err)
	}
}
