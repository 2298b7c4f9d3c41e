package simulation

import (
	"context"
	"sort"
	"sync"
	"time"

	"airport-sim/internal/game/aircraft"
	"airport-sim/internal/game/airspace"
	"airport-sim/internal/game/astar"
	"airport-sim/internal/game/conflict"
	"airport-sim/internal/game/flightplan"
	"airport-sim/internal/game/graph"
	"airport-sim/pkg/types"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	MaxAircraft       int
	SpawnInterval     time.Duration
	ReapInterval      time.Duration
	AdmissionInterval time.Duration
	Timing            aircraft.Timing
	Planner           aircraft.Planner
	Fleet             []flightplan.AircraftType
	Seed              int64 // 0 seeds from the clock

	// OnStatus, if set, is called after every status change of any airplane.
	OnStatus func(snap aircraft.Snapshot)
}

func DefaultOptions() Options {
	return Options{
		MaxAircraft:       5,
		SpawnInterval:     time.Millisecond,
		ReapInterval:      time.Second,
		AdmissionInterval: time.Second,
		Timing:            aircraft.DefaultTiming(),
		Planner:           astar.Search,
		Fleet:             flightplan.AllTypes(),
	}
}

type Stats struct {
	Spawned    int
	Departures int
	Lost       int
}

type Simulation struct {
	Mesh   *graph.NavigationMesh
	Layout airspace.Layout

	runway    *airspace.Runway
	terminals *airspace.TerminalPool
	plans     *flightplan.Generator
	opts      Options

	mu        sync.Mutex
	aircrafts map[types.AircraftID]*aircraft.Airplane
	stats     Stats

	radioMu         sync.Mutex
	radioLog        []RadioMessage
	maxRadioLogSize int

	flights sync.WaitGroup
}

// NewSimulation checks layout against mesh and sets up the runway and
// terminals. Zero fields of opts take their default.
func NewSimulation(mesh *graph.NavigationMesh, layout airspace.Layout, opts Options) (*Simulation, error) {
	if err := layout.Validate(mesh); err != nil {
		return nil, errors.Wrap(err, "layout does not fit the navigation mesh")
	}

	def := DefaultOptions()
	if opts.MaxAircraft <= 0 {
		opts.MaxAircraft = def.MaxAircraft
	}
	if opts.SpawnInterval <= 0 {
		opts.SpawnInterval = def.SpawnInterval
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = def.ReapInterval
	}
	if opts.AdmissionInterval <= 0 {
		opts.AdmissionInterval = def.AdmissionInterval
	}
	if opts.Timing == (aircraft.Timing{}) {
		opts.Timing = def.Timing
	}
	if opts.Planner == nil {
		opts.Planner = def.Planner
	}

	return &Simulation{
		Mesh:            mesh,
		Layout:          layout,
		runway:          airspace.NewRunway(layout.Runway),
		terminals:       airspace.NewTerminalPool(layout.Gates),
		plans:           flightplan.NewGenerator(opts.Fleet, opts.Seed),
		opts:            opts,
		aircrafts:       make(map[types.AircraftID]*aircraft.Airplane),
		maxRadioLogSize: 50,
	}, nil
}

// Run drives runway admission, spawning and reaping until ctx is done or
// one of them fails, then waits for every airplane task to stop.
func (s *Simulation) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.runway.Run(ctx, s.opts.AdmissionInterval) })
	g.Go(func() error { return s.spawnLoop(ctx) })
	g.Go(func() error { return s.reapLoop(ctx) })

	err := g.Wait()
	s.flights.Wait()
	log.Infof("SIMULATION: stopped, %+v", s.Stats())
	return err
}

func (s *Simulation) spawnLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.SpawnInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.Count() >= s.opts.MaxAircraft || s.runway.IsBlocked() {
				continue
			}
			if _, err := s.SpawnAircraft(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (s *Simulation) reapLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Reap()
		}
	}
}

func (s *Simulation) env() aircraft.Environment {
	return aircraft.Environment{
		Layout:    s.Layout,
		Runway:    s.runway,
		Terminals: s.terminals,
		Timing:    s.opts.Timing,
		Planner:   s.opts.Planner,
		Notify:    s.onStatus,
	}
}

// SpawnAircraft creates an airplane, waits for the runway to admit it and
// starts its movement task. The airplane is only registered once admitted.
func (s *Simulation) SpawnAircraft(ctx context.Context) (*aircraft.Airplane, error) {
	plan := s.plans.Next()
	ac, err := aircraft.NewAirplane(types.AircraftID(uuid.NewString()), plan, s.Mesh, s.env())
	if err != nil {
		return nil, errors.Wrapf(err, "spawning %s", plan)
	}
	if err := ac.RequestRunway(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.aircrafts[ac.ID] = ac
	s.stats.Spawned++
	s.mu.Unlock()

	log.Infof("SPAWN: %s on final", plan)
	s.AddRadioMessage(plan.Callsign, "On final, cleared to land.", false)

	s.flights.Add(1)
	go func() {
		defer s.flights.Done()
		ac.Fly(ctx)
	}()
	return ac, nil
}

var statusMessages = map[aircraft.Status]string{
	aircraft.LANDED:      "Touchdown, taxiing to holding point.",
	aircraft.LEFTRUNWAY:  "Runway vacated.",
	aircraft.OFFBOARDING: "At the gate, offboarding.",
	aircraft.DEPARTED:    "Taxiing to the runway.",
	aircraft.HASLEFT:     "Airborne, good day.",
}

func (s *Simulation) onStatus(ac *aircraft.Airplane, status aircraft.Status) {
	if msg, ok := statusMessages[status]; ok {
		s.AddRadioMessage(ac.Plan.Callsign, msg, false)
	}
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(ac.Snapshot())
	}
}

// Reap removes airplanes that have left from the runway end, and airplanes
// that aborted. It returns how many were removed.
func (s *Simulation) Reap() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ac := range s.aircrafts {
		snap := ac.Snapshot()
		switch {
		case snap.Status == aircraft.HASLEFT && snap.Position.Equals(s.Layout.Endpoint):
			log.Infof("DEPARTURE: %s removed", snap.Callsign)
			s.stats.Departures++
		case snap.Err != nil:
			log.Errorf("LOST: %s removed after %v", snap.Callsign, snap.Err)
			s.AddRadioMessage(snap.Callsign, "Lost contact.", true)
			s.stats.Lost++
		default:
			continue
		}
		delete(s.aircrafts, id)
		removed++
	}
	return removed
}

func (s *Simulation) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.aircrafts)
}

// Aircrafts returns the live airplanes ordered by callsign.
func (s *Simulation) Aircrafts() []*aircraft.Airplane {
	s.mu.Lock()
	list := make([]*aircraft.Airplane, 0, len(s.aircrafts))
	for _, ac := range s.aircrafts {
		list = append(list, ac)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Plan.Callsign != list[j].Plan.Callsign {
			return list[i].Plan.Callsign < list[j].Plan.Callsign
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Snapshot returns every live airplane's state with conflict flags set.
func (s *Simulation) Snapshot() []aircraft.Snapshot {
	list := s.Aircrafts()
	snaps := make([]aircraft.Snapshot, len(list))
	for i, ac := range list {
		snaps[i] = ac.Snapshot()
	}
	conflict.Mark(snaps)
	return snaps
}

func (s *Simulation) Runway() *airspace.Runway {
	return s.runway
}

func (s *Simulation) Terminals() *airspace.TerminalPool {
	return s.terminals
}

func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
