package aircraft

import (
	"time"

	"airport-sim/internal/game/flightplan"
	"airport-sim/pkg/types"
)

// Status values only ever move forward, in declaration order.
type Status int

const (
	LANDING Status = iota
	LANDED
	LEFTRUNWAY
	OFFBOARDING
	DEPARTED
	HASLEFT
)

var StateStringMap = map[Status]string{
	LANDING:     "LANDING",
	LANDED:      "LANDED",
	LEFTRUNWAY:  "LEFT_RUNWAY",
	OFFBOARDING: "OFFBOARDING",
	DEPARTED:    "DEPARTED",
	HASLEFT:     "HAS_LEFT",
}

func (s Status) String() string {
	if name, ok := StateStringMap[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Timing controls how fast an airplane moves. Position advances by Step
// every Tick on the runway and every TaxiTick after landing.
type Timing struct {
	Tick                 time.Duration
	TaxiTick             time.Duration
	BoardingPerPassenger time.Duration
	FinalCheck           time.Duration
	Step                 float64
}

func DefaultTiming() Timing {
	return Timing{
		Tick:                 5 * time.Millisecond,
		TaxiTick:             25 * time.Millisecond,
		BoardingPerPassenger: 100 * time.Millisecond,
		FinalCheck:           time.Second,
		Step:                 1,
	}
}

// Snapshot is a consistent copy of an airplane's observable state.
type Snapshot struct {
	ID         types.AircraftID
	Callsign   string
	Type       flightplan.AircraftType
	Passengers int
	Status     Status
	Position   types.Vec2
	Heading    float64
	Terminal   string
	Stalled    bool
	Err        error

	// Set by the simulation when another airplane is too close.
	IsConflicting bool
}
