package flightplan

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"airport-sim/internal/game/graph"

	"github.com/MichaelTJones/pcg"
	"github.com/pkg/errors"
)

type AircraftType int

const (
	A320 AircraftType = iota
	A380
	B777
	B747
)

var TypeStringMap = map[AircraftType]string{
	A320: "A320",
	A380: "A380",
	B777: "B777",
	B747: "B747",
}

func (t AircraftType) String() string {
	if s, ok := TypeStringMap[t]; ok {
		return s
	}
	return fmt.Sprintf("AircraftType(%d)", int(t))
}

func ParseType(s string) (AircraftType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for t, name := range TypeStringMap {
		if name == s {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown aircraft type %q", s)
}

// ParseFleet parses a comma separated list of aircraft types.
func ParseFleet(s string) ([]AircraftType, error) {
	var fleet []AircraftType
	for _, f := range strings.Split(s, ",") {
		if strings.TrimSpace(f) == "" {
			continue
		}
		t, err := ParseType(f)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, t)
	}
	if len(fleet) == 0 {
		return nil, errors.New("empty fleet")
	}
	return fleet, nil
}

func AllTypes() []AircraftType {
	return []AircraftType{A320, A380, B777, B747}
}

// PassengerRange is inclusive on both ends.
type PassengerRange struct {
	Min, Max int
}

var Passengers = map[AircraftType]PassengerRange{
	A320: {80, 179},
	A380: {100, 508},
	B777: {100, 450},
	B747: {100, 299},
}

// LandingCategory is the landing point node an aircraft of type t brakes to.
func LandingCategory(t AircraftType) graph.Category {
	switch t {
	case A320:
		return graph.LANDINGPOINT_A320
	case A380:
		return graph.LANDINGPOINT_A380
	default:
		return graph.LANDINGPOINT_OTHERS
	}
}

type FlightPlan struct {
	Callsign   string
	Type       AircraftType
	Passengers int
}

func (fp FlightPlan) String() string {
	return fmt.Sprintf("%s (%s, %d pax)", fp.Callsign, fp.Type, fp.Passengers)
}

var airlinePrefixes = []string{"AAL", "SWA", "DAL", "UAL", "JBU", "ASA", "FFT", "AI", "JAL"}

// Generator draws flight plans. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	r     *pcg.PCG32
	fleet []AircraftType
}

// NewGenerator returns a generator drawing types from fleet (all types when
// empty). A zero seed seeds from the clock.
func NewGenerator(fleet []AircraftType, seed int64) *Generator {
	if len(fleet) == 0 {
		fleet = AllTypes()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := pcg.NewPCG32()
	r.Seed(uint64(seed), 0xda3e39cb94b95bdb)
	return &Generator{r: r, fleet: fleet}
}

func (g *Generator) intn(n int) int {
	return int(g.r.Bounded(uint32(n)))
}

func (g *Generator) Next() FlightPlan {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.fleet[g.intn(len(g.fleet))]
	pr := Passengers[t]
	return FlightPlan{
		Callsign:   fmt.Sprintf("%s%03d", airlinePrefixes[g.intn(len(airlinePrefixes))], g.intn(1000)),
		Type:       t,
		Passengers: pr.Min + g.intn(pr.Max-pr.Min+1),
	}
}
