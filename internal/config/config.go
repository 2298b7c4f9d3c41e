package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"airport-sim/internal/game/flightplan"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds the application configuration
type Config struct {
	GraphFile string

	MaxAircraft          int
	Tick                 time.Duration
	TaxiTick             time.Duration
	BoardingPerPassenger time.Duration
	FinalCheck           time.Duration
	Step                 float64
	AdmissionInterval    time.Duration
	SpawnInterval        time.Duration
	ReapInterval         time.Duration

	Router string // "astar" or "exact"
	Fleet  []flightplan.AircraftType
	Seed   int64

	LogLevel string
	LogFile  string

	WindowWidth  int
	WindowHeight int
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	var err error
	c := &Config{
		GraphFile: getString("AIRPORT_GRAPH_FILE", "resources/graph.json"),
		Router:    strings.ToLower(getString("AIRPORT_ROUTER", "astar")),
		LogLevel:  strings.ToLower(getString("AIRPORT_LOG_LEVEL", "info")),
		LogFile:   os.Getenv("AIRPORT_LOG_FILE"),
	}

	ints := []struct {
		name string
		def  int
		dst  *int
	}{
		{"AIRPORT_MAX_AIRCRAFT", 5, &c.MaxAircraft},
		{"AIRPORT_WINDOW_WIDTH", 1420, &c.WindowWidth},
		{"AIRPORT_WINDOW_HEIGHT", 420, &c.WindowHeight},
	}
	for _, v := range ints {
		if *v.dst, err = getInt(v.name, v.def); err != nil {
			return nil, err
		}
		if *v.dst <= 0 {
			return nil, errors.Errorf("%s must be positive, got %d", v.name, *v.dst)
		}
	}

	durations := []struct {
		name string
		def  time.Duration
		dst  *time.Duration
	}{
		{"AIRPORT_TICK", 5 * time.Millisecond, &c.Tick},
		{"AIRPORT_TAXI_TICK", 25 * time.Millisecond, &c.TaxiTick},
		{"AIRPORT_BOARDING_PER_PASSENGER", 100 * time.Millisecond, &c.BoardingPerPassenger},
		{"AIRPORT_FINAL_CHECK", time.Second, &c.FinalCheck},
		{"AIRPORT_ADMISSION_INTERVAL", time.Second, &c.AdmissionInterval},
		{"AIRPORT_SPAWN_INTERVAL", time.Millisecond, &c.SpawnInterval},
		{"AIRPORT_REAP_INTERVAL", time.Second, &c.ReapInterval},
	}
	for _, v := range durations {
		if *v.dst, err = getDuration(v.name, v.def); err != nil {
			return nil, err
		}
	}

	if c.Step, err = getFloat("AIRPORT_STEP", 1); err != nil {
		return nil, err
	}
	if c.Step <= 0 {
		return nil, errors.Errorf("AIRPORT_STEP must be positive, got %g", c.Step)
	}

	if c.Seed, err = getInt64("AIRPORT_SEED", 0); err != nil {
		return nil, err
	}

	if c.Fleet, err = flightplan.ParseFleet(getString("AIRPORT_FLEET", "A320,A380,B777,B747")); err != nil {
		return nil, errors.Wrap(err, "AIRPORT_FLEET")
	}

	switch c.Router {
	case "astar", "exact":
	default:
		return nil, errors.Errorf("AIRPORT_ROUTER must be astar or exact, got %q", c.Router)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "off":
	default:
		return nil, errors.Errorf("AIRPORT_LOG_LEVEL must be debug, info, warn, error or off, got %q", c.LogLevel)
	}

	return c, nil
}

func getString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func getInt(name string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return i, nil
}

func getInt64(name string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return i, nil
}

func getFloat(name string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return f, nil
}

func getDuration(name string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive, got %s", name, d)
	}
	return d, nil
}
