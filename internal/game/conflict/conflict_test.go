package conflict

import (
	"math"
	"testing"

	"airport-sim/internal/game/aircraft"
	"airport-sim/pkg/types"
)

func at(x, y, heading float64) aircraft.Snapshot {
	return aircraft.Snapshot{Position: types.NewVec2(x, y), Heading: heading}
}

func TestCheckSeparation(t *testing.T) {
	tests := []struct {
		a, b aircraft.Snapshot
		want bool
	}{
		{at(0, 0, 0), at(9, 0, 0), true},
		{at(0, 0, 0), at(10, 0, 0), false},
		{at(0, 0, 0), at(6, 7, 0), true},
		{at(0, 0, 0), at(100, 100, 0), false},
	}
	for _, tt := range tests {
		if got := CheckSeparation(tt.a, tt.b); got != tt.want {
			t.Errorf("CheckSeparation(%s, %s) = %v", tt.a.Position, tt.b.Position, got)
		}
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		heading float64
		want    types.Vec2
	}{
		{0, types.NewVec2(10, 0)},
		{90, types.NewVec2(0, -10)},
		{180, types.NewVec2(-10, 0)},
		{270, types.NewVec2(0, 10)},
	}
	for _, tt := range tests {
		got := Project(types.Vec2{}, tt.heading, 10)
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("Project heading %.0f = %s, want %s", tt.heading, got, tt.want)
		}
	}
}

func TestPredictConflict(t *testing.T) {
	// Head on along the x axis.
	if ok, _, _ := PredictConflict(at(0, 0, 0), at(50, 0, 180), 25); !ok {
		t.Errorf("head-on aircraft not predicted to conflict")
	}
	// Diverging.
	if ok, _, _ := PredictConflict(at(0, 0, 180), at(50, 0, 0), 25); ok {
		t.Errorf("diverging aircraft predicted to conflict")
	}
}

func TestMark(t *testing.T) {
	snaps := []aircraft.Snapshot{at(0, 0, 0), at(5, 0, 0), at(200, 0, 0)}
	if n := Mark(snaps); n != 1 {
		t.Errorf("Mark = %d pairs, want 1", n)
	}
	if !snaps[0].IsConflicting || !snaps[1].IsConflicting || snaps[2].IsConflicting {
		t.Errorf("flags %v %v %v", snaps[0].IsConflicting, snaps[1].IsConflicting, snaps[2].IsConflicting)
	}
}
