package conflict

import (
	"math"

	"airport-sim/internal/game/aircraft"
	"airport-sim/pkg/types"
)

const (
	// MIN_GROUND_SEPARATION is in mesh units (pixels).
	MIN_GROUND_SEPARATION = 10.0
)

func CheckSeparation(ac1, ac2 aircraft.Snapshot) bool {
	distSq := math.Pow(ac1.Position.X-ac2.Position.X, 2) + math.Pow(ac1.Position.Y-ac2.Position.Y, 2)
	return distSq < MIN_GROUND_SEPARATION*MIN_GROUND_SEPARATION
}

// Project moves pos distance units along heading. Headings are
// counterclockwise from the x axis with y growing downwards.
func Project(pos types.Vec2, heading, distance float64) types.Vec2 {
	radians := heading * math.Pi / 180.0
	return types.NewVec2(pos.X+distance*math.Cos(radians), pos.Y-distance*math.Sin(radians))
}

// PredictConflict projects both aircraft ahead along their headings and
// checks separation at the projected positions.
// Returns: (isConflict, projected1, projected2)
func PredictConflict(ac1, ac2 aircraft.Snapshot, lookahead float64) (bool, types.Vec2, types.Vec2) {
	p1 := Project(ac1.Position, ac1.Heading, lookahead)
	p2 := Project(ac2.Position, ac2.Heading, lookahead)
	if p1.DistanceTo(p2) < MIN_GROUND_SEPARATION {
		return true, p1, p2
	}
	return false, types.Vec2{}, types.Vec2{}
}

// Mark flags every snapshot that is too close to another one and returns
// the number of conflicting pairs.
func Mark(snaps []aircraft.Snapshot) int {
	pairs := 0
	for i := 0; i < len(snaps); i++ {
		for j := i + 1; j < len(snaps); j++ {
			if CheckSeparation(snaps[i], snaps[j]) {
				snaps[i].IsConflicting = true
				snaps[j].IsConflicting = true
				pairs++
			}
		}
	}
	return pairs
}
