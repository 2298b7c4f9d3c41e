package types

import (
	"fmt"
	"math"
)

type AircraftID string

// Point is an integer coordinate on the airport map. Graph nodes live on
// points; aircraft move between them.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewPoint(x, y int) Point {
	return Point{x, y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns |dx| + |dy|.
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func (p Point) Vec2() Vec2 {
	return Vec2{float64(p.X), float64(p.Y)}
}

type Vec2 struct {
	X float64
	Y float64
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{x, y}
}

func (v1 Vec2) DistanceTo(v2 Vec2) float64 {
	dx := v1.X - v2.X
	dy := v1.Y - v2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AngleTo returns the direction from v1 to v2 in degrees, counterclockwise
// from the positive x axis as seen on screen (y grows downwards), in [0, 360).
func (v1 Vec2) AngleTo(v2 Vec2) float64 {
	dx := v2.X - v1.X
	dy := v1.Y - v2.Y
	angle := math.Atan2(dy, dx) * 180.0 / math.Pi
	return math.Mod(angle+360, 360)
}

// Equals reports whether v1 sits exactly on p.
func (v1 Vec2) Equals(p Point) bool {
	return v1.X == float64(p.X) && v1.Y == float64(p.Y)
}

// Point converts v1 to an integer coordinate. ok is false if either
// component has a fractional part.
func (v1 Vec2) Point() (p Point, ok bool) {
	if v1.X != math.Trunc(v1.X) || v1.Y != math.Trunc(v1.Y) {
		return Point{}, false
	}
	return Point{int(v1.X), int(v1.Y)}, true
}

func (v1 Vec2) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", v1.X, v1.Y)
}

// Rect is an axis-aligned rectangle with Min the top-left corner.
type Rect struct {
	Min Point
	Max Point
}

func (r Rect) Contains(v Vec2) bool {
	return v.X >= float64(r.Min.X) && v.X <= float64(r.Max.X) &&
		v.Y >= float64(r.Min.Y) && v.Y <= float64(r.Max.Y)
}

func (r Rect) Width() int  { return r.Max.X - r.Min.X }
func (r Rect) Height() int { return r.Max.Y - r.Min.Y }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
