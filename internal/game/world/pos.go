// Package world provides block-grid positions and the distance and movement
// primitives shared by the village simulation and its behaviors.
package world

import "fmt"

// Pos is an integer block coordinate.
type Pos struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// String returns the position as "(x, y, z)".
func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// DistSqr returns the squared Euclidean distance between p and o.
//
// Postcondition: result >= 0 and DistSqr(p, o) == DistSqr(o, p).
func (p Pos) DistSqr(o Pos) int {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return dx*dx + dy*dy + dz*dz
}

// CloserThan reports whether o lies strictly within dist blocks of p.
//
// Precondition: dist >= 0.
// Postcondition: equivalent to DistSqr(o) < dist*dist.
func (p Pos) CloserThan(o Pos, dist int) bool {
	return p.DistSqr(o) < dist*dist
}

// StepToward returns the position one block closer to target along each axis
// that differs. Returns p unchanged when p == target.
func (p Pos) StepToward(target Pos) Pos {
	return Pos{
		X: p.X + sign(target.X-p.X),
		Y: p.Y + sign(target.Y-p.Y),
		Z: p.Z + sign(target.Z-p.Z),
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
