// Package geo provides plane geometry primitives for repeater placement.
package geo

import "math"

// Coordinate is a point in 3-D space. Repeater grids are planar: both
// generated and GraphML-imported topologies leave Z at zero. Distance
// still takes Z into account.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// Distance returns the Euclidean distance between two coordinates.
func Distance(a, b Coordinate) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
