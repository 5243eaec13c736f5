package types

import "math"

// An axis aligned bounding box. Index 0 holds the min corner and index 1
// the max corner.
type BBox [2]Vec3

// Return an inverted box that acts as the identity for Extend and Union.
func EmptyBBox() BBox {
	inf := float32(math.Inf(1))
	return BBox{
		{inf, inf, inf},
		{-inf, -inf, -inf},
	}
}

// Grow the box so that it contains point p.
func (b BBox) Extend(p Vec3) BBox {
	return BBox{MinVec3(b[0], p), MaxVec3(b[1], p)}
}

// Return the smallest box containing both boxes.
func (b BBox) Union(o BBox) BBox {
	return BBox{MinVec3(b[0], o[0]), MaxVec3(b[1], o[1])}
}

// Get the box center.
func (b BBox) Center() Vec3 {
	return b[0].Add(b[1]).Mul(0.5)
}

// Returns true if min <= max along every axis.
func (b BBox) IsValid() bool {
	return b[0][0] <= b[1][0] && b[0][1] <= b[1][1] && b[0][2] <= b[1][2]
}

// Half of the box surface area; empty boxes report 0.
func (b BBox) HalfArea() float32 {
	if !b.IsValid() {
		return 0
	}
	side := b[1].Sub(b[0])
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}
