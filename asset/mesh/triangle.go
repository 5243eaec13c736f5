// Package mesh converts raw vertex triples into the triangle records used
// while building the BVH.
package mesh

import (
	"fmt"

	"github.com/cg-saarland/GloBiE/types"
)

// A build-time triangle. Triangles are only used for bounding and for
// resolving leaf references; the packed leaf format is derived separately.
type Triangle struct {
	V0, V1, V2 types.Vec3

	// Index of this triangle in the input vertex stream.
	Index int

	bbox   types.BBox
	center types.Vec3
}

// Create a triangle record for the given vertices.
func NewTriangle(index int, v0, v1, v2 types.Vec3) Triangle {
	bbox := types.BBox{
		types.MinVec3(v0, types.MinVec3(v1, v2)),
		types.MaxVec3(v0, types.MaxVec3(v1, v2)),
	}
	return Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		Index:  index,
		bbox:   bbox,
		center: bbox.Center(),
	}
}

// Get the triangle AABB.
func (t *Triangle) BBox() types.BBox {
	return t.bbox
}

// Get the triangle AABB center.
func (t *Triangle) Center() types.Vec3 {
	return t.center
}

// Get the index of the triangle in the input stream.
func (t *Triangle) PrimitiveIndex() int {
	return t.Index
}

// Convert a flat list of vertex triples into triangle records. Record i
// corresponds to vertices 3i, 3i+1 and 3i+2.
//
// A vertex count that is not a multiple of 3 violates the caller contract
// and causes a panic.
func FromVertices(vertices []types.Vec3) []Triangle {
	if len(vertices)%3 != 0 {
		panic(fmt.Sprintf("mesh: vertex count %d is not a multiple of 3", len(vertices)))
	}

	tris := make([]Triangle, len(vertices)/3)
	for i := range tris {
		tris[i] = NewTriangle(i, vertices[3*i], vertices[3*i+1], vertices[3*i+2])
	}
	return tris
}

// Convert a flat x,y,z float stream (9 floats per triangle) into triangle
// records. A length that is not a multiple of 9 causes a panic.
func FromFloats(coords []float32) []Triangle {
	if len(coords)%9 != 0 {
		panic(fmt.Sprintf("mesh: coordinate count %d is not a multiple of 9", len(coords)))
	}

	vertices := make([]types.Vec3, len(coords)/3)
	for i := range vertices {
		vertices[i] = types.Vec3{coords[3*i], coords[3*i+1], coords[3*i+2]}
	}
	return FromVertices(vertices)
}
