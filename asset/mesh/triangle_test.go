package mesh

import (
	"testing"

	"github.com/cg-saarland/GloBiE/types"
	"github.com/stretchr/testify/require"
)

func TestFromVerticesPreservesOrder(t *testing.T) {
	vertices := []types.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{2, 2, 2}, {3, 2, 2}, {2, 3, 5},
	}

	tris := FromVertices(vertices)
	require.Len(t, tris, 2)

	for i, tri := range tris {
		require.Equal(t, i, tri.PrimitiveIndex())
		require.Equal(t, vertices[3*i], tri.V0)
		require.Equal(t, vertices[3*i+1], tri.V1)
		require.Equal(t, vertices[3*i+2], tri.V2)
	}

	require.Equal(t, types.BBox{{2, 2, 2}, {3, 3, 5}}, tris[1].BBox())
	require.Equal(t, types.Vec3{2.5, 2.5, 3.5}, tris[1].Center())
}

func TestFromFloats(t *testing.T) {
	tris := FromFloats([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	require.Len(t, tris, 1)
	require.Equal(t, types.Vec3{0, 1, 0}, tris[0].V2)
}

func TestDegenerateTriangleIsAccepted(t *testing.T) {
	tris := FromVertices([]types.Vec3{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}})
	require.Len(t, tris, 1)
	require.True(t, tris[0].BBox().IsValid())
}

func TestMalformedInputPanics(t *testing.T) {
	require.Panics(t, func() { FromVertices(make([]types.Vec3, 4)) })
	require.Panics(t, func() { FromFloats(make([]float32, 10)) })
}

func TestEmptyInput(t *testing.T) {
	require.Empty(t, FromVertices(nil))
}
