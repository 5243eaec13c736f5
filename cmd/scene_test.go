package cmd

import (
	"testing"

	"github.com/cg-saarland/GloBiE/asset/compiler"
	"github.com/cg-saarland/GloBiE/asset/mesh"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/types"
	"github.com/stretchr/testify/require"
)

func TestOutputFilename(t *testing.T) {
	require.Equal(t, "models/bunny.bvh", outputFilename("models/bunny.obj", "bvh"))
	require.Equal(t, "models/bunny.zip", outputFilename("models/bunny.glb", "zip"))
	require.Equal(t, "noext.bvh", outputFilename("noext", "bvh"))
}

func TestVerify(t *testing.T) {
	tris := mesh.FromVertices([]types.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{5, 0, 0}, {6, 0, 0}, {5, 1, 0},
	})
	b := compiler.Compile(tris, compiler.Options{})
	require.NoError(t, verify(b))

	b.Leaves[0].PrimID[0] = scene.InvalidPrimitive
	require.Error(t, verify(b))
}
