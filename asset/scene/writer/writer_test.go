package writer

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/cg-saarland/GloBiE/asset/compiler"
	"github.com/cg-saarland/GloBiE/asset/mesh"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/asset/scene/reader"
	"github.com/cg-saarland/GloBiE/types"
	"github.com/stretchr/testify/require"
)

func compileRandom(t *testing.T, count int) *scene.Bvh {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(count)))
	vertices := make([]types.Vec3, 0, 3*count)
	for i := 0; i < count; i++ {
		origin := types.Vec3{rng.Float32() * 20, rng.Float32() * 20, rng.Float32() * 20}
		for v := 0; v < 3; v++ {
			vertices = append(vertices, origin.Add(types.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}))
		}
	}
	return compiler.Compile(mesh.FromVertices(vertices), compiler.Options{})
}

func TestRoundTrip(t *testing.T) {
	b := compileRandom(t, 300)
	for _, ext := range []string{".bvh", ".zip"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			require.NoError(t, WriteBvh(b, path))

			loaded, err := reader.ReadBvh(path)
			require.NoError(t, err)
			require.Equal(t, b.BuildID, loaded.BuildID)
			require.Equal(t, b.Nodes, loaded.Nodes)
			require.Equal(t, b.Leaves, loaded.Leaves)
			require.NoError(t, loaded.Validate(300))
		})
	}
}

func TestPackedRoundTripEmpty(t *testing.T) {
	b := compiler.Compile(nil, compiler.Options{})
	path := filepath.Join(t.TempDir(), "empty.bvh")
	require.NoError(t, WriteBvh(b, path))

	loaded, err := reader.ReadBvh(path)
	require.NoError(t, err)
	require.Empty(t, loaded.Nodes)
	require.Empty(t, loaded.Leaves)
	require.Equal(t, b.BuildID, loaded.BuildID)
}

func TestUnsupportedFormat(t *testing.T) {
	b := compileRandom(t, 4)
	err := WriteBvh(b, filepath.Join(t.TempDir(), "out.json"))
	require.EqualError(t, err, `writeBvh: unsupported file format ".json"`)
}

func TestPackedCorruption(t *testing.T) {
	b := compileRandom(t, 50)
	path := filepath.Join(t.TempDir(), "out.bvh")
	require.NoError(t, WriteBvh(b, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("bad magic", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[0] = 'X'
		target := filepath.Join(t.TempDir(), "magic.bvh")
		require.NoError(t, os.WriteFile(target, corrupt, 0o644))

		_, err := reader.ReadBvh(target)
		require.Error(t, err)
		require.Contains(t, err.Error(), "is not a packed BVH file")
	})

	t.Run("bad version", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[4] = scene.PackedVersion + 1
		target := filepath.Join(t.TempDir(), "version.bvh")
		require.NoError(t, os.WriteFile(target, corrupt, 0o644))

		_, err := reader.ReadBvh(target)
		require.EqualError(t, err, "packedReader: unsupported format version 2")
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		// The checksum occupies the last 8 header bytes
		corrupt[39] ^= 0xff
		target := filepath.Join(t.TempDir(), "checksum.bvh")
		require.NoError(t, os.WriteFile(target, corrupt, 0o644))

		_, err := reader.ReadBvh(target)
		require.Error(t, err)
		require.Contains(t, err.Error(), "checksum mismatch")
	})

	t.Run("truncated header", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "short.bvh")
		require.NoError(t, os.WriteFile(target, data[:10], 0o644))

		_, err := reader.ReadBvh(target)
		require.Error(t, err)
		require.Contains(t, err.Error(), "could not read header")
	})
}
