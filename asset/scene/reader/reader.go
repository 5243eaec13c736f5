package reader

import (
	"fmt"

	"github.com/cg-saarland/GloBiE/asset"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/types"
)

// The MeshReader interface is implemented by all triangle mesh readers. Read
// returns a flat list of vertex triples, one per triangle.
type MeshReader interface {
	Read(*asset.Resource) ([]types.Vec3, error)
}

// The BvhReader interface is implemented by all flattened BVH readers.
type BvhReader interface {
	Read(*asset.Resource) (*scene.Bvh, error)
}

// Read triangle soup from a mesh file or URL.
func ReadMesh(filename string) ([]types.Vec3, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader MeshReader
	switch res.Ext() {
	case ".obj":
		reader = newWavefrontReader()
	case ".gltf", ".glb":
		reader = newGltfReader()
	default:
		return nil, fmt.Errorf("readMesh: unsupported file format %q", res.Ext())
	}
	return reader.Read(res)
}

// Read a flattened BVH from a file or URL.
func ReadBvh(filename string) (*scene.Bvh, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var reader BvhReader
	switch res.Ext() {
	case ".bvh":
		reader = newPackedReader()
	case ".zip":
		reader = newZipReader()
	default:
		return nil, fmt.Errorf("readBvh: unsupported file format %q", res.Ext())
	}
	return reader.Read(res)
}
