package reader

import (
	"fmt"
	"time"

	"github.com/cg-saarland/GloBiE/asset"
	"github.com/cg-saarland/GloBiE/log"
	"github.com/cg-saarland/GloBiE/types"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type gltfReader struct {
	logger log.Logger
}

// Create a new glTF mesh reader.
func newGltfReader() *gltfReader {
	return &gltfReader{
		logger: log.New("gltf reader"),
	}
}

// Read the triangle primitives of a glTF or GLB document. Node transforms
// are not applied; positions are emitted in mesh space.
func (r *gltfReader) Read(res *asset.Resource) ([]types.Vec3, error) {
	r.logger.Noticef(`parsing mesh from "%s"`, res.Path())
	start := time.Now()

	var (
		doc *gltf.Document
		err error
	)
	if res.IsRemote() {
		doc = new(gltf.Document)
		err = gltf.NewDecoder(res).Decode(doc)
	} else {
		doc, err = gltf.Open(res.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("gltf reader: could not decode %q: %w", res.Path(), err)
	}

	triangles := make([]types.Vec3, 0)
	var skipped int
	for meshIndex, m := range doc.Meshes {
		for primIndex, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				skipped++
				continue
			}
			out, err := r.readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("gltf reader: mesh %d primitive %d: %w", meshIndex, primIndex, err)
			}
			triangles = append(triangles, out...)
		}
	}

	if skipped > 0 {
		r.logger.Warningf("skipped %d non-triangle primitives", skipped)
	}
	r.logger.Noticef(
		"parsed %d triangles (%d meshes) in %d ms",
		len(triangles)/3, len(doc.Meshes), time.Since(start).Nanoseconds()/1e6,
	)
	return triangles, nil
}

func (r *gltfReader) readPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]types.Vec3, error) {
	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("missing POSITION attribute")
	}
	if int(posIndex) >= len(doc.Accessors) {
		return nil, fmt.Errorf("POSITION accessor %d out of bounds", posIndex)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return nil, err
	}

	var indices []uint32
	if prim.Indices != nil {
		if int(*prim.Indices) >= len(doc.Accessors) {
			return nil, fmt.Errorf("index accessor %d out of bounds", *prim.Indices)
		}
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}

	out := make([]types.Vec3, len(indices))
	for i, index := range indices {
		if int(index) >= len(positions) {
			return nil, fmt.Errorf("vertex index %d out of bounds", index)
		}
		out[i] = types.Vec3(positions[index])
	}
	return out, nil
}
