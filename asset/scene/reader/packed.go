package reader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cg-saarland/GloBiE/asset"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/log"
	"github.com/klauspost/compress/zstd"
)

type packedReader struct {
	logger log.Logger
}

// Create a new packed BVH reader.
func newPackedReader() *packedReader {
	return &packedReader{
		logger: log.New("packed reader"),
	}
}

// Read a packed BVH stream.
func (p *packedReader) Read(res *asset.Resource) (*scene.Bvh, error) {
	p.logger.Noticef(`loading BVH from "%s"`, res.Path())
	start := time.Now()

	var hdr scene.PackedHeader
	if err := binary.Read(res, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("packedReader: could not read header: %w", err)
	}
	switch {
	case string(hdr.Magic[:]) != scene.PackedMagic:
		return nil, fmt.Errorf("packedReader: %s is not a packed BVH file", res.Path())
	case hdr.Version != scene.PackedVersion:
		return nil, fmt.Errorf("packedReader: unsupported format version %d", hdr.Version)
	case hdr.NodeWidth != scene.NodeWidth || hdr.LeafWidth != scene.LeafWidth:
		return nil, fmt.Errorf("packedReader: unsupported layout N=%d, M=%d; expected N=%d, M=%d", hdr.NodeWidth, hdr.LeafWidth, scene.NodeWidth, scene.LeafWidth)
	}

	compressed, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	body, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("packedReader: could not decompress body: %w", err)
	}

	if sum := xxhash.Sum64(body); sum != hdr.Checksum {
		return nil, fmt.Errorf("packedReader: checksum mismatch; expected %016x, got %016x", hdr.Checksum, sum)
	}

	nodeSize := binary.Size(scene.FlatNode{})
	leafSize := binary.Size(scene.FlatLeaf{})
	expSize := int64(hdr.NodeCount)*int64(nodeSize) + int64(hdr.LeafCount)*int64(leafSize)
	if int64(len(body)) != expSize {
		return nil, fmt.Errorf("packedReader: expected body with %d bytes; got %d", expSize, len(body))
	}

	out := &scene.Bvh{
		BuildID: hdr.BuildID,
		Nodes:   make([]scene.FlatNode, hdr.NodeCount),
		Leaves:  make([]scene.FlatLeaf, hdr.LeafCount),
	}
	r := bytes.NewReader(body)
	if err = binary.Read(r, binary.LittleEndian, out.Nodes); err != nil {
		return nil, err
	}
	if err = binary.Read(r, binary.LittleEndian, out.Leaves); err != nil {
		return nil, err
	}

	p.logger.Noticef("loaded %d nodes and %d leaves in %d ms", hdr.NodeCount, hdr.LeafCount, time.Since(start).Nanoseconds()/1e6)
	return out, nil
}
