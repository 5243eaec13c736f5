package scene

import "github.com/google/uuid"

const (
	// File signature of the packed BVH format.
	PackedMagic = "GBVH"

	// Current version of the packed BVH format.
	PackedVersion uint8 = 1
)

// The fixed-size little-endian header of a packed BVH file. The header is
// followed by a zstd compressed body holding NodeCount FlatNode records and
// LeafCount FlatLeaf records in their in-memory layout.
type PackedHeader struct {
	Magic     [4]byte
	Version   uint8
	NodeWidth uint8
	LeafWidth uint8
	_         uint8

	BuildID uuid.UUID

	NodeCount uint32
	LeafCount uint32

	// xxhash64 of the uncompressed body.
	Checksum uint64
}

// Create a header for the current format version.
func NewPackedHeader(buildID uuid.UUID, nodeCount, leafCount uint32, checksum uint64) PackedHeader {
	hdr := PackedHeader{
		Version:   PackedVersion,
		NodeWidth: NodeWidth,
		LeafWidth: LeafWidth,
		BuildID:   buildID,
		NodeCount: nodeCount,
		LeafCount: leafCount,
		Checksum:  checksum,
	}
	copy(hdr.Magic[:], PackedMagic)
	return hdr
}
