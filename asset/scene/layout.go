package scene

import (
	"fmt"
	"math"

	"github.com/cg-saarland/GloBiE/types"
)

const (
	// Number of child slots per flat node.
	NodeWidth = 8

	// Number of triangles packed into a single flat leaf.
	LeafWidth = 4

	// Primitive id stored in unused leaf slots.
	InvalidPrimitive uint32 = 0xFFFFFFFF

	// Bit set on the last used primitive id of a leaf chain.
	ChainTerminator uint32 = 0x80000000
)

// Indices into FlatNode.Bounds.
const (
	MinX = iota
	MaxX
	MinY
	MaxY
	MinZ
	MaxZ
)

// The kind of entity referenced by a flat node child slot.
type ChildKind uint8

const (
	EmptyChild ChildKind = iota
	NodeChild
	LeafChild
)

// String implements fmt.Stringer.
func (k ChildKind) String() string {
	switch k {
	case NodeChild:
		return "node"
	case LeafChild:
		return "leaf"
	}
	return "empty"
}

// A ChildRef describes the contents of a flat node child slot. For NodeChild
// refs Index points into the node list; for LeafChild refs it points to the
// first leaf of the chain in the leaf list.
type ChildRef struct {
	Kind  ChildKind
	Index uint32
}

// Reference an internal node.
func NodeRef(index uint32) ChildRef {
	return ChildRef{Kind: NodeChild, Index: index}
}

// Reference a leaf chain starting at the given leaf.
func LeafRef(firstLeaf uint32) ChildRef {
	return ChildRef{Kind: LeafChild, Index: firstLeaf}
}

// Encode the ref into its on-disk representation:
//   - 0 for empty slots
//   - index+1 for internal nodes
//   - ^index for leaf chains
//
// Indices that do not fit the encoding cause a panic.
func (r ChildRef) Encode() int32 {
	switch r.Kind {
	case NodeChild:
		if r.Index >= math.MaxInt32 {
			panic(fmt.Sprintf("scene: node index %d cannot be encoded", r.Index))
		}
		return int32(r.Index) + 1
	case LeafChild:
		if r.Index > math.MaxInt32 {
			panic(fmt.Sprintf("scene: leaf index %d cannot be encoded", r.Index))
		}
		return ^int32(r.Index)
	}
	return 0
}

// Decode an encoded child slot value.
func DecodeChild(v int32) ChildRef {
	switch {
	case v > 0:
		return NodeRef(uint32(v - 1))
	case v < 0:
		return LeafRef(uint32(^v))
	}
	return ChildRef{}
}

// An internal BVH node with NodeWidth children. Child bounding boxes are
// stored as a structure of arrays so that all children can be tested at once.
type FlatNode struct {
	// Per-axis child bounds, indexed by MinX...MaxZ and then by slot.
	Bounds [6][NodeWidth]float32

	// Encoded child references; see ChildRef.Encode.
	Child [NodeWidth]int32
}

// Set the bounding box for a child slot.
func (n *FlatNode) SetBBox(slot int, bbox types.BBox) {
	n.Bounds[MinX][slot] = bbox[0][0]
	n.Bounds[MinY][slot] = bbox[0][1]
	n.Bounds[MinZ][slot] = bbox[0][2]

	n.Bounds[MaxX][slot] = bbox[1][0]
	n.Bounds[MaxY][slot] = bbox[1][1]
	n.Bounds[MaxZ][slot] = bbox[1][2]
}

// Get the bounding box for a child slot.
func (n *FlatNode) BBox(slot int) types.BBox {
	return types.BBox{
		{n.Bounds[MinX][slot], n.Bounds[MinY][slot], n.Bounds[MinZ][slot]},
		{n.Bounds[MaxX][slot], n.Bounds[MaxY][slot], n.Bounds[MaxZ][slot]},
	}
}

// Mark a slot as unused: inverted infinite bounds and an empty child.
func (n *FlatNode) ClearSlot(slot int) {
	n.SetBBox(slot, types.EmptyBBox())
	n.Child[slot] = 0
}

// Returns true if the slot carries the unused-slot sentinel box.
func (n *FlatNode) IsSentinel(slot int) bool {
	b := n.BBox(slot)
	for axis := 0; axis < 3; axis++ {
		if !math.IsInf(float64(b[0][axis]), 1) || !math.IsInf(float64(b[1][axis]), -1) {
			return false
		}
	}
	return true
}

// Set child slot contents.
func (n *FlatNode) SetChild(slot int, ref ChildRef) {
	n.Child[slot] = ref.Encode()
}

// Get child slot contents.
func (n *FlatNode) ChildRef(slot int) ChildRef {
	return DecodeChild(n.Child[slot])
}

// A leaf packing up to LeafWidth triangles. Every geometric quantity is
// stored as three per-axis arrays indexed by slot.
type FlatLeaf struct {
	// Triangle origin vertex.
	V0 [3][LeafWidth]float32

	// Edges v0-v1 and v2-v0.
	E1 [3][LeafWidth]float32
	E2 [3][LeafWidth]float32

	// Unnormalized face normal e1 x e2.
	N [3][LeafWidth]float32

	// Input triangle index per slot; InvalidPrimitive for unused slots.
	// The last used slot of a chain also carries ChainTerminator.
	PrimID [LeafWidth]uint32

	// Geometry id per slot. Always zero.
	GeomID [LeafWidth]int32
}

// Write the precomputed data for a triangle into a slot.
func (l *FlatLeaf) SetTriangle(slot int, primID uint32, v0, e1, e2, n types.Vec3) {
	for axis := 0; axis < 3; axis++ {
		l.V0[axis][slot] = v0[axis]
		l.E1[axis][slot] = e1[axis]
		l.E2[axis][slot] = e2[axis]
		l.N[axis][slot] = n[axis]
	}
	l.PrimID[slot] = primID
	l.GeomID[slot] = 0
}

// Get the origin vertex, both edges and the normal stored in a slot.
func (l *FlatLeaf) Triangle(slot int) (v0, e1, e2, n types.Vec3) {
	for axis := 0; axis < 3; axis++ {
		v0[axis] = l.V0[axis][slot]
		e1[axis] = l.E1[axis][slot]
		e2[axis] = l.E2[axis][slot]
		n[axis] = l.N[axis][slot]
	}
	return v0, e1, e2, n
}

// Returns true if the slot holds a triangle.
func (l *FlatLeaf) IsUsed(slot int) bool {
	return l.PrimID[slot] != InvalidPrimitive
}

// Get the input triangle index stored in a slot with the terminator bit
// masked off.
func (l *FlatLeaf) Primitive(slot int) uint32 {
	return l.PrimID[slot] &^ ChainTerminator
}

// Returns true if the slot terminates its leaf chain.
func (l *FlatLeaf) IsTerminator(slot int) bool {
	return l.IsUsed(slot) && l.PrimID[slot]&ChainTerminator != 0
}

// Count the slots holding a triangle.
func (l *FlatLeaf) UsedSlots() int {
	used := 0
	for slot := 0; slot < LeafWidth; slot++ {
		if l.IsUsed(slot) {
			used++
		}
	}
	return used
}
