package compiler

import (
	"github.com/cg-saarland/GloBiE/asset/compiler/bvh"
	"github.com/cg-saarland/GloBiE/asset/mesh"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/numeric"
	"github.com/cg-saarland/GloBiE/types"
)

// A Flattener receives the builder callbacks and appends flat nodes and
// leaves to its output arrays. It is not safe for concurrent use.
type Flattener struct {
	tris   []mesh.Triangle
	nodes  []scene.FlatNode
	leaves []scene.FlatLeaf
}

var (
	_ bvh.NodeSink = (*Flattener)(nil)
	_ bvh.LeafSink = (*Flattener)(nil)
)

// Create a flattener for the given triangles. Leaf references are resolved
// as indices into tris.
func NewFlattener(tris []mesh.Triangle) *Flattener {
	return &Flattener{tris: tris}
}

// Get the flattened BVH.
func (f *Flattener) Bvh() *scene.Bvh {
	return &scene.Bvh{
		BuildID: newBuildID(),
		Nodes:   f.nodes,
		Leaves:  f.leaves,
	}
}

// CreateNode appends a flat node holding the given child boxes, links it
// into the parent slot and returns its index. Slots past len(bboxes) receive
// the sentinel box.
//
// Non-root nodes need 2 to NodeWidth children; the root may have a single
// child when the whole input fits a leaf.
func (f *Flattener) CreateNode(parent, slot int, bboxes []types.BBox) int {
	count := len(bboxes)
	isRoot := parent == bvh.NoParent
	switch {
	case isRoot && (slot != bvh.NoParent || len(f.nodes) != 0):
		violation("create node", "root must be the first node (slot %d, %d existing nodes)", slot, len(f.nodes))
	case count > scene.NodeWidth:
		violation("create node", "child count %d exceeds node width %d", count, scene.NodeWidth)
	case isRoot && count < 1:
		violation("create node", "root node without children")
	case !isRoot && count < 2:
		violation("create node", "child count %d is below 2", count)
	}
	if !isRoot {
		f.checkParentSlot("create node", parent, slot)
	}

	nodeIndex := numeric.MustCast[uint32](len(f.nodes))
	f.nodes = append(f.nodes, scene.FlatNode{})
	node := &f.nodes[nodeIndex]

	for j := 0; j < count; j++ {
		node.SetBBox(j, bboxes[j])
	}
	for j := count; j < scene.NodeWidth; j++ {
		node.ClearSlot(j)
	}

	// The node now exists; link it into its parent
	if !isRoot {
		f.nodes[parent].SetChild(slot, scene.NodeRef(nodeIndex))
	}

	return int(nodeIndex)
}

// CreateLeaf packs the referenced triangles into a chain of flat leaves of
// LeafWidth triangles each and links the chain into the parent slot. The
// last used slot of the last leaf carries the chain terminator bit.
func (f *Flattener) CreateLeaf(parent, slot int, _ types.BBox, refCount int, ref func(j int) int) {
	if refCount < 1 {
		violation("create leaf", "leaf without references (parent %d, slot %d)", parent, slot)
	}
	f.checkParentSlot("create leaf", parent, slot)

	firstLeaf := numeric.MustCast[uint32](len(f.leaves))

	// Group triangles in packets of LeafWidth
	for i := 0; i < refCount; i += scene.LeafWidth {
		c := scene.LeafWidth
		if i+c > refCount {
			c = refCount - i
		}

		var leaf scene.FlatLeaf
		for j := 0; j < c; j++ {
			id := ref(i + j)
			if id < 0 || id >= len(f.tris) {
				violation("create leaf", "reference %d points to unknown triangle %d", i+j, id)
			}
			primID := numeric.MustCast[uint32](id)
			if primID >= scene.ChainTerminator-1 {
				violation("create leaf", "triangle index %d collides with the terminator encoding", id)
			}

			tri := &f.tris[id]
			e1 := tri.V0.Sub(tri.V1)
			e2 := tri.V2.Sub(tri.V0)
			leaf.SetTriangle(j, primID, tri.V0, e1, e2, e1.Cross(e2))
		}
		for j := c; j < scene.LeafWidth; j++ {
			leaf.PrimID[j] = scene.InvalidPrimitive
		}

		f.leaves = append(f.leaves, leaf)
	}

	last := &f.leaves[len(f.leaves)-1]
	last.PrimID[(refCount-1)%scene.LeafWidth] |= scene.ChainTerminator

	// The chain now exists; link it into its parent
	f.nodes[parent].SetChild(slot, scene.LeafRef(firstLeaf))
}

// Ensure that parent/slot address an existing, populated but not yet
// linked child slot.
func (f *Flattener) checkParentSlot(op string, parent, slot int) {
	if parent < 0 || parent >= len(f.nodes) {
		violation(op, "parent index %d out of bounds (%d nodes)", parent, len(f.nodes))
	}
	if slot < 0 || slot >= scene.NodeWidth {
		violation(op, "slot %d out of bounds for parent %d", slot, parent)
	}
	node := &f.nodes[parent]
	if node.IsSentinel(slot) {
		violation(op, "slot %d of parent %d is not one of its children", slot, parent)
	}
	if node.Child[slot] != 0 {
		violation(op, "slot %d of parent %d is already linked", slot, parent)
	}
}
