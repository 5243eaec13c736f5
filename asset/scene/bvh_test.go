package scene

import (
	"strings"
	"testing"

	"github.com/cg-saarland/GloBiE/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func fixtureNode(children ...ChildRef) FlatNode {
	var node FlatNode
	for slot := 0; slot < NodeWidth; slot++ {
		if slot < len(children) {
			node.SetBBox(slot, types.BBox{{0, 0, 0}, {1, 1, 1}})
			node.SetChild(slot, children[slot])
			continue
		}
		node.ClearSlot(slot)
	}
	return node
}

func fixtureLeaf(terminate bool, prims ...uint32) FlatLeaf {
	var leaf FlatLeaf
	for slot := 0; slot < LeafWidth; slot++ {
		if slot < len(prims) {
			leaf.PrimID[slot] = prims[slot]
			continue
		}
		leaf.PrimID[slot] = InvalidPrimitive
	}
	if terminate {
		leaf.PrimID[len(prims)-1] |= ChainTerminator
	}
	return leaf
}

// Root with an inner node and a leaf chain; the inner node owns two leaves.
func fixtureBvh() *Bvh {
	return &Bvh{
		BuildID: uuid.New(),
		Nodes: []FlatNode{
			fixtureNode(NodeRef(1), LeafRef(0)),
			fixtureNode(LeafRef(2), LeafRef(3)),
		},
		Leaves: []FlatLeaf{
			fixtureLeaf(false, 0, 1, 2, 3),
			fixtureLeaf(true, 4),
			fixtureLeaf(true, 5, 6),
			fixtureLeaf(true, 7),
		},
	}
}

func TestValidateAcceptsWellFormedBvh(t *testing.T) {
	b := fixtureBvh()
	require.NoError(t, b.Validate(8))
	require.Equal(t, 8, b.TriangleCount())
}

func TestValidateDetectsLayoutErrors(t *testing.T) {
	specs := map[string]struct {
		mutate func(b *Bvh)
		count  int
		expErr string
	}{
		"missing primitive": {
			mutate: func(b *Bvh) {},
			count:  9,
			expErr: "primitive 8 is not referenced",
		},
		"duplicate primitive": {
			mutate: func(b *Bvh) { b.Leaves[3].PrimID[0] = 6 | ChainTerminator },
			count:  8,
			expErr: "primitive 6 is referenced more than once",
		},
		"missing terminator": {
			mutate: func(b *Bvh) { b.Leaves[1] = fixtureLeaf(false, 4) },
			count:  8,
			expErr: "does not terminate its chain",
		},
		"early terminator": {
			mutate: func(b *Bvh) { b.Leaves[2].PrimID[0] |= ChainTerminator },
			count:  8,
			expErr: "which is not its last used slot",
		},
		"non-sentinel empty slot": {
			mutate: func(b *Bvh) { b.Nodes[1].SetBBox(5, types.BBox{}) },
			count:  8,
			expErr: "is empty but carries bbox",
		},
		"invalid child bbox": {
			mutate: func(b *Bvh) { b.Nodes[0].SetBBox(0, types.EmptyBBox()) },
			count:  8,
			expErr: "carries invalid bbox",
		},
		"unreachable node": {
			mutate: func(b *Bvh) { b.Nodes = append(b.Nodes, fixtureNode()) },
			count:  8,
			expErr: "node 2 is not reachable",
		},
		"orphan leaf": {
			mutate: func(b *Bvh) { b.Leaves = append(b.Leaves, fixtureLeaf(true, 8)) },
			count:  9,
			expErr: "leaf 4 does not belong to any chain",
		},
		"out of bounds node": {
			mutate: func(b *Bvh) { b.Nodes[0].SetChild(0, NodeRef(9)) },
			count:  8,
			expErr: "out of bounds node 9",
		},
		"unterminated chain": {
			mutate: func(b *Bvh) { b.Leaves = b.Leaves[:1]; b.Nodes[1].ClearSlot(0); b.Nodes[1].ClearSlot(1) },
			count:  4,
			expErr: "is not terminated",
		},
	}

	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			b := fixtureBvh()
			spec.mutate(b)
			err := b.Validate(spec.count)
			require.Error(t, err)
			require.Contains(t, err.Error(), spec.expErr)
		})
	}
}

func TestValidateEmpty(t *testing.T) {
	require.NoError(t, (&Bvh{}).Validate(0))
	require.Error(t, (&Bvh{}).Validate(1))
	require.Error(t, fixtureBvh().Validate(0))
}

func TestStats(t *testing.T) {
	b := fixtureBvh()
	stats := b.Stats()

	require.Contains(t, stats, b.BuildID.String())
	require.Contains(t, stats, "Triangles")
	require.Contains(t, stats, "Chains")
	require.True(t, strings.Contains(stats, "Total") || strings.Contains(stats, "TOTAL"))
}
