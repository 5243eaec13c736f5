package scene

import "fmt"

// Validate checks the layout contract expected by traversal consumers:
//
//   - every node is reachable from the root exactly once
//   - unused slots carry the sentinel box, used slots a valid box
//   - every leaf chain is made of full records followed by one partially
//     or fully filled record whose last used slot carries the terminator
//   - every leaf record belongs to exactly one chain
//   - the referenced primitives are exactly {0, ..., triangleCount-1}
func (b *Bvh) Validate(triangleCount int) error {
	if triangleCount == 0 {
		if len(b.Nodes) != 0 || len(b.Leaves) != 0 {
			return fmt.Errorf("validate: expected empty BVH for empty input; got %d nodes and %d leaves", len(b.Nodes), len(b.Leaves))
		}
		return nil
	}
	if len(b.Nodes) == 0 {
		return fmt.Errorf("validate: missing root node")
	}

	nodeSeen := make([]bool, len(b.Nodes))
	leafOwner := make([]int, len(b.Leaves))
	for index := range leafOwner {
		leafOwner[index] = -1
	}
	primSeen := make([]bool, triangleCount)

	stack := []uint32{0}
	nodeSeen[0] = true
	for len(stack) > 0 {
		nodeIndex := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &b.Nodes[nodeIndex]

		for slot := 0; slot < NodeWidth; slot++ {
			ref := node.ChildRef(slot)
			if ref.Kind == EmptyChild {
				if !node.IsSentinel(slot) {
					return fmt.Errorf("validate: node %d slot %d is empty but carries bbox %v", nodeIndex, slot, node.BBox(slot))
				}
				continue
			}
			if !node.BBox(slot).IsValid() {
				return fmt.Errorf("validate: node %d slot %d references a %s but carries invalid bbox %v", nodeIndex, slot, ref.Kind, node.BBox(slot))
			}

			switch ref.Kind {
			case NodeChild:
				if int(ref.Index) >= len(b.Nodes) {
					return fmt.Errorf("validate: node %d slot %d references out of bounds node %d", nodeIndex, slot, ref.Index)
				}
				if nodeSeen[ref.Index] {
					return fmt.Errorf("validate: node %d is referenced more than once", ref.Index)
				}
				nodeSeen[ref.Index] = true
				stack = append(stack, ref.Index)
			case LeafChild:
				if err := b.validateChain(ref.Index, int(nodeIndex), leafOwner, primSeen); err != nil {
					return fmt.Errorf("validate: node %d slot %d: %w", nodeIndex, slot, err)
				}
			}
		}
	}

	for index, seen := range nodeSeen {
		if !seen {
			return fmt.Errorf("validate: node %d is not reachable from the root", index)
		}
	}
	for index, owner := range leafOwner {
		if owner == -1 {
			return fmt.Errorf("validate: leaf %d does not belong to any chain", index)
		}
	}
	for prim, seen := range primSeen {
		if !seen {
			return fmt.Errorf("validate: primitive %d is not referenced by any leaf", prim)
		}
	}
	return nil
}

func (b *Bvh) validateChain(first uint32, owner int, leafOwner []int, primSeen []bool) error {
	for leafIndex := int(first); ; leafIndex++ {
		if leafIndex >= len(b.Leaves) {
			return fmt.Errorf("leaf chain starting at %d is not terminated", first)
		}
		if leafOwner[leafIndex] != -1 {
			return fmt.Errorf("leaf %d is shared by more than one chain", leafIndex)
		}
		leafOwner[leafIndex] = owner

		leaf := &b.Leaves[leafIndex]
		used := leaf.UsedSlots()
		if used == 0 {
			return fmt.Errorf("leaf %d is empty", leafIndex)
		}

		terminated := false
		for slot := 0; slot < LeafWidth; slot++ {
			if !leaf.IsUsed(slot) {
				continue
			}
			if slot >= used {
				return fmt.Errorf("leaf %d has a gap before slot %d", leafIndex, slot)
			}
			if leaf.IsTerminator(slot) {
				if slot != used-1 {
					return fmt.Errorf("leaf %d carries a terminator on slot %d which is not its last used slot", leafIndex, slot)
				}
				terminated = true
			}

			prim := int(leaf.Primitive(slot))
			if prim >= len(primSeen) {
				return fmt.Errorf("leaf %d slot %d references unknown primitive %d", leafIndex, slot, prim)
			}
			if primSeen[prim] {
				return fmt.Errorf("primitive %d is referenced more than once", prim)
			}
			primSeen[prim] = true
		}

		if terminated {
			return nil
		}
		if used != LeafWidth {
			return fmt.Errorf("leaf %d is partially filled but does not terminate its chain", leafIndex)
		}
	}
}
