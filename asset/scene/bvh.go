package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

// A flattened wide BVH. Nodes[0] is the root; node and leaf indices are
// stable once assigned.
type Bvh struct {
	// Identifies the build that produced this BVH.
	BuildID uuid.UUID

	Nodes  []FlatNode
	Leaves []FlatLeaf
}

// Count the triangles referenced by the leaf list.
func (b *Bvh) TriangleCount() int {
	count := 0
	for index := range b.Leaves {
		count += b.Leaves[index].UsedSlots()
	}
	return count
}

// Build a tabular representation of BVH statistics.
func (b *Bvh) Stats() string {
	var usedNodeSlots, nodeLeafSlots, chains int
	for index := range b.Nodes {
		for slot := 0; slot < NodeWidth; slot++ {
			switch b.Nodes[index].ChildRef(slot).Kind {
			case NodeChild:
				usedNodeSlots++
			case LeafChild:
				usedNodeSlots++
				nodeLeafSlots++
				chains++
			}
		}
	}
	tris := b.TriangleCount()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Value"})
	table.Append([]string{"Build", "ID", b.BuildID.String()})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Nodes", "---", fmtSize(b.Nodes)})
	table.Append([]string{"", "Count", fmt.Sprint(len(b.Nodes))})
	table.Append([]string{"", "Slot fill", fmtRatio(usedNodeSlots, len(b.Nodes)*NodeWidth)})
	table.Append([]string{"", "Leaf slots", fmt.Sprint(nodeLeafSlots)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Leaves", "---", fmtSize(b.Leaves)})
	table.Append([]string{"", "Count", fmt.Sprint(len(b.Leaves))})
	table.Append([]string{"", "Chains", fmt.Sprint(chains)})
	table.Append([]string{"", "Triangles", fmt.Sprint(tris)})
	table.Append([]string{"", "Slot fill", fmtRatio(tris, len(b.Leaves)*LeafWidth)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(b.Nodes, b.Leaves), " ")})

	table.Render()
	return buf.String()
}

func fmtRatio(used, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%5.1f%%", 100*float32(used)/float32(total))
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
