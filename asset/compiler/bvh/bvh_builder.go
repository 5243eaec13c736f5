package bvh

import (
	"math"
	"time"

	"github.com/cg-saarland/GloBiE/log"
	"github.com/cg-saarland/GloBiE/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// Passed as the parent and slot arguments when creating the root node.
	NoParent = -1

	// The builder will not attempt to split along an axis if the centroid
	// extent of the work list along it is less than this threshold.
	minCentroidExtent float32 = 1e-6

	// Number of bins used when evaluating split candidates along an axis.
	splitBins = 16
)

var (
	// A cost model using the surface area heuristic (SAH):
	// leaf cost = count * area and traversal cost = area.
	SurfaceAreaHeuristic = surfaceAreaHeuristic{}
)

// The BoundedVolume interface is implemented by all primitives that can
// be partitioned by the bvh builder.
type BoundedVolume interface {
	BBox() types.BBox
	Center() types.Vec3

	// The index reported to the LeafSink for this volume.
	PrimitiveIndex() int
}

// A NodeSink materializes internal nodes. CreateNode receives the index of
// the parent node and the parent slot this node fills (both NoParent for
// the root) together with the bounding boxes of the node children. It
// returns the index of the new node which the builder passes back as the
// parent of the node children.
type NodeSink interface {
	CreateNode(parent, slot int, bboxes []types.BBox) int
}

// A LeafSink materializes leaves. CreateLeaf receives the parent node index,
// the parent slot, the leaf bounding box and refCount primitive references;
// ref(j) returns the primitive index of the j-th reference.
type LeafSink interface {
	CreateLeaf(parent, slot int, bbox types.BBox, refCount int, ref func(j int) int)
}

// A CostModel drives the leaf-vs-split decisions of the builder.
type CostModel interface {
	// Cost of intersecting count primitives bounded by a box with the given area.
	LeafCost(count int, area float32) float32

	// Cost of visiting an internal node bounded by a box with the given area.
	TraversalCost(area float32) float32
}

// Build statistics.
type Stats struct {
	TotalItems       int
	PartitionedItems int
	Nodes            int
	Leafs            int
	MaxDepth         int
}

type splitScore struct {
	axis Axis
	bin  int

	// Binning parameters required to replay the split.
	binMin, binScale float32

	leftCount, rightCount int
	score                 float32
}

// A set of bounded volumes that becomes either a leaf or an internal node.
type cluster struct {
	items []BoundedVolume
	bbox  types.BBox

	// Best split for this cluster; only valid if evaluated is true.
	split     *splitScore
	evaluated bool
}

type builder struct {
	logger log.Logger

	// Number of children per internal node.
	width int

	// The maximum number of items that are always packed into a leaf.
	minLeafItems int

	nodeSink NodeSink
	leafSink LeafSink

	costModel CostModel

	// A channel for receiving per-axis split results.
	scoreChan chan splitScore

	// Stats
	stats Stats
}

// Construct a wide BVH from a set of bounded volumes.
//
// Each internal node receives between 2 and width children. Children are
// generated by repeatedly applying the best binned SAH split to the child
// with the largest surface area until width children exist or no split
// lowers the cost estimated by costModel.
//
// Work lists with at most minLeafItems items are never split. If the whole
// work list fits in a single leaf, the root node is created with a single
// child. An empty work list produces no callbacks.
//
// The sinks are invoked sequentially; a node is always created before its
// children.
func Build(workList []BoundedVolume, width, minLeafItems int, nodeSink NodeSink, leafSink LeafSink, costModel CostModel) Stats {
	if width < 2 {
		panic("bvh: node width must be at least 2")
	}

	b := &builder{
		logger:       log.New("bvh builder"),
		width:        width,
		minLeafItems: minLeafItems,
		nodeSink:     nodeSink,
		leafSink:     leafSink,
		costModel:    costModel,
		scoreChan:    make(chan splitScore),
		stats: Stats{
			TotalItems: len(workList),
		},
	}

	if len(workList) == 0 {
		return b.stats
	}

	start := time.Now()
	root := newCluster(workList)
	children := b.partition(root)
	if len(children) < 2 {
		rootIndex := b.nodeSink.CreateNode(NoParent, NoParent, []types.BBox{root.bbox})
		b.stats.Nodes++
		b.createLeaf(rootIndex, 0, root)
	} else {
		b.createNode(NoParent, NoParent, children, 0)
	}

	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs,
	)
	return b.stats
}

// Emit an internal node for the given children and recursively process them.
func (b *builder) createNode(parent, slot int, children []*cluster, depth int) {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	bboxes := make([]types.BBox, len(children))
	for index, child := range children {
		bboxes[index] = child.bbox
	}

	nodeIndex := b.nodeSink.CreateNode(parent, slot, bboxes)
	b.stats.Nodes++

	for childSlot, child := range children {
		grandChildren := b.partition(child)
		if len(grandChildren) < 2 {
			b.createLeaf(nodeIndex, childSlot, child)
			continue
		}
		b.createNode(nodeIndex, childSlot, grandChildren, depth+1)
	}
}

// Emit a leaf containing all items in the cluster.
func (b *builder) createLeaf(parent, slot int, c *cluster) {
	items := c.items
	b.leafSink.CreateLeaf(parent, slot, c.bbox, len(items), func(j int) int {
		return items[j].PrimitiveIndex()
	})

	b.stats.Leafs++
	b.stats.PartitionedItems += len(items)
}

// Split a cluster into at most width clusters. A result with a single
// cluster means that the input should become a leaf.
func (b *builder) partition(c *cluster) []*cluster {
	clusters := []*cluster{c}
	for len(clusters) < b.width {
		// Pick the splittable cluster with the largest area
		best := -1
		var bestArea float32
		for index, candidate := range clusters {
			if b.evaluate(candidate) == nil {
				continue
			}
			if area := candidate.bbox.HalfArea(); best == -1 || area > bestArea {
				best, bestArea = index, area
			}
		}
		if best == -1 {
			break
		}

		left, right := splitCluster(clusters[best])
		clusters[best] = left
		clusters = append(clusters, right)
	}
	return clusters
}

// Find (and cache) the best split for a cluster. Returns nil if the cluster
// should not be split.
func (b *builder) evaluate(c *cluster) *splitScore {
	if c.evaluated {
		return c.split
	}
	c.evaluated = true

	if len(c.items) <= b.minLeafItems {
		return nil
	}

	centroidBox := types.EmptyBBox()
	for _, item := range c.items {
		centroidBox = centroidBox.Extend(item.Center())
	}

	// Run axis split tests in parallel
	pendingScores := 0
	for axis := XAxis; axis <= ZAxis; axis++ {
		extent := centroidBox[1][axis] - centroidBox[0][axis]
		if extent < minCentroidExtent {
			continue
		}

		pendingScores++
		go func(axis Axis, binMin, binScale float32) {
			b.scoreChan <- b.scoreAxis(c.items, axis, binMin, binScale)
		}(axis, centroidBox[0][axis], float32(splitBins)/extent)
	}

	area := c.bbox.HalfArea()
	var bestScore = b.costModel.LeafCost(len(c.items), area)
	var bestSplit *splitScore
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-b.scoreChan
		if candidate.leftCount == 0 || candidate.rightCount == 0 {
			continue
		}

		score := candidate.score + b.costModel.TraversalCost(area)
		if score < bestScore || (bestSplit != nil && score == bestScore && candidate.axis < bestSplit.axis) {
			bestScore = score
			candidate.score = score
			bestSplit = &candidate
		}
	}

	c.split = bestSplit
	return c.split
}

// Bin work list items by their centroids along axis and return the best
// split between two adjacent bins. The returned score only includes the
// leaf costs of both sides.
func (b *builder) scoreAxis(items []BoundedVolume, axis Axis, binMin, binScale float32) splitScore {
	var binCount [splitBins]int
	var binBox [splitBins]types.BBox
	for index := range binBox {
		binBox[index] = types.EmptyBBox()
	}

	for _, item := range items {
		bin := binIndex(item.Center()[axis], binMin, binScale)
		binCount[bin]++
		binBox[bin] = binBox[bin].Union(item.BBox())
	}

	// Sweep from the right to accumulate the right side of each split
	var rightCount [splitBins]int
	var rightBox [splitBins]types.BBox
	accBox := types.EmptyBBox()
	accCount := 0
	for bin := splitBins - 1; bin > 0; bin-- {
		accBox = accBox.Union(binBox[bin])
		accCount += binCount[bin]
		rightBox[bin] = accBox
		rightCount[bin] = accCount
	}

	best := splitScore{
		axis:     axis,
		binMin:   binMin,
		binScale: binScale,
		score:    float32(math.Inf(1)),
	}
	accBox = types.EmptyBBox()
	accCount = 0
	for bin := 1; bin < splitBins; bin++ {
		accBox = accBox.Union(binBox[bin-1])
		accCount += binCount[bin-1]

		// Make sure that we don't generate empty partitions
		if accCount == 0 || rightCount[bin] == 0 {
			continue
		}

		score := b.costModel.LeafCost(accCount, accBox.HalfArea()) +
			b.costModel.LeafCost(rightCount[bin], rightBox[bin].HalfArea())
		if score < best.score {
			best.bin = bin
			best.leftCount = accCount
			best.rightCount = rightCount[bin]
			best.score = score
		}
	}

	return best
}

// Map a centroid coordinate to a bin.
func binIndex(coord, binMin, binScale float32) int {
	bin := int((coord - binMin) * binScale)
	if bin < 0 {
		return 0
	}
	if bin >= splitBins {
		return splitBins - 1
	}
	return bin
}

// Split a cluster using its cached split.
func splitCluster(c *cluster) (*cluster, *cluster) {
	split := c.split
	leftItems := make([]BoundedVolume, 0, split.leftCount)
	rightItems := make([]BoundedVolume, 0, split.rightCount)
	for _, item := range c.items {
		if binIndex(item.Center()[split.axis], split.binMin, split.binScale) < split.bin {
			leftItems = append(leftItems, item)
		} else {
			rightItems = append(rightItems, item)
		}
	}
	return newCluster(leftItems), newCluster(rightItems)
}

func newCluster(items []BoundedVolume) *cluster {
	bbox := types.EmptyBBox()
	for _, item := range items {
		bbox = bbox.Union(item.BBox())
	}
	return &cluster{
		items: items,
		bbox:  bbox,
	}
}

// A cost model implementation that uses the surface area heuristic.
type surfaceAreaHeuristic struct{}

// Score a leaf using the formula count * area (lower score is better).
func (h surfaceAreaHeuristic) LeafCost(count int, area float32) float32 {
	return float32(count) * area
}

// Score an internal node visit using its area.
func (h surfaceAreaHeuristic) TraversalCost(area float32) float32 {
	return area
}
