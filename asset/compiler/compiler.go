package compiler

import (
	"fmt"
	"time"

	"github.com/cg-saarland/GloBiE/asset/compiler/bvh"
	"github.com/cg-saarland/GloBiE/asset/mesh"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/log"
	"github.com/google/uuid"
)

// The signature of a hierarchy builder that drives a Flattener.
type BuilderFunc func(workList []bvh.BoundedVolume, width, minLeafItems int, nodeSink bvh.NodeSink, leafSink bvh.LeafSink, costModel bvh.CostModel) bvh.Stats

// Options control the hierarchy build. The zero value selects the
// defaults.
type Options struct {
	// Work lists with at most this many triangles always become a leaf.
	// Defaults to half the leaf width.
	MinLeafItems int

	// Cost model for leaf-vs-split decisions. Defaults to SAH.
	CostModel bvh.CostModel

	// The hierarchy builder. Defaults to bvh.Build.
	Builder BuilderFunc
}

func (o Options) withDefaults() Options {
	if o.MinLeafItems <= 0 {
		o.MinLeafItems = scene.LeafWidth / 2
	}
	if o.CostModel == nil {
		o.CostModel = bvh.SurfaceAreaHeuristic
	}
	if o.Builder == nil {
		o.Builder = bvh.Build
	}
	return o
}

// Compile builds a wide BVH over the given triangles and flattens it into
// node and leaf arrays. Triangle i must carry index i.
//
// Builder contract violations are fatal and cause a panic with a
// *ContractError.
func Compile(tris []mesh.Triangle, opts Options) *scene.Bvh {
	opts = opts.withDefaults()
	logger := log.New("bvh compiler")

	start := time.Now()
	logger.Noticef("flattening %d triangles (node width %d, leaf width %d)", len(tris), scene.NodeWidth, scene.LeafWidth)

	volList := make([]bvh.BoundedVolume, len(tris))
	for index := range tris {
		if tris[index].Index != index {
			violation("compile", "triangle at position %d carries index %d", index, tris[index].Index)
		}
		volList[index] = &tris[index]
	}

	flattener := NewFlattener(tris)
	stats := opts.Builder(volList, scene.NodeWidth, opts.MinLeafItems, flattener, flattener, opts.CostModel)
	out := flattener.Bvh()

	if len(tris) > 0 && len(out.Nodes) == 0 {
		violation("compile", "builder completed without creating a root node")
	}

	logger.Infof("builder stats: depth %d, %d nodes, %d leafs, %d/%d items", stats.MaxDepth, stats.Nodes, stats.Leafs, stats.PartitionedItems, stats.TotalItems)
	logger.Noticef("flattened BVH into %d nodes and %d leaves in %d ms", len(out.Nodes), len(out.Leaves), time.Since(start).Nanoseconds()/1e6)
	return out
}

// A ContractError describes malformed builder output. It is raised via panic.
type ContractError struct {
	Op  string
	Msg string
}

// Error implements error.
func (e *ContractError) Error() string {
	return fmt.Sprintf("compiler: %s: %s", e.Op, e.Msg)
}

func violation(op, format string, args ...interface{}) {
	panic(&ContractError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// Build identifiers are random (v4) UUIDs.
func newBuildID() uuid.UUID {
	return uuid.New()
}
