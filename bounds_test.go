package kdforest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBoundsInvariants(t *testing.T) {
	rng := NewRandSource(101, 202)
	n := 80
	dim := 4
	pts := randomPoints(rng, n, dim)

	f := New[float64](dim, 1, L2, WithRandSource(rng))
	require.NoError(t, f.Build(pts))

	tr := f.trees[0]
	for i := int32(0); i < tr.numUsedNodes; i++ {
		nd := &tr.nodes[i]
		if nd.isLeaf() {
			continue
		}
		// Invariant 3: lowerBound <= splitThreshold <= upperBound for every
		// internal node (root bounds are +/-Inf, which trivially satisfy
		// this).
		assert.LessOrEqual(t, nd.lowerBound, nd.splitThreshold)
		assert.LessOrEqual(t, nd.splitThreshold, nd.upperBound)
	}

	// Root bounds along its own split axis must be unbounded in both
	// directions; nothing constrains it yet.
	root := &tr.nodes[0]
	if !root.isLeaf() {
		assert.True(t, math.IsInf(root.lowerBound, -1))
		assert.True(t, math.IsInf(root.upperBound, 1))
	}
}

func TestComputeBoundsTightlyContainPoints(t *testing.T) {
	// Every point reachable under a node must have its splitDimension
	// coordinate within [lowerBound, upperBound] for that node, not just at
	// the immediate split.
	rng := NewRandSource(303, 404)
	n := 90
	dim := 3
	pts := randomPoints(rng, n, dim)

	f := New[float64](dim, 1, L2, WithRandSource(rng))
	require.NoError(t, f.Build(pts))

	tr := f.trees[0]

	var collectIndices func(idx int32) []int
	collectIndices = func(idx int32) []int {
		nd := &tr.nodes[idx]
		if nd.isLeaf() {
			begin, end := leafRange(nd)
			out := make([]int, 0, end-begin)
			for i := begin; i < end; i++ {
				out = append(out, int(tr.perm[i].index))
			}
			return out
		}
		return append(collectIndices(nd.lowerChild), collectIndices(nd.upperChild)...)
	}

	var walk func(idx int32)
	walk = func(idx int32) {
		nd := &tr.nodes[idx]
		if nd.isLeaf() {
			return
		}
		d := int(nd.splitDimension)
		for _, pointIdx := range collectIndices(idx) {
			v := f.pointCoord(pointIdx, d)
			assert.GreaterOrEqual(t, v, nd.lowerBound)
			assert.LessOrEqual(t, v, nd.upperBound)
		}
		walk(nd.lowerChild)
		walk(nd.upperChild)
	}
	walk(0)
}
