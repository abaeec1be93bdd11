package kdforest

import "math"

// computeBounds runs the post-build preorder bounds pass of SPEC_FULL.md
// §4.5: a single O(numUsedNodes) walk assigns every internal node its true
// axis-aligned [lowerBound, upperBound] along its own splitDimension, using
// a 2*dim scratch array of per-axis intervals threaded through the
// recursion. Leaves are skipped; their child fields are negative.
//
// This is a separate pass, rather than threading bounds through the
// builder, because during the builder's top-down recursion a node's true
// bounds aren't known yet — they're determined by the combination of all
// ancestor thresholds, which the builder hasn't finished choosing until the
// whole subtree under the node is built.
func computeBounds(t *tree, dim int) {
	searchBounds := make([]float64, 2*dim)
	for d := 0; d < dim; d++ {
		searchBounds[2*d] = math.Inf(-1)
		searchBounds[2*d+1] = math.Inf(1)
	}
	computeBoundsRecursive(t, 0, searchBounds)
}

func computeBoundsRecursive(t *tree, nodeIndex int32, searchBounds []float64) {
	n := &t.nodes[nodeIndex]
	if n.isLeaf() {
		return
	}

	i := int(n.splitDimension)
	threshold := n.splitThreshold

	n.lowerBound = searchBounds[2*i]
	n.upperBound = searchBounds[2*i+1]

	savedHi := searchBounds[2*i+1]
	searchBounds[2*i+1] = threshold
	computeBoundsRecursive(t, n.lowerChild, searchBounds)
	searchBounds[2*i+1] = savedHi

	savedLo := searchBounds[2*i]
	searchBounds[2*i] = threshold
	computeBoundsRecursive(t, n.upperChild, searchBounds)
	searchBounds[2*i] = savedLo
}
