package kdforest

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// builder holds the transient state for constructing one tree: the forest
// it belongs to (for point access, metric, RNG, and thresholding method)
// and a reusable split-dimension heap so recursive calls don't allocate one
// per node.
type builder[S Float] struct {
	forest    *Forest[S]
	tree      *tree
	splitHeap *arrayHeap[splitCandidate]

	// scratch reused across recursive calls to avoid a per-dimension
	// allocation at every node; holds one dimension's values over a node's
	// slice, sized on first use to the root's point count.
	columnScratch []float64
}

// build recursively partitions tree.perm[dataBegin:dataEnd] into the node
// at nodeIndex, per SPEC_FULL.md §4.3-4.4.
func (b *builder[S]) build(nodeIndex int32, dataBegin, dataEnd, depth int) {
	t := b.tree
	n := &t.nodes[nodeIndex]

	if t.depth < depth {
		t.depth = depth
	}

	// Base case: at most one point remains.
	if dataEnd-dataBegin <= 1 {
		encodeLeaf(n, dataBegin, dataEnd)
		return
	}

	dim := b.forest.dim
	if b.columnScratch == nil {
		b.columnScratch = make([]float64, 0, dataEnd-dataBegin)
	}

	b.splitHeap.Reset()
	for d := 0; d < dim; d++ {
		mean, variance := b.dimensionMeanVariance(dataBegin, dataEnd, d)
		if variance == 0 {
			continue
		}
		candidate := splitCandidate{dimension: d, mean: mean, variance: variance}
		if b.splitHeap.Len() < b.splitHeap.Cap() {
			b.splitHeap.Push(candidate)
		} else if top := b.splitHeap.Top(); top.variance < variance {
			b.splitHeap.ReplaceTop(candidate)
		}
	}

	// Base case: every dimension has zero variance (overlapping points).
	if b.splitHeap.Len() == 0 {
		encodeLeaf(n, dataBegin, dataEnd)
		return
	}

	pick := b.forest.rng.Uint32() % uint32(b.splitHeap.Len())
	chosen := b.splitHeap.data[pick]
	n.splitDimension = int32(chosen.dimension)

	perm := t.perm[dataBegin:dataEnd]
	for i := range perm {
		perm[i].value = b.forest.pointCoord(int(perm[i].index), chosen.dimension)
	}
	sort.Slice(perm, func(i, j int) bool { return perm[i].value < perm[j].value })

	splitIndex := b.chooseThreshold(n, perm, dataBegin, dataEnd, chosen.mean)

	n.lowerChild = t.newNode(nodeIndex)
	b.build(n.lowerChild, dataBegin, splitIndex+1, depth+1)

	n.upperChild = t.newNode(nodeIndex)
	b.build(n.upperChild, splitIndex+1, dataEnd, depth+1)
}

// dimensionMeanVariance computes the population mean and variance of
// dimension d over perm[dataBegin:dataEnd], via gonum/stat.PopMeanVariance
// (unweighted, population denominator N — exactly the "unbiased-denominator
// -free" E[x^2]-E[x]^2 form SPEC_FULL.md §4.3 calls for).
func (b *builder[S]) dimensionMeanVariance(dataBegin, dataEnd, d int) (mean, variance float64) {
	perm := b.tree.perm[dataBegin:dataEnd]
	col := b.columnScratch[:0]
	for _, e := range perm {
		col = append(col, b.forest.pointCoord(int(e.index), d))
	}
	b.columnScratch = col
	return stat.PopMeanVariance(col, nil)
}

// chooseThreshold picks the split value and returns splitIndex such that
// perm[dataBegin:splitIndex+1] is the lower child's range and
// perm[splitIndex+1:dataEnd] is the upper child's, per SPEC_FULL.md §4.4.
func (b *builder[S]) chooseThreshold(n *node, perm []permEntry, dataBegin, dataEnd int, mean float64) int {
	if b.forest.thresholdMethod == ThresholdMean {
		n.splitThreshold = mean
		splitIndex := dataBegin - 1
		for i := dataBegin; i < dataEnd && perm[i-dataBegin].value <= n.splitThreshold; i++ {
			splitIndex = i
		}
		if dataBegin <= splitIndex && splitIndex+1 < dataEnd {
			return splitIndex
		}
		// Mean failed to produce a nontrivial partition; fall through to
		// median, per SPEC_FULL.md §4.4's documented fallback.
	}

	medianIndex := (dataBegin + dataEnd - 1) / 2
	n.splitThreshold = perm[medianIndex-dataBegin].value
	return medianIndex
}
