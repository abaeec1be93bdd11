package kdforest

// distanceL2Sq returns the squared Euclidean distance between a and b, both
// length-dim vectors. It is hand-written rather than routed through
// gonum/floats.Distance(a, b, 2) because that helper returns the Lp norm
// (i.e. takes a final square root); every invariant in this package's
// branch-and-bound pruning (bounds.go, query.go) is expressed in terms of
// the *squared* distance, so a sqrt-then-resquare round trip through gonum
// would be pure waste.
func distanceL2Sq[S Float](dim int, a, b []S) float64 {
	var sum float64
	for i := 0; i < dim; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// distanceL1 returns the Manhattan distance between a and b. It is
// hand-written for the same reason distanceL2Sq is: gonum/floats.Distance
// only accepts []float64, so routing a or b through it would require
// copying both into freshly allocated []float64 scratch on every call —
// this function is on the per-comparison hot path of Query (visitLeaf),
// which spec.md §5 requires make zero allocations.
func distanceL1[S Float](dim int, a, b []S) float64 {
	var sum float64
	for i := 0; i < dim; i++ {
		sum += abs(float64(a[i]) - float64(b[i]))
	}
	return sum
}

// distance dispatches on the forest's configured Metric. It is the
// generic-over-S analogue of the two "function pointers selected by scalar
// element type" the reference design treats as an external collaborator;
// here the dispatch is a plain switch, selected once per query rather than
// per comparison, since Go has no cheap runtime function-pointer story that
// beats a branch predictor on a two-way switch.
func distance[S Float](metric Metric, dim int, a, b []S) float64 {
	switch metric {
	case L2:
		return distanceL2Sq(dim, a, b)
	case L1:
		return distanceL1(dim, a, b)
	default:
		contractViolation("distance", "unsupported metric %v", metric)
		return 0
	}
}

// axisContribution computes the metric-consistent per-axis term used by the
// query's branch-and-bound correction (query.go): delta^2 under L2 (to
// match the squared-distance accumulator) and |delta| under L1 (to match
// the unsquared Manhattan accumulator). Mixing the two — e.g. always
// squaring, as the unconditional form in the reference C source does —
// silently produces an invalid lower bound under L1 and was resolved as an
// explicit Open Question; see SPEC_FULL.md §9.
func axisContribution(metric Metric, delta float64) float64 {
	switch metric {
	case L2:
		return delta * delta
	case L1:
		return abs(delta)
	default:
		contractViolation("axisContribution", "unsupported metric %v", metric)
		return 0
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
