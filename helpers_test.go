package kdforest

import "sort"

// bruteForceKNN is the reference oracle used by exactness tests: it scans
// every point and returns the k nearest, ascending by distance, breaking
// ties by index for a deterministic comparison against the forest.
func bruteForceKNN[S Float](points []S, dim int, query []S, metric Metric, k int) []Neighbor {
	n := len(points) / dim
	all := make([]Neighbor, n)
	for i := 0; i < n; i++ {
		all[i] = Neighbor{
			Index:    i,
			Distance: distance(metric, dim, query, points[i*dim:(i+1)*dim]),
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].Index < all[j].Index
	})
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

// sortNeighborsByDistanceThenIndex gives a deterministic comparison key for result sets
// where tie-broken ordering between equal-distance neighbors is not part of
// the contract (SPEC_FULL.md §5 "Ordering").
func sortNeighborsByDistanceThenIndex(ns []Neighbor) []Neighbor {
	out := append([]Neighbor(nil), ns...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func randomPoints(rng RandSource, n, dim int) []float64 {
	pts := make([]float64, n*dim)
	for i := range pts {
		// scale the injected uint32 stream into [0,1); good enough for
		// generating test fixtures without importing a second RNG just
		// for tests.
		u := rng.Uint32()
		pts[i] = float64(u) / float64(1<<32)
	}
	return pts
}
