package kdforest

import "math"

// Query fills out with the numNeighbors = len(out) nearest points to query
// across every tree in the Searcher's forest, ascending by distance, and
// returns the number of full-vector comparisons performed.
//
// len(out) must be > 0 and query must have the forest's dimension; both are
// contract violations (panic) if violated. If the forest holds fewer than
// len(out) points, the trailing out[k:] slots are set to
// Neighbor{Index: -1, Distance: math.NaN()}.
//
// If the forest's MaxNumComparisons is nonzero, Query may stop before
// exhausting the search frontier once that many comparisons have been
// performed (approximate mode): the result may then omit some of the true
// nearest neighbors. A comparison budget can also cut a leaf's iteration
// short partway through; when that happens the "at most one comparison per
// point per query" invariant still holds, but "every point in a visited
// leaf gets compared" does not.
func (s *Searcher[S]) Query(out []Neighbor, query []S) int {
	if len(out) == 0 {
		contractViolation("Query", "out must have length >= 1")
	}
	if query == nil {
		contractViolation("Query", "query must not be nil")
	}
	if len(query) != s.forest.dim {
		contractViolation("Query", "query has %d dimensions, forest has %d", len(query), s.forest.dim)
	}

	s.searchID++
	s.numComparisons = 0
	s.numRecursions = 0
	s.numSimplifications = 0
	s.frontier.Reset()

	numNeighbors := len(out)
	// The neighbor max-heap is laid out in out itself; draining it below
	// writes each popped entry just past the shrinking heap.
	best := newNeighborHeap(0)
	best.data = out[:0:numNeighbors]
	numAdded := 0

	for _, t := range s.forest.trees {
		s.frontier.Push(frontierState{tree: t, nodeIndex: 0, distanceLowerBound: 0})
	}

	exact := s.forest.maxComparisons == 0
	for exact || s.numComparisons < s.forest.maxComparisons {
		if s.frontier.Len() == 0 {
			break
		}
		state := s.frontier.Pop()
		if numAdded == numNeighbors && best.Top().Distance < state.distanceLowerBound {
			s.numSimplifications++
			break
		}
		numAdded = s.descendAndBound(state.tree, state.nodeIndex, best, numNeighbors, numAdded, state.distanceLowerBound, query)
	}

	for i := numAdded; i < numNeighbors; i++ {
		out[i] = Neighbor{Index: -1, Distance: math.NaN()}
	}
	for numAdded > 0 {
		numAdded--
		out[numAdded] = best.Pop()
	}

	return s.numComparisons
}

// descendAndBound is the inner branch-and-bound recursion of SPEC_FULL.md
// §4.6. dist is the lower-bound distance the caller inherited for
// nodeIndex. It returns the (possibly increased) count of neighbors
// collected so far.
func (s *Searcher[S]) descendAndBound(t *tree, nodeIndex int32, best *arrayHeap[Neighbor], numNeighbors, numAdded int, dist float64, query []S) int {
	s.numRecursions++

	n := &t.nodes[nodeIndex]
	i := int(n.splitDimension)
	x := float64(query[i])

	if n.isLeaf() {
		return s.visitLeaf(t, n, best, numNeighbors, numAdded, query)
	}

	metric := s.forest.metric
	x1, x2, x3 := n.lowerBound, n.splitThreshold, n.upperBound

	delta := x - x2
	saveDist := dist + axisContribution(metric, delta)

	var nextChild, saveChild int32
	if x <= x2 {
		nextChild, saveChild = n.lowerChild, n.upperChild
		if x <= x1 {
			saveDist -= axisContribution(metric, x-x1)
		}
	} else {
		nextChild, saveChild = n.upperChild, n.lowerChild
		if x > x3 {
			saveDist -= axisContribution(metric, x-x3)
		}
	}

	if numAdded < numNeighbors || best.Top().Distance > saveDist {
		s.frontier.Push(frontierState{tree: t, nodeIndex: saveChild, distanceLowerBound: saveDist})
	}

	return s.descendAndBound(t, nextChild, best, numNeighbors, numAdded, dist, query)
}

// visitLeaf compares query against every not-yet-visited point in the
// leaf's range, subject to the forest's comparison budget, per
// SPEC_FULL.md §4.6's "Leaf" case.
func (s *Searcher[S]) visitLeaf(t *tree, n *node, best *arrayHeap[Neighbor], numNeighbors, numAdded int, query []S) int {
	begin, end := leafRange(n)
	forest := s.forest
	budget := forest.maxComparisons

	for iter := begin; iter < end; iter++ {
		if budget != 0 && s.numComparisons >= budget {
			break
		}

		di := int(t.perm[iter].index)
		if s.visited[di] == s.searchID {
			continue
		}
		s.visited[di] = s.searchID

		d := distance(forest.metric, forest.dim, query, forest.pointVec(di))
		s.numComparisons++

		if numAdded < numNeighbors {
			best.Push(Neighbor{Index: di, Distance: d})
			numAdded++
		} else if best.Top().Distance > d {
			best.ReplaceTop(Neighbor{Index: di, Distance: d})
		}
	}

	return numAdded
}
