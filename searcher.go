package kdforest

// Searcher holds per-goroutine query state against one Forest: a frontier
// heap, a visited-point book, and query counters. Any number of Searchers
// may be created against the same built Forest and used concurrently from
// different goroutines — each Searcher's state is private to it — but
// creating and closing Searchers is not itself goroutine-safe; coordinate
// NewSearcher/Close calls from a single goroutine or under an external
// mutex.
type Searcher[S Float] struct {
	forest   *Forest[S]
	frontier *arrayHeap[frontierState]
	visited  []uint64
	searchID uint64

	numComparisons     int
	numRecursions      int
	numSimplifications int

	next, prev *Searcher[S]
}

// NewSearcher creates a Searcher bound to f. It panics if f has not yet
// been built.
func (f *Forest[S]) NewSearcher() *Searcher[S] {
	if !f.built {
		contractViolation("NewSearcher", "forest not built")
	}

	s := &Searcher[S]{
		forest:   f,
		frontier: newFrontierHeap(f.maxNumNodes),
		visited:  make([]uint64, f.n),
	}

	s.next = f.headSearcher
	if f.headSearcher != nil {
		f.headSearcher.prev = s
	}
	f.headSearcher = s

	return s
}

// Close unlinks s from its forest's searcher list. It is safe to call
// Close without ever querying. Close is not idempotent: it clears s's
// next/prev links, so a second call sees no predecessor and sets the
// forest's list head to nil, dropping every other searcher from the list.
func (s *Searcher[S]) Close() {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		s.forest.headSearcher = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	}
	s.next = nil
	s.prev = nil
}

// NumComparisons returns the number of full-vector distance comparisons
// performed by the most recent Query call.
func (s *Searcher[S]) NumComparisons() int { return s.numComparisons }

// NumSimplifications returns the number of times the most recent Query call
// stopped early because no pending frontier partition could still improve
// the result.
func (s *Searcher[S]) NumSimplifications() int { return s.numSimplifications }

// NumRecursions returns the number of inner branch-and-bound recursion
// steps (query.go's descendAndBound) performed by the most recent Query
// call.
func (s *Searcher[S]) NumRecursions() int { return s.numRecursions }
