package kdforest

import "fmt"

// ProgressFunc is called by Build after each tree finishes construction and
// its bounds pass, with the 1-based index of the tree just completed and
// the total number of trees. It carries no library dependency in the
// core's hot path; cmd/kdforest-demo wires it to a progress bar.
type ProgressFunc func(treesDone, totalTrees int)

// Forest is a collection of T independently-built, randomized KD-trees over
// one borrowed dataset. A Forest is built once (Build) and is immutable
// and safe for concurrent queries (via independent Searchers) afterward.
// The zero value is not usable; construct with New.
type Forest[S Float] struct {
	dim      int
	numTrees int
	metric   Metric

	thresholdMethod ThresholdMethod
	maxComparisons  int
	rng             RandSource
	progress        ProgressFunc

	points []S
	n      int
	built  bool

	trees       []*tree
	maxNumNodes int

	headSearcher *Searcher[S]
}

// Option configures a Forest at construction time.
type Option func(*options)

type options struct {
	thresholdMethod ThresholdMethod
	maxComparisons  int
	rng             RandSource
	progress        ProgressFunc
}

// WithThresholdMethod overrides the default median thresholding method.
// Options run only inside New, so it always takes effect before Build.
func WithThresholdMethod(m ThresholdMethod) Option {
	return func(o *options) { o.thresholdMethod = m }
}

// WithMaxComparisons sets the per-query comparison budget used by every
// Searcher subsequently created from this forest; 0 (the default) means
// exact search.
func WithMaxComparisons(n int) Option {
	return func(o *options) { o.maxComparisons = n }
}

// WithRandSource overrides the forest's build-time random source. Useful
// for reproducible tests; see NewRandSource.
func WithRandSource(r RandSource) Option {
	return func(o *options) { o.rng = r }
}

// WithProgress registers a callback invoked as Build finishes each tree.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// New returns a new, unbuilt forest indexing vectors of dim dimensions with
// numTrees independently-randomized trees, compared under metric. It panics
// if dim < 1 or numTrees < 1 — these are contract violations, not
// recoverable runtime conditions.
func New[S Float](dim, numTrees int, metric Metric, opts ...Option) *Forest[S] {
	if dim < 1 {
		contractViolation("New", "dimension must be >= 1, got %d", dim)
	}
	if numTrees < 1 {
		contractViolation("New", "numTrees must be >= 1, got %d", numTrees)
	}
	if metric != L1 && metric != L2 {
		contractViolation("New", "unsupported metric %v", metric)
	}

	o := options{
		thresholdMethod: ThresholdMedian,
		maxComparisons:  0,
		rng:             defaultRandSource(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Forest[S]{
		dim:             dim,
		numTrees:        numTrees,
		metric:          metric,
		thresholdMethod: o.thresholdMethod,
		maxComparisons:  o.maxComparisons,
		rng:             o.rng,
		progress:        o.progress,
	}
}

// SetThresholdMethod overrides the thresholding method. Must be called
// before Build; it panics otherwise, since changing it after trees exist
// would silently desynchronize built trees from the documented method.
func (f *Forest[S]) SetThresholdMethod(m ThresholdMethod) {
	if f.built {
		contractViolation("SetThresholdMethod", "forest already built")
	}
	f.thresholdMethod = m
}

// SetMaxNumComparisons sets the per-query comparison budget; 0 means exact.
// Unlike SetThresholdMethod this may be changed at any time, including
// between queries on existing Searchers, since it only affects Query's
// stopping condition, not tree shape.
func (f *Forest[S]) SetMaxNumComparisons(n int) {
	if n < 0 {
		contractViolation("SetMaxNumComparisons", "n must be >= 0, got %d", n)
	}
	f.maxComparisons = n
}

// Build constructs all numTrees trees and their bounds over points, a flat
// row-major slice of len(points)/dim vectors of dim scalars each. Build
// borrows points: it must outlive the Forest and must not be mutated for
// as long as any Searcher built from this Forest is in use. Build panics
// if called twice on the same Forest (no rebuild/incremental update is
// supported) and returns an error only if len(points) is not a multiple of
// dim, since that specific mismatch is the one a caller's ordinary
// data-loading bug is likely to trip rather than outright API misuse.
func (f *Forest[S]) Build(points []S) error {
	if f.built {
		contractViolation("Build", "forest already built")
	}
	if len(points)%f.dim != 0 {
		return fmt.Errorf("kdforest: Build: len(points)=%d is not a multiple of dim=%d", len(points), f.dim)
	}
	n := len(points) / f.dim
	if n == 0 {
		contractViolation("Build", "points must contain at least one vector")
	}

	f.points = points
	f.n = n
	f.trees = make([]*tree, f.numTrees)

	splitHeapCap := min(f.numTrees, splitHeapCapacity)

	for ti := 0; ti < f.numTrees; ti++ {
		t := newTree(n)
		root := t.newNode(0)
		b := &builder[S]{
			forest:    f,
			tree:      t,
			splitHeap: newSplitHeap(splitHeapCap),
		}
		b.build(root, 0, n, 0)
		computeBounds(t, f.dim)
		f.trees[ti] = t
		f.maxNumNodes += int(t.numUsedNodes)

		if f.progress != nil {
			f.progress(ti+1, f.numTrees)
		}
	}

	f.built = true
	return nil
}

// Dim returns the dataset's dimensionality.
func (f *Forest[S]) Dim() int { return f.dim }

// NumTrees returns the number of trees in the forest.
func (f *Forest[S]) NumTrees() int { return f.numTrees }

// Metric returns the configured distance metric.
func (f *Forest[S]) Metric() Metric { return f.metric }

// ThresholdMethod returns the configured thresholding method.
func (f *Forest[S]) ThresholdMethod() ThresholdMethod { return f.thresholdMethod }

// MaxNumComparisons returns the configured per-query comparison budget (0
// means exact).
func (f *Forest[S]) MaxNumComparisons() int { return f.maxComparisons }

// NumData returns the number of indexed points; valid only after Build.
func (f *Forest[S]) NumData() int { return f.n }

// TreeDepth returns the observed depth of tree treeIndex; valid only after
// Build. Panics if treeIndex is out of range.
func (f *Forest[S]) TreeDepth(treeIndex int) int {
	f.mustTree(treeIndex)
	return f.trees[treeIndex].depth
}

// TreeNumUsedNodes returns the number of arena slots tree treeIndex
// actually used; valid only after Build. Panics if treeIndex is out of
// range.
func (f *Forest[S]) TreeNumUsedNodes(treeIndex int) int {
	f.mustTree(treeIndex)
	return int(f.trees[treeIndex].numUsedNodes)
}

func (f *Forest[S]) mustTree(treeIndex int) {
	if !f.built {
		contractViolation("Forest", "forest not built")
	}
	if treeIndex < 0 || treeIndex >= f.numTrees {
		contractViolation("Forest", "tree index %d out of range [0,%d)", treeIndex, f.numTrees)
	}
}

// pointCoord returns the d-th coordinate of point i, widened to float64.
func (f *Forest[S]) pointCoord(i, d int) float64 {
	return float64(f.points[i*f.dim+d])
}

// pointVec returns the flat coordinate slice for point i.
func (f *Forest[S]) pointVec(i int) []S {
	return f.points[i*f.dim : (i+1)*f.dim]
}
