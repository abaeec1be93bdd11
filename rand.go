package kdforest

import "math/rand/v2"

// RandSource is the injected stream of uniform 32-bit integers the builder
// uses to pick uniformly among the top-variance split-dimension candidates. It
// is the one build-time collaborator this package treats as genuinely
// external: swap it for a deterministic source in tests, or a
// cryptographically irrelevant but reproducible one when a forest's exact
// tree shape must be replayed.
type RandSource interface {
	// Uint32 returns the next uniformly distributed uint32 in the stream.
	Uint32() uint32
}

// pcgSource adapts math/rand/v2's PCG generator to RandSource. It is the
// default used by New when no WithRandSource option is given.
type pcgSource struct {
	r *rand.Rand
}

// NewRandSource returns the package's default RandSource, seeded from two
// 64-bit seeds. Use this for reproducible forests in tests and benchmarks;
// New uses a randomly-seeded instance when no source is supplied.
func NewRandSource(seed1, seed2 uint64) RandSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (p *pcgSource) Uint32() uint32 {
	return uint32(p.r.Uint64() & 0xffffffff)
}

func defaultRandSource() RandSource {
	// math/rand/v2's package-level functions are auto-seeded; wrap an
	// auto-seeded PCG so forests built without an explicit WithRandSource
	// option still get distinct trees across runs.
	return NewRandSource(rand.Uint64(), rand.Uint64())
}
