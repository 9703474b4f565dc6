// Package rng provides the deterministic pseudo-random number source used by
// every randomized part of the search engine (local-search shuffles, SREX
// route-range selection, population tournaments).
//
// The concrete generator is a 32-bit xorshift128, grounded on
// original_source/hgs/include/XorShift128.h (state layout, seed constants,
// and the "xor128" update from Marsaglia's "Xorshift RNGs"). It is wrapped
// as a math/rand.Source so the rest of the engine can use the standard
// *rand.Rand API (Intn, Shuffle, Float64, …) instead of hand-rolled sampling.
//
// Determinism & substreams:
//
//	Same seed ⇒ identical sequence, on any platform (pure integer ops, no
//	floating point, no time-based entropy). Independent substreams for
//	parallel runs or per-subsystem RNGs are derived with a SplitMix64-style
//	avalanche mix, the same deriveSeed/deriveRNG idiom the teacher's tsp
//	package uses for its own multi-start heuristics (tsp/rng.go).
package rng

import "math/rand"

// xorShift128 is a 32-bit xorshift generator with four words of state,
// grounded on original_source/hgs/include/XorShift128.h.
type xorShift128 struct {
	state [4]uint32
}

// newXorShift128 seeds the generator exactly as the original: state[0] is the
// seed, the remaining three words are Marsaglia's published constants.
func newXorShift128(seed int64) *xorShift128 {
	return &xorShift128{state: [4]uint32{
		uint32(seed),
		123456789,
		362436069,
		521288629,
	}}
}

// next returns the next 32-bit pseudo-random value, advancing the state.
func (x *xorShift128) next() uint32 {
	t := x.state[3]

	s := x.state[0]
	x.state[3] = x.state[2]
	x.state[2] = x.state[1]
	x.state[1] = s

	t ^= t << 11
	t ^= t >> 8

	x.state[0] = t ^ s ^ (s >> 19)
	return x.state[0]
}

// Int63 implements rand.Source by combining two 32-bit draws into 63 bits.
func (x *xorShift128) Int63() int64 {
	hi := uint64(x.next())
	lo := uint64(x.next())
	return int64((hi<<32 | lo) &^ (1 << 63))
}

// Seed implements rand.Source, reseeding the generator exactly as construction does.
func (x *xorShift128) Seed(seed int64) {
	*x = *newXorShift128(seed)
}

// defaultSeed is the fixed "zero" seed used when callers pass seed==0,
// matching tsp/rng.go's defaultRNGSeed policy.
const defaultSeed int64 = 1

// New returns a deterministic *rand.Rand backed by the xorshift128 source.
// seed==0 is mapped to defaultSeed so a zero-valued Config still produces a
// reproducible (not all-zero) stream.
func New(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultSeed
	}
	return rand.New(newXorShift128(s))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed via a SplitMix64-style finalizer, so that independent substreams
// (one per worker, one per subsystem) are decorrelated even when the parent
// seed repeats. Grounded on tsp/rng.go's deriveSeed.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// Derive creates an independent deterministic RNG stream from a base RNG and
// a stream identifier (e.g. a worker index). Consumes one draw from base to
// decorrelate consecutive derivations. If base is nil, defaultSeed is used
// as the parent. Grounded on tsp/rng.go's deriveRNG.
func Derive(base *rand.Rand, stream uint64) *rand.Rand {
	parent := defaultSeed
	if base != nil {
		parent = base.Int63()
	}
	return New(deriveSeed(parent, stream))
}

// ShuffleInts performs an in-place Fisher-Yates shuffle of a using rng.
// Grounded on tsp/rng.go's shuffleIntsInPlace.
func ShuffleInts(a []int, r *rand.Rand) {
	n := len(a)
	if n <= 1 {
		return
	}
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// PermRange returns a deterministic permutation of 0..n-1.
func PermRange(n int, r *rand.Rand) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	ShuffleInts(p, r)
	return p
}

// Intn returns a non-negative pseudo-random int in [0,n) using r, treating
// n<=0 as the degenerate single value 0 (mirrors math/rand's own panic-free
// callers avoiding n<=0 by construction elsewhere in the engine).
func Intn(r *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return r.Intn(n)
}
