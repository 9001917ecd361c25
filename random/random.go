// Package random provides the seeded pseudo-random source shared by the
// puzzle layout engines.
//
// Every random decision a generator makes goes through an Engine so that a
// seed fully determines the resulting layout. Engines are not safe for
// concurrent use; give each generation its own instance.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Engine is a deterministic pseudo-random source.
type Engine struct {
	seed int64
	rng  *rand.Rand
}

// New returns an engine seeded with seed.
func New(seed int64) *Engine {
	return &Engine{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// NewSeed generates a high-entropy seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Seed returns the seed the engine was last initialized with.
func (e *Engine) Seed() int64 {
	return e.seed
}

// Reseed resets the engine so that subsequent calls replay the sequence
// produced by New(seed).
func (e *Engine) Reseed(seed int64) {
	e.seed = seed
	e.rng.Seed(seed)
}

// Intn returns a uniformly distributed integer in [min, max).
// If max <= min, min is returned without advancing the engine.
func (e *Engine) Intn(min, max int) int {
	if max <= min {
		return min
	}
	return min + e.rng.Intn(max-min)
}

// Pick returns a uniformly chosen element of s. It panics on an empty slice.
func Pick[T any](e *Engine, s []T) T {
	return s[e.Intn(0, len(s))]
}

// Shuffle performs an in-place Fisher-Yates shuffle of s.
func Shuffle[T any](e *Engine, s []T) {
	for n := len(s) - 1; n > 0; n-- {
		k := e.Intn(0, n+1)
		s[k], s[n] = s[n], s[k]
	}
}
