// Package random isolates every random decision the scene makes (initial
// angles, body sizes, reset jitter, queue side assignment) behind a seedable
// source so that choreography can be replayed in tests.
package random

import (
	"time"

	"golang.org/x/exp/rand"
)

// Source is the randomness consumed by layout and registry code.
type Source interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// Intn returns a value in [0,n). n must be positive.
	Intn(n int) int
	// Perm returns a random permutation of [0,n).
	Perm(n int) []int
}

// Seeded is a deterministic Source.
type Seeded struct {
	seed uint64
	rnd  *rand.Rand
}

// New returns a Source that replays the same sequence for the same seed.
func New(seed uint64) *Seeded {
	return &Seeded{
		seed: seed,
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

// NewFromTime seeds a Source from the wall clock, for production use.
func NewFromTime() *Seeded {
	return New(uint64(time.Now().UnixNano()))
}

// Seed reports the seed the source was created with.
func (s *Seeded) Seed() uint64 {
	return s.seed
}

// Float64 implements Source.
func (s *Seeded) Float64() float64 {
	return s.rnd.Float64()
}

// Intn implements Source.
func (s *Seeded) Intn(n int) int {
	return s.rnd.Intn(n)
}

// Perm implements Source.
func (s *Seeded) Perm(n int) []int {
	return s.rnd.Perm(n)
}

// Symmetric returns a value in [-half, half).
func Symmetric(src Source, half float64) float64 {
	return (src.Float64() - 0.5) * 2 * half
}
