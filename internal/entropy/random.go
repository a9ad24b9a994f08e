// Package entropy provides the uniform random sources that drive every
// probabilistic rule in the simulation.
// All draws go through a Source handed in by the caller, so a region built
// from a seeded source replays exactly.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a deterministic Source backed by a PCG generator.
type Seeded struct {
	r *mrand.Rand
}

// NewSeeded creates a deterministic source from the given seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewPCG(uint64(seed), 0))}
}

// Float64 returns the next value in [0, 1).
func (s *Seeded) Float64() float64 {
	return s.r.Float64()
}

// Crypto is a non-reproducible Source using crypto/rand.
// Used when a run is started without a seed.
type Crypto struct{}

// Float64 returns a random float64 in [0, 1).
func (Crypto) Float64() float64 {
	return cryptoRandFloat()
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Sequence replays a fixed list of draws, cycling when exhausted.
// An empty sequence always returns 0.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence creates a Source that returns values in order.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Draws reports how many values have been consumed so far.
func (s *Sequence) Draws() int {
	return s.next
}

// Constant always returns the same value. Handy for forcing every
// probability check in one direction.
type Constant float64

// Float64 returns c.
func (c Constant) Float64() float64 {
	return float64(c)
}

// FromSeed returns a Seeded source, or a Crypto source when seed is 0.
func FromSeed(seed int64) Source {
	if seed == 0 {
		return Crypto{}
	}
	return NewSeeded(seed)
}
