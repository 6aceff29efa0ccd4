// Package stochastic holds the explicitly seeded random source and the
// mean-reverting (Ornstein-Uhlenbeck style) trajectory generator.
//
// Nothing in this module draws from process-wide random state: every
// stochastic call receives a *Source, and a run threads exactly one Source
// through all of its draws so that a seed fully determines the output.
package stochastic

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a seeded pseudorandom stream. It is not safe for concurrent use.
type Source struct {
	seed uint64
	rng  *rand.Rand
}

// NewSource returns a Source backed by a PCG generator seeded from seed.
func NewSource(seed uint64) *Source {
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the source was built from.
func (s *Source) Seed() uint64 { return s.seed }

// Normal draws from N(0, 1).
func (s *Source) Normal() float64 {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: s.rng}.Rand()
}

// Gaussian draws from N(mu, sigma^2).
func (s *Source) Gaussian(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.rng}.Rand()
}

// Uniform draws from U[lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.rng}.Rand()
}

// Uniforms draws n consecutive values from U[lo, hi).
func (s *Source) Uniforms(n int, lo, hi float64) []float64 {
	u := distuv.Uniform{Min: lo, Max: hi, Src: s.rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = u.Rand()
	}
	return out
}
