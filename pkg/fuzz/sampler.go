// Package fuzz implements hand-rolled property-style parameter sampling for
// table-driven tests elsewhere in the repository: random geometries and
// fault-rate tables biased toward the small, near-boundary values most
// likely to expose off-by-one errors in the codec/ECC/domain layers.
package fuzz

import (
	"math"
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

// Sampler holds a seeded RNG and produces randomized simulator inputs.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a Sampler seeded with the given value.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// logUniform samples uniformly in log-space on [lo, hi], returning the
// nearest int — skews toward small values without ever drawing zero.
func (s *Sampler) logUniform(lo, hi float64) int {
	return int(math.Exp(s.rng.Float64()*(math.Log(hi)-math.Log(lo)) + math.Log(lo)))
}

// weightedChoice picks one element from choices according to integer weights.
func (s *Sampler) weightedChoice(choices []int, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := s.rng.Intn(total)
	for i, w := range choices {
		r -= weights[i]
		if r < 0 {
			return w
		}
	}
	return choices[len(choices)-1]
}

// SampleGeometry returns a random rank geometry, biased toward the small
// power-of-two device/pin counts real DIMMs use.
func (s *Sampler) SampleGeometry() fault.Geometry {
	return fault.Geometry{
		RanksPerDomain: s.weightedChoice([]int{1, 2, 4}, []int{6, 3, 1}),
		DevicesPerRank: s.weightedChoice([]int{4, 9, 18, 36}, []int{2, 3, 4, 1}),
		PinsPerDevice:  s.weightedChoice([]int{4, 8, 16}, []int{4, 3, 1}),
		BeatHeight:     s.weightedChoice([]int{1, 2}, []int{5, 1}),
	}
}

// SampleRateInfo builds a fault-rate table over kinds, drawing each rate
// log-uniformly between a rare and a common per-hour occurrence rate so the
// resulting table spans several orders of magnitude like a real calibrated
// one would.
func (s *Sampler) SampleRateInfo(kinds []fault.Kind) *fault.RateInfo {
	rates := make(map[fault.Kind]float64, len(kinds))
	for _, k := range kinds {
		rates[k] = float64(s.logUniform(1, 10000)) * 1e-9
	}
	return fault.NewRateInfo(rates)
}

// SampleSeed draws a fresh PRNG seed, for spinning up an independent PRNG per
// sampled trial without correlating it to the sampler's own draws.
func (s *Sampler) SampleSeed() int64 {
	return s.rng.Int63()
}
