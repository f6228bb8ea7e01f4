// Package rng provides the seeded pseudo-random source used for simulated
// probabilistic effects in the decision pipeline. The same seed always
// yields the same sequence, on every platform: the recurrence is pure
// integer arithmetic with exact modulo semantics.
package rng

// Rand is a linear congruential generator over
// seed = (seed*9301 + 49297) mod 233280.
//
// A Rand is owned exclusively by one decision computation and is not safe
// for concurrent use.
type Rand struct {
	seed int64
}

const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280
)

// New returns a generator starting from seed.
func New(seed int64) *Rand {
	return &Rand{seed: seed}
}

// NextFloat returns the next value in [0, 1).
func (r *Rand) NextFloat() float64 {
	r.seed = (r.seed*multiplier + increment) % modulus
	if r.seed < 0 {
		r.seed += modulus
	}
	return float64(r.seed) / modulus
}

// IntBetween returns an integer in [min, max).
func (r *Rand) IntBetween(min, max int) int {
	return int(r.NextFloat()*float64(max-min)) + min
}

// FloatBetween returns a float in [min, max).
func (r *Rand) FloatBetween(min, max float64) float64 {
	return r.NextFloat()*(max-min) + min
}

// Pick returns one element of items chosen uniformly. It panics on an
// empty slice, mirroring an out-of-range index.
func Pick[T any](r *Rand, items []T) T {
	return items[r.IntBetween(0, len(items))]
}

// Shuffle permutes items in place using Fisher–Yates driven by the integer
// draws of this generator.
func Shuffle[T any](r *Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.IntBetween(0, i+1)
		items[i], items[j] = items[j], items[i]
	}
}
