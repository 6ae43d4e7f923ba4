package neat

import (
	"math"
)

// RandomSource is the uniform random source consumed by mutation, crossover
// and speciation. *rand.Rand from math/rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// chance returns true with probability p.
func chance(rng RandomSource, p float64) bool {
	return rng.Float64() < p
}

// intRange returns a uniform integer in the closed range [a, b].
func intRange(rng RandomSource, a, b int) int {
	return a + rng.Intn(b-a+1)
}

// uniform returns a uniform float in [a, b).
func uniform(rng RandomSource, a, b float64) float64 {
	return a + rng.Float64()*(b-a)
}

// perturb shifts a weight by a uniform step in [-delta, delta] and clamps the
// result to [-maxWeight, maxWeight].
func perturb(rng RandomSource, weight, delta, maxWeight float64) float64 {
	weight += uniform(rng, -delta, delta)
	return clamp(weight, -maxWeight, maxWeight)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
