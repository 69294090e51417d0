package domain

// Rand is the random source behind every simulated outcome.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// IntBetween returns a value in [lo, hi] inclusive.
func IntBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// FloatBetween returns a value in [lo, hi).
func FloatBetween(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
