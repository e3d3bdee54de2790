package particles

import "math/rand/v2"

// Source supplies uniformly distributed values in [0, 1). A seeded source
// makes particle layouts reproducible.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic source for seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// between maps a unit sample onto [lo, lo+span).
func between(src Source, lo, span float64) float64 {
	return src.Float64()*span + lo
}
