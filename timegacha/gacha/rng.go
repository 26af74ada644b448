package gacha

import "math/rand/v2"

// RandomSource abstracts the generator behind all probability logic so
// draws are deterministically replayable in tests.
type RandomSource interface {
	Float64() float64 // [0,1)
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG returns the process-wide generator.
func DefaultRNG() RandomSource { return globalRNG{} }

type seededRNG struct {
	r *rand.Rand
}

// NewSeededRNG returns a replayable generator for tests and
// simulations.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
