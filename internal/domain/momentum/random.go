package momentum

import "math/rand"

// RandomSource supplies every stochastic input of the engine. Forecast noise
// is genuinely stochastic; initial-momentum jitter stands in for pre-match
// data the engine does not have.
type RandomSource interface {
	// Jitter returns a value uniformly distributed in [-scale, scale].
	Jitter(scale float64) float64
}

// Forker is implemented by sources that can derive an independent child
// stream from a key without consuming their own draws. The engine takes
// forecast noise from a child keyed by the history length, so repeated
// forecasts of an unchanged match are identical. Sources that do not
// implement Forker are drawn from directly.
type Forker interface {
	Fork(key int64) RandomSource
}

// NullSource always returns 0, making the engine fully deterministic.
type NullSource struct{}

// Jitter implements RandomSource.
func (NullSource) Jitter(float64) float64 { return 0 }

// Fork implements Forker.
func (NullSource) Fork(int64) RandomSource { return NullSource{} }

// SeededSource is a reproducible RandomSource. It is not safe for
// concurrent use, matching the engine it feeds.
type SeededSource struct {
	seed int64
	rng  *rand.Rand
}

// NewSeededSource returns a source seeded with seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{seed: seed, rng: rand.New(rand.NewSource(seed))} //nolint:gosec // simulation noise, not security sensitive
}

// Fork implements Forker. The child seed mixes the key into the parent seed
// with a golden-ratio multiplier so neighbouring keys give unrelated streams.
func (s *SeededSource) Fork(key int64) RandomSource {
	return NewSeededSource(int64(uint64(s.seed) ^ (uint64(key)+1)*0x9E3779B97F4A7C15))
}

// Jitter implements RandomSource.
func (s *SeededSource) Jitter(scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	return (s.rng.Float64()*2 - 1) * scale
}
