package ops

import (
	"math/rand/v2"
)

// Sampler keeps a fraction of routine import events. Rates are fixed at
// construction so reads need no locking.
type Sampler struct {
	defaultRate  float64
	rateByAction map[string]float64
	float        func() float64
}

// NewSampler creates a sampler with the given default rate and per-action
// overrides. Rates are clamped to [0, 1].
func NewSampler(defaultRate float64, overrides map[string]float64) *Sampler {
	s := &Sampler{
		defaultRate:  clamp(defaultRate),
		rateByAction: make(map[string]float64, len(overrides)),
		float:        rand.Float64,
	}
	for action, rate := range overrides {
		s.rateByAction[action] = clamp(rate)
	}
	return s
}

// Keep reports whether an event with action should be written.
func (s *Sampler) Keep(action string) bool {
	rate, ok := s.rateByAction[action]
	if !ok {
		rate = s.defaultRate
	}
	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return s.float() < rate //nolint:gosec // sampling doesn't need crypto rand
}

func clamp(rate float64) float64 {
	return min(max(rate, 0), 1)
}
