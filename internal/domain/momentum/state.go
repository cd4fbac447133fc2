package momentum

import (
	"fmt"
	"strings"
)

// Neutral is the no-advantage point of every dimension.
const Neutral = 0.5

// Side identifies one participant, both of them, or none.
type Side string

const (
	Home   Side = "home"
	Away   Side = "away"
	Both   Side = "both"
	NoSide Side = ""
)

// ParseSide accepts "home" or "away" (case-insensitive).
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Home:
		return Home, nil
	case Away:
		return Away, nil
	default:
		return NoSide, fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// Opponent returns the other participant. Both and NoSide map to themselves.
func (s Side) Opponent() Side {
	switch s {
	case Home:
		return Away
	case Away:
		return Home
	default:
		return s
	}
}

// Valid reports whether s is Home or Away.
func (s Side) Valid() bool { return s == Home || s == Away }

// State holds per-side dimension values. Global momentum is derived on read.
type State struct {
	reg  *Registry
	home []float64
	away []float64
}

// NewState returns a state with every value at Neutral.
func NewState(reg *Registry) *State {
	s := &State{
		reg:  reg,
		home: make([]float64, reg.Len()),
		away: make([]float64, reg.Len()),
	}
	for i := range s.home {
		s.home[i] = Neutral
		s.away[i] = Neutral
	}
	return s
}

func (s *State) side(side Side) []float64 {
	if side == Away {
		return s.away
	}
	return s.home
}

// Value returns the value of dimension i for side.
func (s *State) Value(side Side, i int) float64 { return s.side(side)[i] }

// Set clamps v into [0,1] and stores it.
func (s *State) Set(side Side, i int, v float64) {
	v = clamp01(v)
	assertBounded(s.reg.dims[i].Name, v)
	s.side(side)[i] = v
}

// Add shifts dimension i for side by delta, clamped.
func (s *State) Add(side Side, i int, delta float64) {
	s.Set(side, i, s.side(side)[i]+delta)
}

// Global is the weighted mean of the side's dimension values.
func (s *State) Global(side Side) float64 {
	vals := s.side(side)
	var sum float64
	for i, d := range s.reg.dims {
		sum += vals[i] * d.Weight
	}
	g := sum / s.reg.totalWeight
	assertBounded("global", g)
	return g
}

// Values returns a name-keyed copy of the side's dimension values.
func (s *State) Values(side Side) map[string]float64 {
	vals := s.side(side)
	out := make(map[string]float64, len(vals))
	for i, d := range s.reg.dims {
		out[d.Name] = vals[i]
	}
	return out
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	c := &State{
		reg:  s.reg,
		home: make([]float64, len(s.home)),
		away: make([]float64, len(s.away)),
	}
	copy(c.home, s.home)
	copy(c.away, s.away)
	return c
}

// Dominant returns the side with higher global momentum and the size of its
// lead. An exact tie yields NoSide.
func (s *State) Dominant() (Side, float64) {
	return dominance(s.Global(Home), s.Global(Away))
}

func dominance(home, away float64) (Side, float64) {
	switch {
	case home > away:
		return Home, home - away
	case away > home:
		return Away, away - home
	default:
		return NoSide, 0
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
