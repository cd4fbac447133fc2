package momentum

// transferThreshold is the asymmetry a dimension tolerates before transfer.
const transferThreshold = 0.3

// Decay relaxes every value toward Neutral by (1 - decayRate) of its
// distance. It never overshoots, so repeated decay converges monotonically.
func Decay(s *State) {
	for i, d := range s.reg.dims {
		keep := 1 - d.DecayRate
		for _, side := range [...]Side{Home, Away} {
			v := s.Value(side, i)
			s.Set(side, i, v-(v-Neutral)*keep)
		}
	}
}

// Transfer moves (|home-away| - 0.3) * transferRate from the stronger side
// to the weaker one in every dimension whose gap exceeds 0.3. Without
// clamping home+away is conserved; clamping at 0 or 1 is the only leak.
func Transfer(s *State) {
	for i, d := range s.reg.dims {
		h, a := s.Value(Home, i), s.Value(Away, i)
		gap := h - a
		if gap < 0 {
			gap = -gap
		}
		if gap <= transferThreshold {
			continue
		}
		amount := (gap - transferThreshold) * d.TransferRate
		if h > a {
			s.Set(Home, i, h-amount)
			s.Set(Away, i, a+amount)
		} else {
			s.Set(Home, i, h+amount)
			s.Set(Away, i, a-amount)
		}
	}
}
