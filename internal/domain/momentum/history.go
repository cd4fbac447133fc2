package momentum

// SidePair carries one value per side.
type SidePair struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// For returns the value of side.
func (p SidePair) For(side Side) float64 {
	if side == Away {
		return p.Away
	}
	return p.Home
}

// Trigger names the event that produced a snapshot.
type Trigger struct {
	Type EventType `json:"type"`
	Side Side      `json:"side"`
}

// Snapshot is the immutable state recorded after one processed event.
type Snapshot struct {
	Sequence   int                         `json:"sequence"`
	Minute     int                         `json:"minute"`
	Global     SidePair                    `json:"global"`
	Dimensions map[Side]map[string]float64 `json:"dimensions"`
	Context    MatchContext                `json:"context"`
	Trigger    Trigger                     `json:"trigger"`
}

// Dominant returns the leading side of the snapshot and its lead.
func (s Snapshot) Dominant() (Side, float64) {
	return dominance(s.Global.Home, s.Global.Away)
}

func takeSnapshot(seq, minute int, st *State, ctx MatchContext, trig Trigger) Snapshot {
	return Snapshot{
		Sequence: seq,
		Minute:   minute,
		Global:   SidePair{Home: st.Global(Home), Away: st.Global(Away)},
		Dimensions: map[Side]map[string]float64{
			Home: st.Values(Home),
			Away: st.Values(Away),
		},
		Context: ctx,
		Trigger: trig,
	}
}

// History is the append-only snapshot log of one match.
type History struct {
	snaps []Snapshot
}

// Len returns the number of recorded snapshots.
func (h *History) Len() int { return len(h.snaps) }

func (h *History) append(s Snapshot) { h.snaps = append(h.snaps, s) }

// Last returns the most recent snapshot.
func (h *History) Last() (Snapshot, bool) {
	if len(h.snaps) == 0 {
		return Snapshot{}, false
	}
	return h.snaps[len(h.snaps)-1], true
}

// Window returns a copy of the last n snapshots, or all of them when fewer exist.
func (h *History) Window(n int) []Snapshot {
	if n > len(h.snaps) {
		n = len(h.snaps)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Snapshot, n)
	copy(out, h.snaps[len(h.snaps)-n:])
	return out
}

// All returns a copy of every snapshot.
func (h *History) All() []Snapshot { return h.Window(len(h.snaps)) }

// AtMinute returns the last snapshot recorded at minute.
func (h *History) AtMinute(minute int) (Snapshot, bool) {
	for i := len(h.snaps) - 1; i >= 0; i-- {
		if h.snaps[i].Minute == minute {
			return h.snaps[i], true
		}
	}
	return Snapshot{}, false
}

func globals(snaps []Snapshot, side Side) []float64 {
	out := make([]float64, len(snaps))
	for i, s := range snaps {
		out[i] = s.Global.For(side)
	}
	return out
}
