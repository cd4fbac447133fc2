package momentum

// snapAt builds a snapshot carrying only global momentum.
func snapAt(seq, minute int, home, away float64) Snapshot {
	return Snapshot{
		Sequence: seq,
		Minute:   minute,
		Global:   SidePair{Home: home, Away: away},
		Dimensions: map[Side]map[string]float64{
			Home: {},
			Away: {},
		},
	}
}

// series builds one snapshot per pair, one minute apart.
func series(pairs ...[2]float64) []Snapshot {
	out := make([]Snapshot, len(pairs))
	for i, p := range pairs {
		out[i] = snapAt(i+1, i+1, p[0], p[1])
	}
	return out
}

func homeLead() [2]float64 { return [2]float64{0.55, 0.45} }
func awayLead() [2]float64 { return [2]float64{0.45, 0.55} }

func neutralConfig() InitConfig {
	return InitConfig{HomeStrength: 0.5, AwayStrength: 0.5, Importance: 0.5}
}
