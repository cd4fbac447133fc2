package momentum

// ShiftType classifies a change in dominance.
type ShiftType string

const (
	ShiftSwitch        ShiftType = "switch"
	ShiftAmplification ShiftType = "amplification"
)

// amplificationThreshold is the lead growth that counts as amplification.
const amplificationThreshold = 0.2

// MomentumShift records a dominance change between consecutive snapshots.
type MomentumShift struct {
	Type        ShiftType `json:"type"`
	Minute      int       `json:"minute"`
	Sequence    int       `json:"sequence"`
	FromSide    Side      `json:"from_side,omitempty"`
	ToSide      Side      `json:"to_side"`
	Magnitude   float64   `json:"magnitude"`
	TriggeredBy EventType `json:"triggered_by"`
}

// DetectShift compares two consecutive snapshots. A switch needs a dominant
// side in both and they must differ; its magnitude is the sum of both leads.
// Otherwise a lead that grew by more than 0.2 is an amplification, including
// growth out of a dead level. An exact tie has no dominant side.
func DetectShift(prev, curr Snapshot, trigger EventType) *MomentumShift {
	from, before := prev.Dominant()
	to, after := curr.Dominant()
	if to == NoSide {
		return nil
	}

	shift := &MomentumShift{
		Minute:      curr.Minute,
		Sequence:    curr.Sequence,
		FromSide:    from,
		ToSide:      to,
		TriggeredBy: trigger,
	}
	switch {
	case from != NoSide && from != to:
		shift.Type = ShiftSwitch
		shift.Magnitude = before + after
	case after-before > amplificationThreshold:
		shift.Type = ShiftAmplification
		shift.Magnitude = after - before
	default:
		return nil
	}
	return shift
}
