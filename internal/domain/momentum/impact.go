package momentum

import "fmt"

// maxDelta bounds a single event's effect on one dimension.
const maxDelta = 0.5

// Score factors by the acting side's standing before the event.
const (
	leadingFactor  = 0.9
	trailingFactor = 1.2
	levelFactor    = 1.0
)

// Impact is the per-dimension delta one event applies to its side.
type Impact struct {
	EventType        EventType          `json:"event_type"`
	Side             Side               `json:"side"`
	Phase            string             `json:"phase"`
	PhaseSensitivity float64            `json:"phase_sensitivity"`
	ScoreFactor      float64            `json:"score_factor"`
	ImportanceFactor float64            `json:"importance_factor"`
	Deltas           map[string]float64 `json:"deltas"`

	deltas []float64
}

// Delta returns the delta of dimension i.
func (im Impact) Delta(i int) float64 { return im.deltas[i] }

// CalculateImpact is a pure function of the event and the context as it
// stood before the event. Phase sensitivity follows the match clock once it
// has seen the event, so a late event is weighted by the current phase. An
// unknown event type yields all-zero deltas and a warning.
func CalculateImpact(reg *Registry, e Event, ctx MatchContext) (Impact, *Warning) {
	phase := PhaseFor(max(ctx.CurrentMinute, e.Minute))
	im := Impact{
		EventType:        e.Type,
		Side:             e.Side,
		Phase:            phase.Name,
		PhaseSensitivity: phase.Sensitivity,
		ScoreFactor:      scoreFactor(e.Side, ctx),
		ImportanceFactor: importanceFactor(ctx.Importance),
		Deltas:           make(map[string]float64, reg.Len()),
		deltas:           make([]float64, reg.Len()),
	}

	var warn *Warning
	if e.Type == EventUnknown || e.Type >= eventTypeCount {
		warn = &Warning{
			Code:    WarnUnknownEventType,
			Message: fmt.Sprintf("no impact template for %q", e.RawType),
		}
	}

	factor := im.PhaseSensitivity * im.ScoreFactor * im.ImportanceFactor
	for i, d := range reg.dims {
		delta := 0.0
		if warn == nil {
			delta = clamp(BaseImpact(e.Type, d.Name)*factor, -maxDelta, maxDelta)
		}
		im.deltas[i] = delta
		im.Deltas[d.Name] = delta
	}
	return im, warn
}

// apply adds the impact to the acting side.
func (im Impact) apply(s *State) {
	for i, d := range im.deltas {
		if d != 0 {
			s.Add(im.Side, i, d)
		}
	}
}

func scoreFactor(side Side, ctx MatchContext) float64 {
	switch lead := ctx.Lead(side); {
	case lead > 0:
		return leadingFactor
	case lead < 0:
		return trailingFactor
	default:
		return levelFactor
	}
}

func importanceFactor(importance float64) float64 {
	f := 1 + (importance - 0.5)
	if f < 0 {
		return 0
	}
	return f
}
