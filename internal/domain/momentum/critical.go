package momentum

import "sort"

const (
	minCriticalSnapshots = 5
	minVolatileSnapshots = 10
	criticalShiftMag     = 0.25
	majorTransitionMag   = 0.35
	dominantAdvantage    = 0.25
	minDominantDuration  = 5
	volatileWindow       = 5
	volatileThreshold    = 0.2
	phaseMergeGap        = 2
	momentSpacing        = 3
	strongMomentum       = 0.7
)

// CriticalMomentType classifies a critical moment.
type CriticalMomentType string

const (
	MomentShift           CriticalMomentType = "momentum_shift"
	MomentDominantPeriod  CriticalMomentType = "dominant_period"
	MomentMomentumGoal    CriticalMomentType = "momentum_goal"
	MomentVolatilePhase   CriticalMomentType = "volatile_phase"
	MomentMajorTransition CriticalMomentType = "major_transition"
)

// MomentumGoal is a goal scored while the scorer's momentum was above 0.7.
type MomentumGoal struct {
	Minute   int     `json:"minute"`
	Side     Side    `json:"side"`
	Momentum float64 `json:"momentum"`
}

// CriticalMoment is one notable instant or span of the match.
type CriticalMoment struct {
	Type         CriticalMomentType `json:"type"`
	Minute       int                `json:"minute"`
	EndMinute    int                `json:"end_minute"`
	Side         Side               `json:"side,omitempty"`
	Magnitude    float64            `json:"magnitude"`
	TriggeredBy  *EventType         `json:"triggered_by,omitempty"`
	Significance float64            `json:"significance"`
}

// CriticalMoments is the filtered, minute-ordered list of moments.
type CriticalMoments struct {
	Moments      []CriticalMoment `json:"moments"`
	MostCritical *CriticalMoment  `json:"most_critical,omitempty"`
	Volatility   float64          `json:"volatility"`
	Warnings     []Warning        `json:"warnings,omitempty"`
}

// FindCriticalMoments merges large shifts, sustained dominance, momentum
// goals and volatile phases, keeps at most one moment per three minutes and
// picks the most significant.
func FindCriticalMoments(snaps []Snapshot, shifts []MomentumShift, goals []MomentumGoal) CriticalMoments {
	res := CriticalMoments{Moments: []CriticalMoment{}, Volatility: VolatilityIndex(snaps)}
	if len(snaps) < minCriticalSnapshots {
		res.Warnings = append(res.Warnings, *insufficientHistory("critical moments", len(snaps), minCriticalSnapshots))
		return res
	}

	var all []CriticalMoment
	for _, s := range shifts {
		if s.Magnitude <= criticalShiftMag {
			continue
		}
		trig := s.TriggeredBy
		all = append(all, CriticalMoment{
			Type:         MomentShift,
			Minute:       s.Minute,
			EndMinute:    s.Minute,
			Side:         s.ToSide,
			Magnitude:    s.Magnitude,
			TriggeredBy:  &trig,
			Significance: min1(s.Magnitude * 1.5),
		})
	}
	all = append(all, dominantPeriods(snaps)...)
	for _, g := range goals {
		goal := EventGoal
		all = append(all, CriticalMoment{
			Type:         MomentMomentumGoal,
			Minute:       g.Minute,
			EndMinute:    g.Minute,
			Side:         g.Side,
			Magnitude:    g.Momentum,
			TriggeredBy:  &goal,
			Significance: g.Momentum,
		})
	}
	all = append(all, volatilePhases(snaps, shifts)...)

	sort.SliceStable(all, func(i, j int) bool { return all[i].Minute < all[j].Minute })
	for _, m := range all {
		if n := len(res.Moments); n > 0 && m.Minute <= res.Moments[n-1].Minute+momentSpacing {
			continue
		}
		res.Moments = append(res.Moments, m)
	}
	for i := range res.Moments {
		if res.MostCritical == nil || res.Moments[i].Significance > res.MostCritical.Significance {
			m := res.Moments[i]
			res.MostCritical = &m
		}
	}
	return res
}

// dominantPeriods finds runs where one side leads by more than 0.25 for at
// least five minutes. A run ends the minute before the lead drops or changes
// hands; an open run ends at the last snapshot.
func dominantPeriods(snaps []Snapshot) []CriticalMoment {
	var out []CriticalMoment
	var cur *CriticalMoment
	var advs []float64

	closeRun := func(end int) {
		if cur == nil {
			return
		}
		cur.EndMinute = end
		duration := cur.EndMinute - cur.Minute + 1
		if duration >= minDominantDuration {
			var sum float64
			for _, a := range advs {
				sum += a
			}
			avg := sum / float64(len(advs))
			cur.Magnitude = avg
			cur.Significance = min1(avg * float64(duration) / 20)
			out = append(out, *cur)
		}
		cur, advs = nil, nil
	}

	ordered := make([]Snapshot, len(snaps))
	copy(ordered, snaps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Minute < ordered[j].Minute })

	for _, s := range ordered {
		side, adv := s.Dominant()
		if adv <= dominantAdvantage {
			closeRun(s.Minute - 1)
			continue
		}
		if cur != nil && cur.Side != side {
			closeRun(s.Minute - 1)
		}
		if cur == nil {
			cur = &CriticalMoment{Type: MomentDominantPeriod, Minute: s.Minute, Side: side}
		}
		advs = append(advs, adv)
	}
	if len(ordered) > 0 {
		closeRun(ordered[len(ordered)-1].Minute)
	}
	return out
}

// volatilePhases flags five-snapshot windows whose summed standard deviation
// exceeds 0.2, merging windows that start within two minutes of the previous
// end, plus a five-minute span around every shift larger than 0.35.
func volatilePhases(snaps []Snapshot, shifts []MomentumShift) []CriticalMoment {
	var out []CriticalMoment
	if len(snaps) >= minVolatileSnapshots {
		var cur *CriticalMoment
		for i := 0; i+volatileWindow <= len(snaps); i++ {
			win := snaps[i : i+volatileWindow]
			_, sh := meanStd(globals(win, Home))
			_, sa := meanStd(globals(win, Away))
			vol := sh + sa
			if vol <= volatileThreshold {
				continue
			}
			w := CriticalMoment{
				Type:         MomentVolatilePhase,
				Minute:       win[0].Minute,
				EndMinute:    win[len(win)-1].Minute,
				Side:         Both,
				Magnitude:    vol,
				Significance: min1(vol * 2),
			}
			switch {
			case cur == nil:
				cur = &w
			case w.Minute <= cur.EndMinute+phaseMergeGap:
				cur.EndMinute = w.EndMinute
				if w.Magnitude > cur.Magnitude {
					cur.Magnitude = w.Magnitude
				}
				if w.Significance > cur.Significance {
					cur.Significance = w.Significance
				}
			default:
				out = append(out, *cur)
				cur = &w
			}
		}
		if cur != nil {
			out = append(out, *cur)
		}
	}
	for _, s := range shifts {
		if s.Magnitude <= majorTransitionMag {
			continue
		}
		start := s.Minute - 2
		if start < 0 {
			start = 0
		}
		out = append(out, CriticalMoment{
			Type:         MomentMajorTransition,
			Minute:       start,
			EndMinute:    s.Minute + 2,
			Side:         s.ToSide,
			Magnitude:    s.Magnitude,
			Significance: min1(s.Magnitude * 1.5),
		})
	}
	return out
}

// VolatilityIndex is min(1, 10 * mean absolute step change) across both sides.
func VolatilityIndex(snaps []Snapshot) float64 {
	return min1(meanAbsStep(snaps) * 10)
}

func meanAbsStep(snaps []Snapshot) float64 {
	if len(snaps) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(snaps); i++ {
		for _, side := range [...]Side{Home, Away} {
			d := snaps[i].Global.For(side) - snaps[i-1].Global.For(side)
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return sum / float64(2*(len(snaps)-1))
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
