package momentum

import "math"

// PatternType names a recognisable shape in the recent snapshot window.
type PatternType string

const (
	PatternCrescendo         PatternType = "crescendo"
	PatternSuddenShift       PatternType = "sudden_shift"
	PatternOscillation       PatternType = "oscillation"
	PatternPlateau           PatternType = "plateau"
	PatternSnowball          PatternType = "snowball"
	PatternResilientResponse PatternType = "resilient_response"
)

// patternDetectionHistory is how many recent snapshots the engine scans.
const patternDetectionHistory = 15

// PatternTemplate parameterises one detector. A detection is reported only
// when its confidence is strictly above Threshold.
type PatternTemplate struct {
	Type      PatternType `json:"type"`
	Window    int         `json:"window"`
	Threshold float64     `json:"threshold"`
}

// DefaultPatternTemplates returns the six templates in priority order.
func DefaultPatternTemplates() []PatternTemplate {
	return []PatternTemplate{
		{Type: PatternCrescendo, Window: 10, Threshold: 0.70},
		{Type: PatternSuddenShift, Window: 5, Threshold: 0.80},
		{Type: PatternOscillation, Window: 15, Threshold: 0.75},
		{Type: PatternPlateau, Window: 8, Threshold: 0.65},
		{Type: PatternSnowball, Window: 12, Threshold: 0.75},
		{Type: PatternResilientResponse, Window: 7, Threshold: 0.80},
	}
}

// DetectedPattern is a pattern found over [WindowStart, WindowEnd] minutes.
type DetectedPattern struct {
	Type        PatternType `json:"type"`
	Side        Side        `json:"side"`
	Confidence  float64     `json:"confidence"`
	WindowStart int         `json:"window_start"`
	WindowEnd   int         `json:"window_end"`

	// Minute is the match minute at which the detection was made.
	Minute int `json:"minute"`
}

// DetectPattern evaluates every template against the tail of snaps and
// returns the most confident match, or nil. Templates whose window exceeds
// the available snapshots are skipped. Ties go to the earlier template.
func DetectPattern(snaps []Snapshot, templates []PatternTemplate) *DetectedPattern {
	var best *DetectedPattern
	for _, t := range templates {
		p := detectOne(snaps, t)
		if p == nil || p.Confidence <= t.Threshold {
			continue
		}
		if best == nil || p.Confidence > best.Confidence {
			best = p
		}
	}
	if best != nil && len(snaps) > 0 {
		best.Minute = snaps[len(snaps)-1].Minute
	}
	return best
}

func detectOne(snaps []Snapshot, t PatternTemplate) *DetectedPattern {
	if t.Window < 2 || len(snaps) < t.Window {
		return nil
	}
	win := snaps[len(snaps)-t.Window:]
	switch t.Type {
	case PatternCrescendo:
		return detectCrescendo(win, t)
	case PatternSuddenShift:
		return detectSuddenShift(win, t)
	case PatternOscillation:
		return detectOscillation(win, t)
	case PatternPlateau:
		return detectPlateau(win, t)
	case PatternSnowball:
		return detectSnowball(win, t)
	case PatternResilientResponse:
		// needs a prior window for the opponent's peak plus the response
		if len(snaps) < t.Window+1 {
			return nil
		}
		n := 2 * t.Window
		if n > len(snaps) {
			n = len(snaps)
		}
		return detectResilientResponse(snaps[len(snaps)-n:], t)
	}
	return nil
}

func found(t PatternTemplate, side Side, conf float64, from, to Snapshot) *DetectedPattern {
	if conf <= t.Threshold {
		return nil
	}
	return &DetectedPattern{
		Type:        t.Type,
		Side:        side,
		Confidence:  conf,
		WindowStart: from.Minute,
		WindowEnd:   to.Minute,
	}
}

func detectCrescendo(win []Snapshot, t PatternTemplate) *DetectedPattern {
	for _, side := range [...]Side{Home, Away} {
		vals := globals(win, side)
		rise := vals[len(vals)-1] - vals[0]
		if rise <= 0.2 || !nonDecreasing(vals) {
			continue
		}
		if p := found(t, side, math.Min(1, rise*2), win[0], win[len(win)-1]); p != nil {
			return p
		}
	}
	return nil
}

func detectSuddenShift(win []Snapshot, t PatternTemplate) *DetectedPattern {
	for i := 1; i < len(win); i++ {
		for _, side := range [...]Side{Home, Away} {
			step := win[i].Global.For(side) - win[i-1].Global.For(side)
			if step <= 0.2 {
				continue
			}
			if p := found(t, side, math.Min(1, step*2.5), win[i-1], win[i]); p != nil {
				return p
			}
		}
	}
	return nil
}

// Tied snapshots carry no dominant side and neither start nor break a run.
func detectOscillation(win []Snapshot, t PatternTemplate) *DetectedPattern {
	switches := 0
	last := NoSide
	for _, s := range win {
		d, _ := s.Dominant()
		if d == NoSide {
			continue
		}
		if last != NoSide && d != last {
			switches++
		}
		last = d
	}
	if switches < 3 {
		return nil
	}
	return found(t, Both, math.Min(1, float64(switches)/5), win[0], win[len(win)-1])
}

func detectPlateau(win []Snapshot, t PatternTemplate) *DetectedPattern {
	for _, side := range [...]Side{Home, Away} {
		vals := globals(win, side)
		mean, std := meanStd(vals)
		if mean <= 0.6 || std >= 0.05 {
			continue
		}
		if p := found(t, side, math.Min(1, (1-std*10)*mean), win[0], win[len(win)-1]); p != nil {
			return p
		}
	}
	return nil
}

func detectSnowball(win []Snapshot, t PatternTemplate) *DetectedPattern {
	for _, side := range [...]Side{Home, Away} {
		vals := globals(win, side)
		accel := 0.0
		for i := 2; i < len(vals); i++ {
			accel += (vals[i] - vals[i-1]) - (vals[i-1] - vals[i-2])
		}
		last := vals[len(vals)-1]
		if accel <= 0 || last <= 0.6 {
			continue
		}
		if p := found(t, side, math.Min(1, last*(1+accel*5)), win[0], win[len(win)-1]); p != nil {
			return p
		}
	}
	return nil
}

func detectResilientResponse(win []Snapshot, t PatternTemplate) *DetectedPattern {
	w := t.Window
	for _, side := range [...]Side{Home, Away} {
		opp := side.Opponent()
		for i := w; i < len(win); i++ {
			peak := 0.0
			for j := i - w; j < i; j++ {
				peak = math.Max(peak, win[j].Global.For(opp))
			}
			if peak <= 0.6 {
				continue
			}
			rise := win[i].Global.For(side) - win[i-w].Global.For(side)
			if rise <= 0.2 {
				continue
			}
			if p := found(t, side, math.Min(1, rise*2), win[i-w], win[i]); p != nil {
				return p
			}
		}
	}
	return nil
}

func nonDecreasing(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			return false
		}
	}
	return true
}

// meanStd returns the mean and population standard deviation.
func meanStd(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(vals)))
}
