package momentum

import (
	"fmt"
	"math"
	"sort"
)

const (
	trendHistory       = 15
	minTrendPoints     = 3
	trendFlatBand      = 0.01
	noisePerStep       = 0.02
	peakThreshold      = 0.65
	troughThreshold    = 0.35
	crossoverWeight    = 0.1
	maxChangeWeight    = 0.7
	highShiftPotential = 0.4
	midShiftPotential  = 0.2
)

// Trend directions.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Trend is the least-squares slope of one side's global momentum per snapshot.
type Trend struct {
	Direction string  `json:"direction"`
	Rate      float64 `json:"rate"`
}

// ForecastPoint is one projected step.
type ForecastPoint struct {
	Step   int     `json:"step"`
	Minute int     `json:"minute"`
	Home   float64 `json:"home"`
	Away   float64 `json:"away"`
}

// CriticalPointType classifies a notable projected point.
type CriticalPointType string

const (
	CriticalDominanceSwitch CriticalPointType = "dominance_switch"
	CriticalPeak            CriticalPointType = "peak"
	CriticalTrough          CriticalPointType = "trough"
)

// CriticalPoint is a crossover or extreme in a projection.
type CriticalPoint struct {
	Type   CriticalPointType `json:"type"`
	Step   int               `json:"step"`
	Minute int               `json:"minute"`
	Side   Side              `json:"side"`
	From   Side              `json:"from,omitempty"`
	Value  float64           `json:"value"`
}

// ShiftPotential grades how much a projection departs from the present.
type ShiftPotential struct {
	Value              float64 `json:"value"`
	Category           string  `json:"category"`
	MaxHomeChange      float64 `json:"max_home_change"`
	MaxAwayChange      float64 `json:"max_away_change"`
	ExpectedCrossovers int     `json:"expected_crossovers"`
}

// Forecast is a projection of both sides' global momentum.
type Forecast struct {
	Horizon        int             `json:"horizon"`
	Minute         int             `json:"minute"`
	Current        SidePair        `json:"current"`
	HomeTrend      Trend           `json:"home_trend"`
	AwayTrend      Trend           `json:"away_trend"`
	Points         []ForecastPoint `json:"points"`
	CriticalPoints []CriticalPoint `json:"critical_points"`
	ShiftPotential ShiftPotential  `json:"shift_potential"`
	Confidence     float64         `json:"confidence"`
	LowConfidence  bool            `json:"low_confidence"`
	Warnings       []Warning       `json:"warnings,omitempty"`
}

// ForecastConfidence is max(0.2, min(0.9, 0.8 - 0.02*horizon)).
func ForecastConfidence(horizon int) float64 {
	return math.Max(0.2, math.Min(0.9, 0.8-0.02*float64(horizon)))
}

// Project extends current forward horizon steps from minute using the trend
// of the last snapshots in history. With fewer than three snapshots the
// projection is flat and flagged low-confidence.
func Project(history []Snapshot, current SidePair, minute, horizon int, rnd RandomSource) (Forecast, error) {
	if horizon < 0 {
		return Forecast{}, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}
	if rnd == nil {
		rnd = NullSource{}
	}
	if len(history) > trendHistory {
		history = history[len(history)-trendHistory:]
	}

	f := Forecast{
		Horizon:        horizon,
		Minute:         minute,
		Current:        current,
		HomeTrend:      Trend{Direction: TrendStable},
		AwayTrend:      Trend{Direction: TrendStable},
		Points:         make([]ForecastPoint, 0, horizon),
		CriticalPoints: []CriticalPoint{},
		Confidence:     ForecastConfidence(horizon),
	}
	if len(history) < minTrendPoints {
		f.LowConfidence = true
		f.Warnings = append(f.Warnings, *insufficientHistory("forecast", len(history), minTrendPoints))
	} else {
		f.HomeTrend = trendOf(globals(history, Home))
		f.AwayTrend = trendOf(globals(history, Away))
	}

	for i := 1; i <= horizon; i++ {
		m := minute + i
		vol := PhaseFor(m).Volatility
		scale := noisePerStep * float64(i)
		p := ForecastPoint{Step: i, Minute: m}
		if f.LowConfidence {
			p.Home, p.Away = current.Home, current.Away
		} else {
			p.Home = clamp01(current.Home + f.HomeTrend.Rate*float64(i)*vol + rnd.Jitter(scale))
			p.Away = clamp01(current.Away + f.AwayTrend.Rate*float64(i)*vol + rnd.Jitter(scale))
		}
		f.Points = append(f.Points, p)
	}

	series := make([]ForecastPoint, 0, horizon+1)
	series = append(series, ForecastPoint{Minute: minute, Home: current.Home, Away: current.Away})
	series = append(series, f.Points...)
	f.CriticalPoints = criticalPoints(series)
	f.ShiftPotential = shiftPotential(series)
	return f, nil
}

func trendOf(ys []float64) Trend {
	rate := olsSlope(ys)
	t := Trend{Direction: TrendStable, Rate: rate}
	switch {
	case rate > trendFlatBand:
		t.Direction = TrendRising
	case rate < -trendFlatBand:
		t.Direction = TrendFalling
	}
	return t
}

// olsSlope fits y against its index.
func olsSlope(ys []float64) float64 {
	n := float64(len(ys))
	if n < 2 {
		return 0
	}
	meanX := (n - 1) / 2
	var meanY float64
	for _, y := range ys {
		meanY += y
	}
	meanY /= n
	var num, den float64
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// criticalPoints scans a series whose first element is the present state.
func criticalPoints(series []ForecastPoint) []CriticalPoint {
	out := []CriticalPoint{}
	// a level point keeps the previous leader
	prev := NoSide
	for i, p := range series {
		curr, lead := dominance(p.Home, p.Away)
		if curr == NoSide {
			continue
		}
		if i > 0 && prev != NoSide && prev != curr {
			out = append(out, CriticalPoint{
				Type:   CriticalDominanceSwitch,
				Step:   p.Step,
				Minute: p.Minute,
				Side:   curr,
				From:   prev,
				Value:  lead,
			})
		}
		prev = curr
	}
	for _, side := range [...]Side{Home, Away} {
		for i := 1; i < len(series)-1; i++ {
			v := pointFor(series[i], side)
			before, after := pointFor(series[i-1], side), pointFor(series[i+1], side)
			switch {
			case v > before && v > after && v > peakThreshold:
				out = append(out, CriticalPoint{Type: CriticalPeak, Step: series[i].Step, Minute: series[i].Minute, Side: side, Value: v})
			case v < before && v < after && v < troughThreshold:
				out = append(out, CriticalPoint{Type: CriticalTrough, Step: series[i].Step, Minute: series[i].Minute, Side: side, Value: v})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}

func pointFor(p ForecastPoint, side Side) float64 {
	if side == Away {
		return p.Away
	}
	return p.Home
}

func shiftPotential(series []ForecastPoint) ShiftPotential {
	sp := ShiftPotential{Category: "low"}
	if len(series) == 0 {
		return sp
	}
	base := series[0]
	last, _ := dominance(base.Home, base.Away)
	for _, p := range series[1:] {
		sp.MaxHomeChange = math.Max(sp.MaxHomeChange, math.Abs(p.Home-base.Home))
		sp.MaxAwayChange = math.Max(sp.MaxAwayChange, math.Abs(p.Away-base.Away))
		d, _ := dominance(p.Home, p.Away)
		if d == NoSide {
			continue
		}
		if last != NoSide && d != last {
			sp.ExpectedCrossovers++
		}
		last = d
	}
	sp.Value = math.Max(sp.MaxHomeChange, sp.MaxAwayChange)*maxChangeWeight + float64(sp.ExpectedCrossovers)*crossoverWeight
	switch {
	case sp.Value > highShiftPotential:
		sp.Category = "high"
	case sp.Value > midShiftPotential:
		sp.Category = "medium"
	}
	return sp
}
