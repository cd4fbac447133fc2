package momentum

import "sort"

const (
	maxReportPatterns = 5
	strongPeriodGroup = 5
	shiftSaturation   = 10
	regulationMinutes = 90
	highEfficiency    = 0.7
	mediumEfficiency  = 0.4
)

// PatternSummary aggregates detections of one pattern for one side.
type PatternSummary struct {
	Type          PatternType `json:"type"`
	Side          Side        `json:"side"`
	Count         int         `json:"count"`
	AvgConfidence float64     `json:"avg_confidence"`
}

// Efficiency relates momentum goals to the time spent in strong momentum.
type Efficiency struct {
	Value         float64 `json:"value"`
	Category      string  `json:"category"`
	MomentumGoals int     `json:"momentum_goals"`
	StrongPeriods int     `json:"strong_periods"`
	Raw           float64 `json:"raw"`
}

// DimensionSummary is the match-long average of one dimension.
type DimensionSummary struct {
	Dimension string  `json:"dimension"`
	Home      float64 `json:"home"`
	Away      float64 `json:"away"`
	Dominant  Side    `json:"dominant"`
	Margin    float64 `json:"margin"`
	Rank      int     `json:"rank"`
}

// Report summarises a whole match. An empty history yields a report with
// InsufficientData set and every statistic at its zero value.
type Report struct {
	InsufficientData    bool               `json:"insufficient_data"`
	Snapshots           int                `json:"snapshots"`
	Final               SidePair           `json:"final"`
	FinalScore          Tally              `json:"final_score"`
	Average             SidePair           `json:"average"`
	Volatility          float64            `json:"volatility"`
	VolatilityIndex     float64            `json:"volatility_index"`
	DominantSide        Side               `json:"dominant_side"`
	DominancePercentage float64            `json:"dominance_percentage"`
	DominanceSnapshots  Tally              `json:"dominance_snapshots"`
	DominanceTime       SidePair           `json:"dominance_time_percentage"`
	StrongMomentum      Tally              `json:"strong_momentum"`
	ShiftCount          int                `json:"shift_count"`
	ShiftsByType        map[ShiftType]int  `json:"shifts_by_type"`
	DominantPattern     *PatternSummary    `json:"dominant_pattern,omitempty"`
	Patterns            []PatternSummary   `json:"patterns"`
	Efficiency          Efficiency         `json:"efficiency"`
	ComebackPotential   float64            `json:"comeback_potential"`
	Dimensions          []DimensionSummary `json:"dimensions"`
}

// Summarize aggregates the snapshot, shift and pattern logs. It never fails.
func Summarize(reg *Registry, snaps []Snapshot, shifts []MomentumShift, patterns []DetectedPattern, goals []MomentumGoal) Report {
	r := Report{
		Snapshots:    len(snaps),
		ShiftCount:   len(shifts),
		ShiftsByType: map[ShiftType]int{ShiftSwitch: 0, ShiftAmplification: 0},
		Patterns:     summarizePatterns(patterns),
		Dimensions:   []DimensionSummary{},
	}
	for _, s := range shifts {
		r.ShiftsByType[s.Type]++
	}
	if len(r.Patterns) > 0 {
		top := r.Patterns[0]
		r.DominantPattern = &top
	}
	if len(snaps) == 0 {
		r.InsufficientData = true
		r.DominantSide = NoSide
		return r
	}

	last := snaps[len(snaps)-1]
	r.Final = last.Global
	r.FinalScore = last.Context.Score

	strongSnapshots := 0
	for _, s := range snaps {
		r.Average.Home += s.Global.Home
		r.Average.Away += s.Global.Away
		if s.Global.Home > strongMomentum {
			r.StrongMomentum.Home++
		}
		if s.Global.Away > strongMomentum {
			r.StrongMomentum.Away++
		}
		if s.Global.Home > strongMomentum || s.Global.Away > strongMomentum {
			strongSnapshots++
		}
		switch d, _ := s.Dominant(); d {
		case Home:
			r.DominanceSnapshots.Home++
		case Away:
			r.DominanceSnapshots.Away++
		}
	}
	n := float64(len(snaps))
	r.Average.Home /= n
	r.Average.Away /= n
	r.DominanceTime = SidePair{
		Home: float64(r.DominanceSnapshots.Home) / n * 100,
		Away: float64(r.DominanceSnapshots.Away) / n * 100,
	}

	r.DominantSide, _ = dominance(r.Average.Home, r.Average.Away)
	top := r.Average.Home
	if r.Average.Away > top {
		top = r.Average.Away
	}
	r.DominancePercentage = 50
	if total := r.Average.Home + r.Average.Away; total > 0 {
		r.DominancePercentage = top / total * 100
	}

	r.Volatility = meanAbsStep(snaps)
	r.VolatilityIndex = VolatilityIndex(snaps)
	r.Efficiency = efficiency(len(goals), strongSnapshots, len(shifts))
	r.ComebackPotential = ComebackPotential(last.Context, last.Global)
	r.Dimensions = summarizeDimensions(reg, snaps)
	return r
}

func summarizePatterns(patterns []DetectedPattern) []PatternSummary {
	type key struct {
		t PatternType
		s Side
	}
	idx := make(map[key]int)
	sums := []float64{}
	out := []PatternSummary{}
	for _, p := range patterns {
		k := key{p.Type, p.Side}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, PatternSummary{Type: p.Type, Side: p.Side})
			sums = append(sums, 0)
		}
		out[i].Count++
		sums[i] += p.Confidence
	}
	for i := range out {
		out[i].AvgConfidence = sums[i] / float64(out[i].Count)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].AvgConfidence > out[j].AvgConfidence
	})
	if len(out) > maxReportPatterns {
		out = out[:maxReportPatterns]
	}
	return out
}

// efficiency counts strong-momentum snapshots in groups of five and discounts
// matches with many shifts.
func efficiency(momentumGoals, strongSnapshots, shifts int) Efficiency {
	periods := strongSnapshots / strongPeriodGroup
	denom := periods
	if denom < 1 {
		denom = 1
	}
	raw := float64(momentumGoals) / float64(denom)
	shiftFactor := min1(float64(shifts) / shiftSaturation)
	value := min1(raw * (1 - shiftFactor*0.5) * 2)

	e := Efficiency{
		Value:         value,
		Category:      "low",
		MomentumGoals: momentumGoals,
		StrongPeriods: periods,
		Raw:           raw,
	}
	switch {
	case value > highEfficiency:
		e.Category = "high"
	case value > mediumEfficiency:
		e.Category = "medium"
	}
	return e
}

// ComebackPotential estimates the trailing side's chance to recover from its
// momentum, the regulation time left and the goal gap. A level score is 0.
func ComebackPotential(ctx MatchContext, global SidePair) float64 {
	diff := ctx.Score.Home - ctx.Score.Away
	if diff == 0 {
		return 0
	}
	trailing := Home
	if diff < 0 {
		trailing = Away
	}
	remaining := regulationMinutes - ctx.CurrentMinute
	if remaining < 0 {
		remaining = 0
	}
	timeFactor := float64(remaining) / regulationMinutes
	return clamp01(global.For(trailing) * timeFactor / (float64(abs(diff))*0.5 + 0.5))
}

func summarizeDimensions(reg *Registry, snaps []Snapshot) []DimensionSummary {
	out := make([]DimensionSummary, 0, reg.Len())
	n := float64(len(snaps))
	for _, d := range reg.dims {
		ds := DimensionSummary{Dimension: d.Name}
		for _, s := range snaps {
			ds.Home += s.Dimensions[Home][d.Name]
			ds.Away += s.Dimensions[Away][d.Name]
		}
		ds.Home /= n
		ds.Away /= n
		ds.Dominant, ds.Margin = dominance(ds.Home, ds.Away)
		out = append(out, ds)
	}
	ranked := make([]int, len(out))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool { return out[ranked[i]].Margin > out[ranked[j]].Margin })
	for rank, i := range ranked {
		out[i].Rank = rank + 1
	}
	return out
}
