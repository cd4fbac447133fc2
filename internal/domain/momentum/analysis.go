package momentum

import (
	"math"
	"sort"
)

const (
	strongDimension      = 0.65
	strengthThreshold    = 0.7
	weaknessThreshold    = 0.4
	advantageThreshold   = 0.2
	activePatternRange   = 5
	maxActivePatterns    = 3
	maxDominantDimension = 3
	impactBaseWeight     = 0.7
)

// DimensionScore is one dimension's value for a side.
type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`
	Strong    bool    `json:"strong"`
}

// DimensionAdvantage is a gap above 0.2 between the sides in one dimension.
type DimensionAdvantage struct {
	Dimension string  `json:"dimension"`
	Side      Side    `json:"side"`
	Advantage float64 `json:"advantage"`
}

// DimensionalAnalysis lists per-side strengths and weaknesses and the
// dimensions where one side clearly leads.
type DimensionalAnalysis struct {
	Strengths  map[Side][]DimensionScore `json:"strengths"`
	Weaknesses map[Side][]DimensionScore `json:"weaknesses"`
	Advantages []DimensionAdvantage      `json:"advantages"`
}

// Analysis is a read-only view of the match at one snapshot.
type Analysis struct {
	Sequence               int                         `json:"sequence"`
	Minute                 int                         `json:"minute"`
	Phase                  string                      `json:"phase"`
	Score                  Tally                       `json:"score"`
	Momentum               SidePair                    `json:"momentum"`
	DominantSide           Side                        `json:"dominant_side"`
	Advantage              float64                     `json:"advantage"`
	Dimensions             map[Side]map[string]float64 `json:"dimensions"`
	DominantDimensions     map[Side][]DimensionScore   `json:"dominant_dimensions"`
	HomeTrend              Trend                       `json:"home_trend"`
	AwayTrend              Trend                       `json:"away_trend"`
	ActivePatterns         []DetectedPattern           `json:"active_patterns"`
	MatchImpactProbability float64                     `json:"match_impact_probability"`
	ImpactLevel            string                      `json:"impact_level"`
	DimensionalAnalysis    DimensionalAnalysis         `json:"dimensional_analysis"`
}

// analyze builds the view of snap. upto holds the snapshots recorded up to
// and including snap; patterns is the full detection log.
func analyze(reg *Registry, snap Snapshot, upto []Snapshot, patterns []DetectedPattern) Analysis {
	side, adv := snap.Dominant()
	a := Analysis{
		Sequence:           snap.Sequence,
		Minute:             snap.Minute,
		Phase:              PhaseFor(snap.Minute).Name,
		Score:              snap.Context.Score,
		Momentum:           snap.Global,
		DominantSide:       side,
		Advantage:          adv,
		Dimensions:         snap.Dimensions,
		DominantDimensions: make(map[Side][]DimensionScore, 2),
		HomeTrend:          Trend{Direction: TrendStable},
		AwayTrend:          Trend{Direction: TrendStable},
		ActivePatterns:     activePatterns(patterns, snap.Minute),
	}
	for _, s := range [...]Side{Home, Away} {
		a.DominantDimensions[s] = dominantDimensions(reg, snap.Dimensions[s])
	}
	if len(upto) > trendHistory {
		upto = upto[len(upto)-trendHistory:]
	}
	if len(upto) >= minTrendPoints {
		a.HomeTrend = trendOf(globals(upto, Home))
		a.AwayTrend = trendOf(globals(upto, Away))
	}
	a.MatchImpactProbability = matchImpactProbability(snap)
	a.ImpactLevel = impactLevel(a.MatchImpactProbability, adv)
	a.DimensionalAnalysis = dimensionalAnalysis(reg, snap.Dimensions)
	return a
}

func sortedScores(reg *Registry, vals map[string]float64) []DimensionScore {
	out := make([]DimensionScore, 0, reg.Len())
	for _, d := range reg.dims {
		v := vals[d.Name]
		out = append(out, DimensionScore{Dimension: d.Name, Value: v, Strong: v > strongDimension})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

func dominantDimensions(reg *Registry, vals map[string]float64) []DimensionScore {
	out := sortedScores(reg, vals)
	if len(out) > maxDominantDimension {
		out = out[:maxDominantDimension]
	}
	return out
}

func dimensionalAnalysis(reg *Registry, dims map[Side]map[string]float64) DimensionalAnalysis {
	da := DimensionalAnalysis{
		Strengths:  map[Side][]DimensionScore{Home: {}, Away: {}},
		Weaknesses: map[Side][]DimensionScore{Home: {}, Away: {}},
		Advantages: []DimensionAdvantage{},
	}
	for _, s := range [...]Side{Home, Away} {
		for _, d := range reg.dims {
			v := dims[s][d.Name]
			score := DimensionScore{Dimension: d.Name, Value: v, Strong: v > strongDimension}
			switch {
			case v > strengthThreshold:
				da.Strengths[s] = append(da.Strengths[s], score)
			case v < weaknessThreshold:
				da.Weaknesses[s] = append(da.Weaknesses[s], score)
			}
		}
	}
	for _, d := range reg.dims {
		side, gap := dominance(dims[Home][d.Name], dims[Away][d.Name])
		if gap > advantageThreshold {
			da.Advantages = append(da.Advantages, DimensionAdvantage{Dimension: d.Name, Side: side, Advantage: gap})
		}
	}
	sort.SliceStable(da.Advantages, func(i, j int) bool {
		return da.Advantages[i].Advantage > da.Advantages[j].Advantage
	})
	return da
}

func activePatterns(log []DetectedPattern, minute int) []DetectedPattern {
	out := []DetectedPattern{}
	for _, p := range log {
		if abs(p.Minute-minute) <= activePatternRange {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > maxActivePatterns {
		out = out[:maxActivePatterns]
	}
	return out
}

// matchImpactProbability weighs the momentum gap by phase sensitivity and
// damps it when the score is already more than a goal apart.
func matchImpactProbability(snap Snapshot) float64 {
	gap := math.Abs(snap.Global.Home - snap.Global.Away)
	scoreFactor := 1.0
	if diff := abs(snap.Context.Score.Home - snap.Context.Score.Away); diff > 1 {
		scoreFactor = 1 / float64(diff)
	}
	return clamp01(gap * impactBaseWeight * PhaseFor(snap.Minute).Sensitivity * scoreFactor)
}

// Impact levels.
const (
	ImpactLimited     = "limited"
	ImpactSituational = "situational"
	ImpactFavourable  = "favourable"
	ImpactSignificant = "significant"
	ImpactDecisive    = "decisive"
)

func impactLevel(p, advantage float64) string {
	switch {
	case p < 0.3:
		return ImpactLimited
	case p < 0.5:
		return ImpactSituational
	case p < 0.7:
		return ImpactFavourable
	case advantage > 0.4:
		return ImpactDecisive
	default:
		return ImpactSignificant
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
