package replay

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/momentum/internal/domain/momentum"
)

// Summary condenses a Result to its headline figures.
type Summary struct {
	MatchID            string                   `json:"match_id"`
	Events             int                      `json:"events"`
	FinalScore         momentum.Tally           `json:"final_score"`
	FinalMomentum      momentum.SidePair        `json:"final_momentum"`
	DominantSide       momentum.Side            `json:"dominant_side"`
	DominancePct       float64                  `json:"dominance_percentage"`
	Shifts             int                      `json:"shifts"`
	MomentumGoals      int                      `json:"momentum_goals"`
	DominantPattern    *momentum.PatternSummary `json:"dominant_pattern,omitempty"`
	MostCritical       *momentum.CriticalMoment `json:"most_critical,omitempty"`
	ForecastConfidence float64                  `json:"forecast_confidence"`
	HomeTrend          momentum.Trend           `json:"home_trend"`
	AwayTrend          momentum.Trend           `json:"away_trend"`
}

// Summarize extracts the headline figures of r.
func (r *Result) Summarize() Summary {
	return Summary{
		MatchID:            r.MatchID,
		Events:             len(r.Steps),
		FinalScore:         r.Report.FinalScore,
		FinalMomentum:      r.Report.Final,
		DominantSide:       r.Report.DominantSide,
		DominancePct:       r.Report.DominancePercentage,
		Shifts:             r.Report.ShiftCount,
		MomentumGoals:      r.Report.Efficiency.MomentumGoals,
		DominantPattern:    r.Report.DominantPattern,
		MostCritical:       r.CriticalMoments.MostCritical,
		ForecastConfidence: r.Forecast.Confidence,
		HomeTrend:          r.Forecast.HomeTrend,
		AwayTrend:          r.Forecast.AwayTrend,
	}
}

// Output formats.
const (
	FormatJSON    = "json"
	FormatSummary = "summary"
)

// Write renders r to w in format.
func Write(w io.Writer, r *Result, format string) error {
	var v any
	switch format {
	case "", FormatJSON:
		v = r
	case FormatSummary:
		v = r.Summarize()
	default:
		return fmt.Errorf("%w: output %q", ErrInvalidOption, format)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s output: %w", format, err)
	}
	return nil
}
