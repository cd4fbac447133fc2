package momentum

import "fmt"

// Phase is a segment of the match clock with its own sensitivity to events
// and forecast volatility.
type Phase struct {
	Name        string  `json:"name"`
	Start       int     `json:"start_minute"`
	End         int     `json:"end_minute"`
	Sensitivity float64 `json:"sensitivity"`
	Volatility  float64 `json:"volatility"`
}

var phaseTable = []Phase{
	{Name: "kickoff", Start: 0, End: 15, Sensitivity: 1.2, Volatility: 1.3},
	{Name: "early_first_half", Start: 16, End: 30, Sensitivity: 1.1, Volatility: 1.1},
	{Name: "late_first_half", Start: 31, End: 45, Sensitivity: 1.3, Volatility: 1.0},
	{Name: "second_half_start", Start: 46, End: 60, Sensitivity: 1.2, Volatility: 1.1},
	{Name: "mid_second_half", Start: 61, End: 75, Sensitivity: 1.0, Volatility: 1.0},
	{Name: "late_game", Start: 76, End: 90, Sensitivity: 1.4, Volatility: 1.5},
	{Name: "injury_time", Start: 91, End: 100, Sensitivity: 1.5, Volatility: 1.7},
}

// PhaseFor maps a minute to its phase. Minutes past the table are injury time.
func PhaseFor(minute int) Phase {
	for _, p := range phaseTable {
		if minute >= p.Start && minute <= p.End {
			return p
		}
	}
	return phaseTable[len(phaseTable)-1]
}

// Tally is a per-side counter.
type Tally struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// For returns the count for side.
func (t Tally) For(side Side) int {
	if side == Away {
		return t.Away
	}
	return t.Home
}

func (t *Tally) inc(side Side) {
	if side == Away {
		t.Away++
		return
	}
	t.Home++
}

// InitConfig describes a match before kickoff. Factors are in [0,1].
type InitConfig struct {
	HomeTeam      string  `json:"home_team" yaml:"home_team"`
	AwayTeam      string  `json:"away_team" yaml:"away_team"`
	HomeStrength  float64 `json:"home_strength" yaml:"home_strength"`
	AwayStrength  float64 `json:"away_strength" yaml:"away_strength"`
	Importance    float64 `json:"importance" yaml:"importance"`
	CrowdFactor   float64 `json:"crowd_factor" yaml:"crowd_factor"`
	WeatherFactor float64 `json:"weather_factor" yaml:"weather_factor"`
}

// DefaultInitConfig returns evenly matched sides in an ordinary fixture.
func DefaultInitConfig() InitConfig {
	return InitConfig{
		HomeTeam:     "Home",
		AwayTeam:     "Away",
		HomeStrength: 0.5,
		AwayStrength: 0.5,
		Importance:   0.5,
		CrowdFactor:  0.5,
	}
}

// Validate checks every factor lies in [0,1].
func (c InitConfig) Validate() error {
	factors := []struct {
		name string
		v    float64
	}{
		{"home_strength", c.HomeStrength},
		{"away_strength", c.AwayStrength},
		{"importance", c.Importance},
		{"crowd_factor", c.CrowdFactor},
		{"weather_factor", c.WeatherFactor},
	}
	for _, f := range factors {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("%w: %s=%v not in [0,1]", ErrInvalidConfig, f.name, f.v)
		}
	}
	return nil
}

// MatchContext is the mutable match record. Static factors are fixed at
// initialization.
type MatchContext struct {
	HomeTeam      string  `json:"home_team"`
	AwayTeam      string  `json:"away_team"`
	Score         Tally   `json:"score"`
	RedCards      Tally   `json:"red_cards"`
	CurrentMinute int     `json:"current_minute"`
	CurrentPhase  string  `json:"current_phase"`
	HomeStrength  float64 `json:"home_strength"`
	AwayStrength  float64 `json:"away_strength"`
	Importance    float64 `json:"importance"`
	CrowdFactor   float64 `json:"crowd_factor"`
	WeatherFactor float64 `json:"weather_factor"`
}

func newMatchContext(cfg InitConfig) MatchContext {
	return MatchContext{
		HomeTeam:      cfg.HomeTeam,
		AwayTeam:      cfg.AwayTeam,
		CurrentPhase:  PhaseFor(0).Name,
		HomeStrength:  cfg.HomeStrength,
		AwayStrength:  cfg.AwayStrength,
		Importance:    cfg.Importance,
		CrowdFactor:   cfg.CrowdFactor,
		WeatherFactor: cfg.WeatherFactor,
	}
}

// Lead returns side's goal difference.
func (c MatchContext) Lead(side Side) int {
	return c.Score.For(side) - c.Score.For(side.Opponent())
}

// observe folds an event into the context. The clock never runs backwards,
// so a late out-of-order event leaves the minute unchanged.
func (c *MatchContext) observe(e Event) {
	if e.Minute > c.CurrentMinute {
		c.CurrentMinute = e.Minute
		c.CurrentPhase = PhaseFor(e.Minute).Name
	}
	switch e.Type {
	case EventGoal:
		c.Score.inc(e.Side)
	case EventRedCard:
		c.RedCards.inc(e.Side)
	}
}
