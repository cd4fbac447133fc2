// Package momentum implements a multi-dimensional momentum engine for a
// two-sided match: event impact, decay, transfer, pattern and shift
// detection, trend forecasting and match-level reports.
//
// An Engine serves one match and is not safe for concurrent use. Run one
// engine per match; engines share nothing.
package momentum

import "fmt"

const (
	homeAdvantageScale = 0.1
	initialJitter      = 0.05
)

// home advantage multipliers per dimension; others use 1.
var homeAdvantageBoost = map[string]float64{
	Psychological: 1.5,
	Environmental: 2.0,
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default dimensions.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.reg = r
		}
	}
}

// WithRandomSource injects the source of every stochastic input.
func WithRandomSource(r RandomSource) Option {
	return func(e *Engine) {
		if r != nil {
			e.rnd = r
		}
	}
}

// WithPatternTemplates replaces the pattern templates. Order is priority.
func WithPatternTemplates(t []PatternTemplate) Option {
	return func(e *Engine) {
		if len(t) > 0 {
			e.templates = append([]PatternTemplate(nil), t...)
		}
	}
}

// Engine tracks one match.
type Engine struct {
	reg       *Registry
	templates []PatternTemplate
	rnd       RandomSource

	initialized bool
	ctx         MatchContext
	state       *State
	baseline    Snapshot
	history     History
	events      []Event
	patterns    []DetectedPattern
	shifts      []MomentumShift
	goals       []MomentumGoal
}

// New creates an engine. It must be initialized before use.
func New(opts ...Option) *Engine {
	e := &Engine{
		reg:       DefaultRegistry(),
		templates: DefaultPatternTemplates(),
		rnd:       NullSource{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitResult is the state at kickoff.
type InitResult struct {
	Context    MatchContext                `json:"context"`
	Momentum   SidePair                    `json:"momentum"`
	Dimensions map[Side]map[string]float64 `json:"dimensions"`
}

// Initialize discards any previous match and seeds each dimension from
// the side's strength, home advantage and a small jitter.
func (e *Engine) Initialize(cfg InitConfig) (InitResult, error) {
	if err := cfg.Validate(); err != nil {
		return InitResult{}, err
	}

	st := NewState(e.reg)
	advantage := homeAdvantageScale * cfg.CrowdFactor
	for i, d := range e.reg.dims {
		boost, ok := homeAdvantageBoost[d.Name]
		if !ok {
			boost = 1
		}
		st.Set(Home, i, cfg.HomeStrength+advantage*boost+e.rnd.Jitter(initialJitter))
		st.Set(Away, i, cfg.AwayStrength+e.rnd.Jitter(initialJitter))
	}

	e.ctx = newMatchContext(cfg)
	e.state = st
	e.history = History{}
	e.events = nil
	e.patterns = nil
	e.shifts = nil
	e.goals = nil
	e.baseline = takeSnapshot(0, 0, st, e.ctx, Trigger{})
	e.initialized = true

	return InitResult{
		Context:    e.ctx,
		Momentum:   e.baseline.Global,
		Dimensions: e.baseline.Dimensions,
	}, nil
}

// Initialized reports whether a match is in progress.
func (e *Engine) Initialized() bool { return e.initialized }

// Registry returns the engine's dimensions.
func (e *Engine) Registry() *Registry { return e.reg }

// ProcessResult describes the effect of one event.
type ProcessResult struct {
	Sequence     int                         `json:"sequence"`
	Minute       int                         `json:"minute"`
	Impact       Impact                      `json:"impact"`
	Momentum     SidePair                    `json:"momentum"`
	Dimensions   map[Side]map[string]float64 `json:"dimensions"`
	DominantSide Side                        `json:"dominant_side"`
	Advantage    float64                     `json:"advantage"`
	Pattern      *DetectedPattern            `json:"pattern,omitempty"`
	Shift        *MomentumShift              `json:"shift,omitempty"`
	MomentumGoal *MomentumGoal               `json:"momentum_goal,omitempty"`
	Warnings     []Warning                   `json:"warnings,omitempty"`
}

// ProcessEvent applies one event: impact, decay, transfer, snapshot,
// pattern detection, shift detection. The impact sees the score as it stood
// before the event. Events are expected in minute order; a late event is
// applied but does not rewind the match clock.
func (e *Engine) ProcessEvent(ev Event) (ProcessResult, error) {
	if !e.initialized {
		return ProcessResult{}, ErrNotInitialized
	}
	if err := ev.validate(); err != nil {
		return ProcessResult{}, err
	}
	if ev.RawType == "" {
		ev.RawType = ev.Type.String()
	}

	impact, warn := CalculateImpact(e.reg, ev, e.ctx)
	e.ctx.observe(ev)
	e.events = append(e.events, ev)

	impact.apply(e.state)
	Decay(e.state)
	Transfer(e.state)

	prev, ok := e.history.Last()
	if !ok {
		prev = e.baseline
	}
	snap := takeSnapshot(e.history.Len()+1, ev.Minute, e.state, e.ctx, Trigger{Type: ev.Type, Side: ev.Side})
	e.history.append(snap)

	res := ProcessResult{
		Sequence:   snap.Sequence,
		Minute:     snap.Minute,
		Impact:     impact,
		Momentum:   snap.Global,
		Dimensions: snap.Dimensions,
	}
	res.DominantSide, res.Advantage = snap.Dominant()
	if warn != nil {
		res.Warnings = append(res.Warnings, *warn)
	}

	if p := DetectPattern(e.history.Window(patternDetectionHistory), e.templates); p != nil {
		e.patterns = append(e.patterns, *p)
		res.Pattern = p
	}
	if s := DetectShift(prev, snap, ev.Type); s != nil {
		e.shifts = append(e.shifts, *s)
		res.Shift = s
	}
	if ev.Type == EventGoal {
		if m := snap.Global.For(ev.Side); m > strongMomentum {
			g := MomentumGoal{Minute: ev.Minute, Side: ev.Side, Momentum: m}
			e.goals = append(e.goals, g)
			res.MomentumGoal = &g
		}
	}
	return res, nil
}

// AnalyzeState describes the match at minute, or now when minute is nil.
func (e *Engine) AnalyzeState(minute *int) (Analysis, error) {
	if !e.initialized {
		return Analysis{}, ErrNotInitialized
	}
	all := e.history.All()
	if minute == nil {
		snap, ok := e.history.Last()
		if !ok {
			snap = e.baseline
		}
		return analyze(e.reg, snap, all, e.patterns), nil
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Minute == *minute {
			return analyze(e.reg, all[i], all[:i+1], e.patterns), nil
		}
	}
	return Analysis{}, fmt.Errorf("%w: %d", ErrMinuteNotRecorded, *minute)
}

// Forecast projects global momentum horizon steps past the current minute.
// When the random source is a Forker, noise comes from a child stream keyed
// by the history length and the engine's own source is left untouched.
func (e *Engine) Forecast(horizon int) (Forecast, error) {
	if !e.initialized {
		return Forecast{}, ErrNotInitialized
	}
	rnd := e.rnd
	if f, ok := rnd.(Forker); ok {
		rnd = f.Fork(int64(e.history.Len()))
	}
	current := SidePair{Home: e.state.Global(Home), Away: e.state.Global(Away)}
	return Project(e.history.All(), current, e.ctx.CurrentMinute, horizon, rnd)
}

// Triggers ranks the event types that drove rises for side, or for each
// side when side is Both.
func (e *Engine) Triggers(side Side) (TriggerReport, error) {
	if !e.initialized {
		return TriggerReport{}, ErrNotInitialized
	}
	var sides []Side
	switch side {
	case Home, Away:
		sides = []Side{side}
	case Both:
		sides = []Side{Home, Away}
	default:
		return TriggerReport{}, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	rep := TriggerReport{Side: side, Triggers: make(map[Side][]TriggerStat, len(sides))}
	if len(e.events) < minTriggerEvents {
		rep.Warnings = append(rep.Warnings, *insufficientHistory("triggers", len(e.events), minTriggerEvents))
		for _, s := range sides {
			rep.Triggers[s] = []TriggerStat{}
		}
		return rep, nil
	}
	all := append([]Snapshot{e.baseline}, e.history.All()...)
	for _, s := range sides {
		rep.Triggers[s] = RankTriggers(all, s)
	}
	return rep, nil
}

// CriticalMoments lists the turning points of the match so far.
func (e *Engine) CriticalMoments() (CriticalMoments, error) {
	if !e.initialized {
		return CriticalMoments{}, ErrNotInitialized
	}
	return FindCriticalMoments(e.history.All(), e.shifts, e.goals), nil
}

// Report summarises the match so far.
func (e *Engine) Report() (Report, error) {
	if !e.initialized {
		return Report{}, ErrNotInitialized
	}
	return Summarize(e.reg, e.history.All(), e.shifts, e.patterns, e.goals), nil
}

// Context returns a copy of the match context.
func (e *Engine) Context() (MatchContext, error) {
	if !e.initialized {
		return MatchContext{}, ErrNotInitialized
	}
	return e.ctx, nil
}

// History returns a copy of every recorded snapshot.
func (e *Engine) History() ([]Snapshot, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	return e.history.All(), nil
}

// Shifts returns a copy of the shift log.
func (e *Engine) Shifts() ([]MomentumShift, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	return append([]MomentumShift(nil), e.shifts...), nil
}

// Patterns returns a copy of the pattern log.
func (e *Engine) Patterns() ([]DetectedPattern, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	return append([]DetectedPattern(nil), e.patterns...), nil
}

// Events returns a copy of every processed event, unknown types included.
func (e *Engine) Events() ([]Event, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	return append([]Event(nil), e.events...), nil
}
