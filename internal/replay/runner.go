package replay

import (
	"context"
	"fmt"

	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/okian/momentum/pkg/logger"
)

// DefaultHorizon is the forecast horizon used when none is given.
const DefaultHorizon = 10

// Options tunes an in-process replay.
type Options struct {
	// Seed feeds the engine's random source. Zero keeps the engine deterministic.
	Seed int64
	// Horizon is the closing forecast horizon.
	Horizon int
}

// Step pairs a script event with its effect.
type Step struct {
	Event  ScriptEvent            `json:"event"`
	Result momentum.ProcessResult `json:"result"`
}

// Result is everything a replay produced.
type Result struct {
	MatchID         string                   `json:"match_id"`
	Init            momentum.InitResult      `json:"init"`
	Steps           []Step                   `json:"steps"`
	Analysis        momentum.Analysis        `json:"analysis"`
	Forecast        momentum.Forecast        `json:"forecast"`
	Triggers        momentum.TriggerReport   `json:"triggers"`
	CriticalMoments momentum.CriticalMoments `json:"critical_moments"`
	Report          momentum.Report          `json:"report"`
}

// Run replays s through a fresh engine and gathers every analysis.
func Run(ctx context.Context, s *Script, opts Options) (*Result, error) {
	if opts.Horizon < 0 {
		return nil, fmt.Errorf("%w: horizon %d", ErrInvalidOption, opts.Horizon)
	}
	if opts.Horizon == 0 {
		opts.Horizon = DefaultHorizon
	}

	eng := momentum.New()
	if opts.Seed != 0 {
		eng = momentum.New(momentum.WithRandomSource(momentum.NewSeededSource(opts.Seed)))
	}
	kickoff, err := eng.Initialize(s.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}

	log := logger.Get().Named("replay")
	res := &Result{MatchID: s.MatchID, Init: kickoff, Steps: make([]Step, 0, len(s.Events))}
	for i, e := range s.Events {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay interrupted at event %d: %w", i+1, err)
		}
		ev, err := momentum.NewEvent(e.Type, e.Side, e.Minute)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %w", ErrInvalidScript, i+1, err)
		}
		pr, err := eng.ProcessEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		for _, w := range pr.Warnings {
			log.Debug(ctx, "engine warning", logger.String("event_id", e.ID), logger.String("warning", w.String()))
		}
		res.Steps = append(res.Steps, Step{Event: e, Result: pr})
	}

	if res.Analysis, err = eng.AnalyzeState(nil); err != nil {
		return nil, err
	}
	if res.Forecast, err = eng.Forecast(opts.Horizon); err != nil {
		return nil, err
	}
	if res.Triggers, err = eng.Triggers(momentum.Both); err != nil {
		return nil, err
	}
	if res.CriticalMoments, err = eng.CriticalMoments(); err != nil {
		return nil, err
	}
	if res.Report, err = eng.Report(); err != nil {
		return nil, err
	}
	log.Info(ctx, "replay finished",
		logger.String("match_id", s.MatchID),
		logger.Int("events", len(res.Steps)),
		logger.Int("shifts", res.Report.ShiftCount),
	)
	return res, nil
}
