package model

import (
	"context"
	"time"

	"edusolver/config"
)

// StageTiming is the cosmetic delay table for one mode.
type StageTiming struct {
	Analyzing  time.Duration
	Validating time.Duration
}

// Choreography maps each mode to its stage delays.
type Choreography map[Mode]StageTiming

// DefaultChoreography matches the interactive client.
var DefaultChoreography = Choreography{
	ModeQuick: {Analyzing: 500 * time.Millisecond},
	ModeDeep:  {Analyzing: 1500 * time.Millisecond, Validating: 2000 * time.Millisecond},
}

// NoChoreography runs every stage back to back.
var NoChoreography = Choreography{}

// Timing returns the delays for m; missing rows mean no delay.
func (c Choreography) Timing(m Mode) StageTiming {
	return c[m]
}

// ChoreographyFromConfig builds the table from the [pipeline] section.
func ChoreographyFromConfig(p config.PipelineConfig) Choreography {
	return Choreography{
		ModeQuick: {Analyzing: p.AnalyzingQuick.Duration},
		ModeDeep: {
			Analyzing:  p.AnalyzingDeep.Duration,
			Validating: p.ValidatingDeep.Duration,
		},
	}
}

// EmitFunc delivers an event to whoever owns the Session.
type EmitFunc func(Event)

// Pipeline runs one solve and reports stage transitions as events. The caller
// applies the SolveStarted event itself before calling Run.
type Pipeline struct {
	Provider     Provider
	Choreography Choreography
	// Timeout bounds the service call. Zero means no limit.
	Timeout time.Duration
	// Sleep waits for d or until ctx is done. Nil means a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPipeline creates a pipeline with real timers.
func NewPipeline(p Provider, c Choreography) *Pipeline {
	return &Pipeline{Provider: p, Choreography: c}
}

// Run drives one solve: analyzing delay, the service call, the validating
// delay in deep mode, then success or failure. Cancelling ctx aborts at any
// suspension point and emits SolveCancelled.
func (p *Pipeline) Run(ctx context.Context, runID string, req GenerationRequest, emit EmitFunc) (*Solution, error) {
	timing := p.Choreography.Timing(req.Mode)

	cancelled := func(err error) (*Solution, error) {
		config.DebugLog.Debugw("solve cancelled", "run", runID, "error", err)
		emit(SolveCancelled{RunID: runID})
		return nil, err
	}

	if err := p.sleep(ctx, timing.Analyzing); err != nil {
		return cancelled(err)
	}
	emit(StageAdvanced{RunID: runID, Stage: StageSolving})

	callCtx, cancel := withTimeout(ctx, p.Timeout)
	sol, err := Solve(callCtx, p.Provider, req)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(ctx.Err())
		}
		emit(SolveFailed{RunID: runID, Err: err})
		return nil, err
	}

	if req.Mode.Profile().ShowsValidation {
		emit(StageAdvanced{RunID: runID, Stage: StageValidating})
		if err := p.sleep(ctx, timing.Validating); err != nil {
			return cancelled(err)
		}
	}

	emit(SolveSucceeded{RunID: runID, Solution: sol})
	return sol, nil
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
