package provisioning

import (
	"context"
	"fmt"
	"time"
)

// Phase is one step of a linear workflow.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Run executes the phase.
	Run(ctx context.Context) error
}

// PhaseFunc adapts a function to the Phase interface.
type PhaseFunc struct {
	PhaseName string
	Fn        func(ctx context.Context) error
}

// Name implements Phase.
func (p PhaseFunc) Name() string { return p.PhaseName }

// Run implements Phase.
func (p PhaseFunc) Run(ctx context.Context) error { return p.Fn(ctx) }

// RunPhases executes phases sequentially and stops at the first failure.
func RunPhases(ctx context.Context, observer Observer, phases []Phase) error {
	start := time.Now()

	for i, phase := range phases {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s phase not started: %w", phase.Name(), err)
		}

		phaseStart := time.Now()
		obs := observer.WithFields(map[string]string{"step": fmt.Sprintf("%d/%d", i+1, len(phases))})
		LogPhaseStart(obs, phase.Name())

		if err := phase.Run(ctx); err != nil {
			LogPhaseFailed(obs, phase.Name(), err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseComplete(obs, phase.Name(), time.Since(phaseStart))
	}

	observer.Printf("Completed %d phases in %v", len(phases), time.Since(start).Round(time.Millisecond))
	return nil
}
