package recorder

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/san-kum/obsview/internal/step"
	"go.uber.org/zap"
)

// Factory builds an independent live driver for one episode. Each call
// must return its own stepper and policy state.
type Factory func(seed int64) (step.Driver, error)

// Ensemble records NumRuns episodes concurrently with seeds starting at
// SeedStart.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
	maxSteps  int
	log       *zap.Logger
}

func NewEnsemble(f Factory, numRuns int, seedStart int64, maxSteps int, log *zap.Logger) *Ensemble {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ensemble{factory: f, numRuns: numRuns, seedStart: seedStart, maxSteps: maxSteps, log: log}
}

// Run records every episode and returns them in seed order. The first
// error wins; episodes still running see ctx cancelled.
func (e *Ensemble) Run(ctx context.Context) ([]*Episode, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	episodes := make([]*Episode, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			d, err := e.factory(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("episode seed %d: %w", seed, err)
				cancel()
				return
			}

			ep := &Episode{ID: uuid.NewString(), Seed: seed}
			ep.Frames, ep.Done, err = Record(ctx, d, e.maxSteps)
			if err != nil {
				errs[idx] = fmt.Errorf("episode seed %d: %w", seed, err)
				cancel()
				return
			}
			e.log.Debug("episode recorded",
				zap.String("id", ep.ID),
				zap.Int64("seed", seed),
				zap.Int("steps", ep.Steps()),
				zap.Stringer("done", ep.Done))
			episodes[idx] = ep
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return episodes, nil
}
