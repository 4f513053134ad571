package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/san-kum/obsview/internal/agents"
	"github.com/san-kum/obsview/internal/config"
	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/integrators"
	"github.com/san-kum/obsview/internal/physics"
	"github.com/san-kum/obsview/internal/playback"
	"github.com/san-kum/obsview/internal/remote"
	"github.com/san-kum/obsview/internal/step"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLocalStepper builds the in-process ship stepper from cfg.
func newLocalStepper(cfg *config.Config) (*physics.Local, error) {
	ship := physics.NewShip()
	for k, v := range cfg.Live.Physics {
		if err := ship.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	integ, err := integrators.New(cfg.Live.Integrator)
	if err != nil {
		return nil, err
	}
	return physics.NewLocal(ship, integ, cfg.Live.Dt), nil
}

// newStepper returns the stepper named by cfg.Live.Stepper and a closer for
// its connection.
func newStepper(ctx context.Context, cfg *config.Config, log *zap.Logger) (dynamo.Stepper, io.Closer, error) {
	if cfg.Live.Stepper == "" || cfg.Live.Stepper == config.DefaultStepper {
		s, err := newLocalStepper(cfg)
		return s, nopCloser{}, err
	}
	if !strings.HasPrefix(cfg.Live.Stepper, "ws://") && !strings.HasPrefix(cfg.Live.Stepper, "wss://") {
		return nil, nil, fmt.Errorf("unknown stepper: %s", cfg.Live.Stepper)
	}
	c, err := remote.Dial(ctx, cfg.Live.Stepper, remote.ClientConfig{Logger: log})
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}

// newPolicy resolves cfg.Live.Policy. agent0 against a stepper without a
// built-in agent falls back to the local ship's agent.
func newPolicy(cfg *config.Config, stepper dynamo.Stepper, arrows agents.ArrowSource, rng *rand.Rand, log *zap.Logger) (dynamo.Policy, error) {
	deps := agents.Deps{
		Stepper: stepper,
		Arrows:  arrows,
		Rng:     rng,
		Dt:      cfg.Live.Dt,
		Params:  cfg.Live.Params,
	}
	policy, err := agents.NewRegistry().Get(cfg.Live.Policy, deps)
	if errors.Is(err, agents.ErrNoAgent) {
		log.Warn("stepper has no agent0, using the local ship's", zap.String("stepper", cfg.Live.Stepper))
		ship := physics.NewShip()
		return func(obs dynamo.Observation) (dynamo.Action, error) {
			return ship.Agent0(obs), nil
		}, nil
	}
	return policy, err
}

func initialObservation(cfg *config.Config, rng *rand.Rand) dynamo.Observation {
	start := cfg.InitialObservation()
	if start.Random {
		return physics.RandomObservation(rng)
	}
	return start.Observation()
}

// liveDriver builds a live driver with its own stepper, policy and rng.
func liveDriver(ctx context.Context, cfg *config.Config, seed int64, arrows agents.ArrowSource, log *zap.Logger) (step.Driver, io.Closer, error) {
	rng := rand.New(rand.NewSource(seed))
	stepper, closer, err := newStepper(ctx, cfg, log)
	if err != nil {
		return step.Driver{}, nil, err
	}
	policy, err := newPolicy(cfg, stepper, arrows, rng, log)
	if err != nil {
		closer.Close()
		return step.Driver{}, nil, err
	}
	initial := initialObservation(cfg, rng)
	log.Info("live rollout",
		zap.String("policy", cfg.Live.Policy),
		zap.String("stepper", cfg.Live.Stepper),
		zap.Int64("seed", seed),
		zap.Float64("wp1x", initial.Wp1X),
		zap.Float64("wp1y", initial.Wp1Y))
	return step.Live(policy, stepper, initial), closer, nil
}

func loadRecords(ctx context.Context, arg string, log *zap.Logger) (playback.Records, error) {
	src, id, err := playback.OpenSource(arg)
	if err != nil {
		return nil, err
	}
	return playback.Load(ctx, src, id, log)
}
