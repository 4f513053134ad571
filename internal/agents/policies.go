// Package agents builds the policies a live rollout can run.
package agents

import (
	"errors"
	"math"
	"math/rand"
	"sync"

	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/dynamo"
)

// ErrNoAgent is returned when agent0 is requested from a stepper that does
// not ship one.
var ErrNoAgent = errors.New("agents: stepper has no built-in agent")

// Agent0 delegates to the stepper's built-in policy.
func Agent0(stepper dynamo.Stepper) (dynamo.Policy, error) {
	agent, ok := stepper.(dynamo.Agent)
	if !ok {
		return nil, ErrNoAgent
	}
	return agent.Agent0, nil
}

// Random draws throttle and steering uniformly from [-1, 1].
func Random(rng *rand.Rand) dynamo.Policy {
	var mu sync.Mutex
	return func(dynamo.Observation) (dynamo.Action, error) {
		mu.Lock()
		defer mu.Unlock()
		return dynamo.Action{
			Throttle: 2*rng.Float64() - 1,
			Steering: 2*rng.Float64() - 1,
		}, nil
	}
}

// ArrowSource reports which arrow keys are held.
type ArrowSource interface {
	Arrows() control.Arrows
}

// Human maps held arrows to full-scale commands: up/down throttle,
// left -1 and right +1 steering. Up and left win when both keys of a pair
// are held.
func Human(src ArrowSource) dynamo.Policy {
	return func(dynamo.Observation) (dynamo.Action, error) {
		keys := src.Arrows()
		var a dynamo.Action
		switch {
		case keys.Up:
			a.Throttle = 1
		case keys.Down:
			a.Throttle = -1
		}
		switch {
		case keys.Left:
			a.Steering = -1
		case keys.Right:
			a.Steering = 1
		}
		return a, nil
	}
}

// aheadCone is the bearing, either side, within which Pursuit throttles.
const aheadCone = math.Pi / 4

// Pursuit steers with a PID loop on the waypoint bearing and throttles
// while the waypoint is ahead. dt is the tick length fed to the loop.
func Pursuit(pid *PID, dt float64) dynamo.Policy {
	var (
		mu sync.Mutex
		t  float64
	)
	return func(obs dynamo.Observation) (dynamo.Action, error) {
		mu.Lock()
		defer mu.Unlock()

		bearing := math.Atan2(obs.Wp1X, obs.Wp1Y)
		// the loop drives the bearing to zero, and turning right shrinks it
		steer := -pid.Compute(bearing, t)
		t += dt

		a := dynamo.Action{Steering: clamp(steer)}
		if math.Abs(bearing) <= aheadCone {
			a.Throttle = clamp(math.Hypot(obs.Wp1X, obs.Wp1Y) - obs.VelY)
		}
		return a, nil
	}
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
