package physics

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/integrators"
)

// Local steps a Ship in process. It is not safe for concurrent use because
// integrators keep scratch buffers.
type Local struct {
	Ship       *Ship
	Integrator dynamo.Integrator
	Dt         float64

	t float64
}

func NewLocal(ship *Ship, integ dynamo.Integrator, dt float64) *Local {
	if ship == nil {
		ship = NewShip()
	}
	if integ == nil {
		integ = integrators.NewRK4()
	}
	if dt <= 0 {
		dt = DefaultDt
	}
	return &Local{Ship: ship, Integrator: integ, Dt: dt}
}

func (l *Local) Step(obs dynamo.Observation, a dynamo.Action) (dynamo.Observation, float64, bool, error) {
	if !obs.IsValid() {
		return dynamo.Observation{}, 0, false, fmt.Errorf("observation %+v: %w", obs, dynamo.ErrInvalidState)
	}

	x := dynamo.State{obs.Wp1X, obs.Wp1Y, obs.VelX, obs.VelY}
	u := dynamo.Control{clamp(a.Throttle), clamp(a.Steering)}
	if len(x) != l.Ship.StateDim() || len(u) != l.Ship.ControlDim() {
		return dynamo.Observation{}, 0, false, dynamo.ErrDimensionMismatch
	}

	next := l.Integrator.Step(l.Ship, x, u, l.t, l.Dt)
	l.t += l.Dt
	if !next.IsValid() {
		return dynamo.Observation{}, 0, false, fmt.Errorf("after step: %w", dynamo.ErrInvalidState)
	}

	// positive steering turns the player clockwise, which turns the
	// player-frame vectors the other way
	turn := u[1] * l.Ship.TurnRate * l.Dt
	wx, wy := rotate(next[0], next[1], turn)
	vx, vy := rotate(next[2], next[3], turn)

	out := dynamo.Observation{Wp1X: wx, Wp1Y: wy, VelX: vx, VelY: vy}
	done := l.Ship.Captured(dynamo.State{wx, wy})
	return out, turn, done, nil
}

func (l *Local) Agent0(obs dynamo.Observation) (dynamo.Action, error) {
	return l.Ship.Agent0(obs), nil
}

// RandomObservation draws every component uniformly from [-1, 1].
func RandomObservation(rng *rand.Rand) dynamo.Observation {
	u := func() float64 { return 2*rng.Float64() - 1 }
	return dynamo.Observation{Wp1X: u(), Wp1Y: u(), VelX: u(), VelY: u()}
}
