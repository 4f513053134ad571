package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/obsview/internal/dynamo"
)

const (
	DefaultThrust   = 0.5
	DefaultDrag     = 1.0
	DefaultTurnRate = 2.0
	DefaultDrift    = 0.05
	DefaultCapture  = 0.05
	DefaultDt       = 0.05
)

// Ship is a point body with forward thrust, linear drag and a turn rate,
// chasing a waypoint that slowly orbits it.
type Ship struct {
	Thrust        float64
	Drag          float64
	TurnRate      float64
	Drift         float64
	CaptureRadius float64
}

func NewShip() *Ship {
	return &Ship{
		Thrust:        DefaultThrust,
		Drag:          DefaultDrag,
		TurnRate:      DefaultTurnRate,
		Drift:         DefaultDrift,
		CaptureRadius: DefaultCapture,
	}
}

func (s *Ship) StateDim() int   { return 4 }
func (s *Ship) ControlDim() int { return 2 }

// Derive returns d/dt of [wx, wy, vx, vy] for control [throttle, steering].
// Steering does not enter the derivative; Local applies it as a frame
// rotation.
func (s *Ship) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	wx, wy, vx, vy := x[0], x[1], x[2], x[3]

	throttle := 0.0
	if len(u) >= 1 {
		throttle = clamp(u[0])
	}

	return dynamo.State{
		-vx - s.Drift*wy,
		-vy + s.Drift*wx,
		-s.Drag * vx,
		s.Thrust*throttle - s.Drag*vy,
	}
}

// Captured reports whether the waypoint is within the capture radius.
func (s *Ship) Captured(x dynamo.State) bool {
	return math.Hypot(x[0], x[1]) < s.CaptureRadius
}

func (s *Ship) GetParams() map[string]float64 {
	return map[string]float64{
		"thrust":    s.Thrust,
		"drag":      s.Drag,
		"turn_rate": s.TurnRate,
		"drift":     s.Drift,
		"capture":   s.CaptureRadius,
	}
}

func (s *Ship) SetParam(name string, value float64) error {
	switch name {
	case "thrust":
		s.Thrust = value
	case "drag":
		s.Drag = value
	case "turn_rate":
		s.TurnRate = value
	case "drift":
		s.Drift = value
	case "capture":
		s.CaptureRadius = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

// Agent0 steers toward the waypoint (positive steering is a right turn) and
// throttles in proportion to the
// remaining distance once it is roughly ahead.
func (s *Ship) Agent0(obs dynamo.Observation) dynamo.Action {
	bearing := math.Atan2(obs.Wp1X, obs.Wp1Y)
	dist := math.Hypot(obs.Wp1X, obs.Wp1Y)

	a := dynamo.Action{Steering: clamp(2 * bearing)}
	if math.Abs(bearing) < math.Pi/4 {
		a.Throttle = clamp(1.5*dist - obs.VelY)
	}
	return a
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func rotate(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}
