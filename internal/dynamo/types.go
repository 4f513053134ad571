package dynamo

import (
	"math"
	"strconv"
)

const (
	// MaxSteps is the rollout step ceiling.
	MaxSteps = 3000

	// ReasonMaxSteps is the Done reason reported when MaxSteps is reached.
	ReasonMaxSteps = "MAXSTEPS"

	// ReasonEnd is reported when a record list runs out before a done row.
	ReasonEnd = "END"

	// ReasonError is reported when a stepper fault ends the run.
	ReasonError = "ERROR"
)

// Observation is the player-frame view of one tick.
type Observation struct {
	Wp1X float64 `json:"wp1x"`
	Wp1Y float64 `json:"wp1y"`
	VelX float64 `json:"velx"`
	VelY float64 `json:"vely"`
}

func (o Observation) IsValid() bool {
	for _, v := range [...]float64{o.Wp1X, o.Wp1Y, o.VelX, o.VelY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Action is the control command for one tick.
type Action struct {
	Throttle float64 `json:"throttle"`
	Steering float64 `json:"steering"`
}

// NoAction marks a frame that has no command yet, such as the initial
// condition of a run.
var NoAction = Action{Throttle: math.NaN(), Steering: math.NaN()}

// Done reports whether a run has terminated and why.
// The zero value means the run is still going.
type Done struct {
	Terminal bool
	Reason   string
}

// Finished is a natural termination signalled by the stepper or a record.
func Finished() Done { return Done{Terminal: true} }

// Terminated is a forced termination with a reason such as ReasonMaxSteps.
func Terminated(reason string) Done { return Done{Terminal: true, Reason: reason} }

func (d Done) String() string {
	if !d.Terminal {
		return "false"
	}
	if d.Reason != "" {
		return d.Reason
	}
	return strconv.FormatBool(d.Terminal)
}

// Frame is one recorded or live simulation tick.
type Frame struct {
	Obs        Observation
	Action     Action
	AngleDelta float64
	Done       Done
}

// Policy picks an action for the current observation.
type Policy func(obs Observation) (Action, error)

// Stepper advances the simulation by one tick. It returns the next
// observation, the player's heading change in radians and whether the
// episode ended.
type Stepper interface {
	Step(obs Observation, action Action) (Observation, float64, bool, error)
}

// Agent is implemented by steppers that ship a built-in policy.
type Agent interface {
	Agent0(obs Observation) (Action, error)
}

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}
