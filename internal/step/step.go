// Package step advances an observation by one tick from either a live
// stepper or a loaded record list, so callers render both the same way.
package step

import (
	"errors"
	"fmt"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/playback"
)

var (
	// ErrIndexExhausted is returned when a replay asks for a record past the end.
	ErrIndexExhausted = errors.New("step: record index exhausted")

	// ErrStepperFault wraps any error returned by a live stepper or policy.
	ErrStepperFault = errors.New("step: stepper fault")
)

// Result is one advanced tick.
type Result struct {
	NextObs    dynamo.Observation
	Action     dynamo.Action
	AngleDelta float64
	Done       dynamo.Done
}

// Once advances obs by one tick. With records set it returns
// records[index] verbatim and ignores policy and stepper. Otherwise the
// policy picks an action and the stepper applies it.
func Once(obs dynamo.Observation, policy dynamo.Policy, stepper dynamo.Stepper, records playback.Records, index int) (Result, error) {
	if records != nil {
		if index < 0 || index >= len(records) {
			return Result{}, fmt.Errorf("%w: index %d of %d", ErrIndexExhausted, index, len(records))
		}
		f := records[index]
		return Result{NextObs: f.Obs, Action: f.Action, AngleDelta: f.AngleDelta, Done: f.Done}, nil
	}

	if policy == nil || stepper == nil {
		return Result{}, fmt.Errorf("%w: live step needs a policy and a stepper", ErrStepperFault)
	}

	action, err := policy(obs)
	if err != nil {
		return Result{}, fmt.Errorf("%w: policy: %v", ErrStepperFault, err)
	}
	next, angleDelta, done, err := stepper.Step(obs, action)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStepperFault, err)
	}

	r := Result{NextObs: next, Action: action, AngleDelta: angleDelta}
	if done {
		r.Done = dynamo.Finished()
	}
	return r, nil
}

// Driver bundles the step inputs of one rollout. A Driver with Records set
// replays them, otherwise it runs Policy against Stepper from Initial.
type Driver struct {
	Policy  dynamo.Policy
	Stepper dynamo.Stepper
	Records playback.Records
	Initial dynamo.Observation
}

// Replay builds a Driver over a loaded record list.
func Replay(records playback.Records) Driver {
	return Driver{Records: records, Initial: records.Initial()}
}

// Live builds a Driver for a policy and stepper starting at initial.
func Live(policy dynamo.Policy, stepper dynamo.Stepper, initial dynamo.Observation) Driver {
	return Driver{Policy: policy, Stepper: stepper, Initial: initial}
}

func (d Driver) IsReplay() bool { return d.Records != nil }

// Step advances obs. steps is the number of steps already taken, so replay
// reads records[steps+1].
func (d Driver) Step(obs dynamo.Observation, steps int) (Result, error) {
	return Once(obs, d.Policy, d.Stepper, d.Records, steps+1)
}
