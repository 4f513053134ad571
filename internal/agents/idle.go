package agents

import "github.com/san-kum/obsview/internal/dynamo"

// Idle never throttles or steers.
func Idle() dynamo.Policy {
	return func(dynamo.Observation) (dynamo.Action, error) {
		return dynamo.Action{}, nil
	}
}
