package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestObservation_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		obs   Observation
		valid bool
	}{
		{"zeros", Observation{}, true},
		{"out of nominal range", Observation{Wp1X: 1.7, Wp1Y: -2.2}, true},
		{"with NaN", Observation{VelX: math.NaN()}, false},
		{"with +Inf", Observation{Wp1Y: math.Inf(1)}, false},
		{"with -Inf", Observation{VelY: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obs.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestDone_String(t *testing.T) {
	tests := []struct {
		done Done
		want string
	}{
		{Done{}, "false"},
		{Finished(), "true"},
		{Terminated(ReasonMaxSteps), "MAXSTEPS"},
	}

	for _, tt := range tests {
		if got := tt.done.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestState_Clone(t *testing.T) {
	original := State{1, 2, 3}
	clone := original.Clone()
	clone[0] = 100

	if original[0] != 1 {
		t.Error("Clone should create independent copy")
	}
}

func TestStepError_Unwrap(t *testing.T) {
	err := &StepError{Step: 12, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("StepError should unwrap to its cause")
	}
	if err.Error() != "step 12: "+ErrInvalidState.Error() {
		t.Errorf("unexpected message %q", err.Error())
	}
}
