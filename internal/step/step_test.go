package step

import (
	"errors"
	"testing"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/playback"
)

type countingStepper struct {
	calls int
	err   error
}

func (s *countingStepper) Step(obs dynamo.Observation, a dynamo.Action) (dynamo.Observation, float64, bool, error) {
	s.calls++
	if s.err != nil {
		return dynamo.Observation{}, 0, false, s.err
	}
	next := obs
	next.Wp1X += a.Throttle
	return next, 0.1, next.Wp1X >= 1, nil
}

func constPolicy(a dynamo.Action) dynamo.Policy {
	return func(dynamo.Observation) (dynamo.Action, error) { return a, nil }
}

func testRecords(n int) playback.Records {
	recs := make(playback.Records, n)
	for i := range recs {
		recs[i] = dynamo.Frame{
			Obs:        dynamo.Observation{Wp1X: float64(i) / 10, Wp1Y: -0.5, VelX: 0.01, VelY: 0.02},
			Action:     dynamo.Action{Throttle: 0.5, Steering: float64(i) / 100},
			AngleDelta: float64(i) * 0.001,
		}
	}
	recs[n-1].Done = dynamo.Finished()
	return recs
}

func TestReplayReturnsRecordVerbatim(t *testing.T) {
	recs := testRecords(5)
	stepper := &countingStepper{}

	for i := range recs {
		res, err := Once(dynamo.Observation{Wp1X: 99}, constPolicy(dynamo.Action{}), stepper, recs, i)
		if err != nil {
			t.Fatalf("index %d: %v", i, err)
		}
		want := recs[i]
		if res.NextObs != want.Obs || res.Action != want.Action || res.AngleDelta != want.AngleDelta || res.Done != want.Done {
			t.Errorf("index %d: got %+v, want %+v", i, res, want)
		}
	}
	if stepper.calls != 0 {
		t.Errorf("stepper called %d times during replay", stepper.calls)
	}
}

func TestReplayIndexExhausted(t *testing.T) {
	recs := testRecords(3)
	for _, idx := range []int{3, 4, -1} {
		_, err := Once(dynamo.Observation{}, nil, nil, recs, idx)
		if !errors.Is(err, ErrIndexExhausted) {
			t.Errorf("index %d: expected ErrIndexExhausted, got %v", idx, err)
		}
	}
}

func TestLiveStep(t *testing.T) {
	stepper := &countingStepper{}
	action := dynamo.Action{Throttle: 0.6, Steering: -0.2}

	res, err := Once(dynamo.Observation{Wp1X: 0.5}, constPolicy(action), stepper, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Action != action {
		t.Errorf("action: got %+v, want %+v", res.Action, action)
	}
	if res.AngleDelta != 0.1 {
		t.Errorf("angle delta: got %v", res.AngleDelta)
	}
	if !res.Done.Terminal || res.Done.Reason != "" {
		t.Errorf("expected natural done, got %+v", res.Done)
	}
	if stepper.calls != 1 {
		t.Errorf("expected 1 stepper call, got %d", stepper.calls)
	}
}

func TestLiveStepperFault(t *testing.T) {
	cause := errors.New("connection reset")
	stepper := &countingStepper{err: cause}

	_, err := Once(dynamo.Observation{}, constPolicy(dynamo.Action{}), stepper, nil, 0)
	if !errors.Is(err, ErrStepperFault) {
		t.Fatalf("expected ErrStepperFault, got %v", err)
	}
	if stepper.calls != 1 {
		t.Errorf("stepper retried: %d calls", stepper.calls)
	}
}

func TestLivePolicyFault(t *testing.T) {
	policy := func(dynamo.Observation) (dynamo.Action, error) { return dynamo.Action{}, errors.New("boom") }
	_, err := Once(dynamo.Observation{}, policy, &countingStepper{}, nil, 0)
	if !errors.Is(err, ErrStepperFault) {
		t.Fatalf("expected ErrStepperFault, got %v", err)
	}
}

func TestDriverReplayIndex(t *testing.T) {
	recs := testRecords(4)
	d := Replay(recs)
	if !d.IsReplay() {
		t.Fatal("expected replay driver")
	}
	if d.Initial != recs[0].Obs {
		t.Errorf("initial: got %+v", d.Initial)
	}
	res, err := d.Step(d.Initial, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.NextObs != recs[1].Obs {
		t.Errorf("step 0 should read records[1], got %+v", res.NextObs)
	}
	if _, err := d.Step(res.NextObs, 3); !errors.Is(err, ErrIndexExhausted) {
		t.Errorf("expected exhaustion at steps=3, got %v", err)
	}
}
