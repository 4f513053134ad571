package rollout

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/playback"
	"github.com/san-kum/obsview/internal/render"
	"github.com/san-kum/obsview/internal/step"
)

type driftStepper struct {
	err    error
	doneAt int
	calls  int
}

func (s *driftStepper) Step(obs dynamo.Observation, a dynamo.Action) (dynamo.Observation, float64, bool, error) {
	s.calls++
	if s.err != nil {
		return dynamo.Observation{}, 0, false, s.err
	}
	next := obs
	next.Wp1X = math.Mod(obs.Wp1X+0.01, 1)
	return next, 0.01, s.doneAt > 0 && s.calls >= s.doneAt, nil
}

func zeroPolicy(dynamo.Observation) (dynamo.Action, error) {
	return dynamo.Action{Throttle: 0.5}, nil
}

func makeRecords(n int, done bool) playback.Records {
	recs := make(playback.Records, n)
	for i := range recs {
		recs[i] = dynamo.Frame{
			Obs:        dynamo.Observation{Wp1X: float64(i) / float64(n), Wp1Y: 0.25},
			Action:     dynamo.Action{Throttle: 0.1, Steering: -0.1},
			AngleDelta: 0.02,
		}
	}
	if done {
		recs[n-1].Done = dynamo.Finished()
	}
	return recs
}

func panes() ([]*render.Renderer, *render.Recording, *render.Recording) {
	zero := render.NewRecording(100, 100)
	world := render.NewRecording(100, 100)
	return []*render.Renderer{render.New(zero, render.ViewZero), render.New(world, render.ViewWorld)}, zero, world
}

var _ = Describe("Loop", func() {
	var (
		ctl      *control.State
		statuses []Status
	)

	BeforeEach(func() {
		ctl = control.NewState()
		statuses = nil
	})

	record := WithStatus(func(s Status) { statuses = append(statuses, s) })

	Describe("replay", func() {
		It("shows records[i+1] after step i and stops on the done row", func() {
			recs := makeRecords(6, true)
			ps, _, _ := panes()
			loop := New(step.Replay(recs), ctl, ps, record)

			Expect(loop.Tick()).To(Succeed())
			Expect(loop.State().Obs).To(Equal(recs[0].Obs))

			for i := 0; i < 5; i++ {
				Expect(loop.Tick()).To(Succeed())
				Expect(loop.State().Obs).To(Equal(recs[i+1].Obs))
				Expect(loop.State().Steps).To(Equal(i + 1))
			}
			Expect(loop.Finished()).To(BeTrue())
			Expect(ctl.Snapshot().Done).To(BeTrue())
			Expect(loop.State().AngleTotal).To(BeNumerically("~", 0.1, 1e-12))

			Expect(loop.Tick()).To(Succeed())
			Expect(loop.State().Steps).To(Equal(5))
		})

		It("ends with END when records run out", func() {
			recs := makeRecords(3, false)
			ps, _, _ := panes()
			loop := New(step.Replay(recs), ctl, ps)

			Expect(loop.Run(context.Background(), 0)).To(Succeed())
			Expect(loop.State().Steps).To(Equal(2))
			Expect(loop.State().Done).To(Equal(dynamo.Terminated(dynamo.ReasonEnd)))
		})
	})

	Describe("reset", func() {
		It("restores the initial frame on a replay request", func() {
			recs := makeRecords(10, true)
			ps, zero, _ := panes()
			machine := control.NewMachine(ctl, control.NewFrameClock())
			loop := New(step.Replay(recs), ctl, ps, record)

			for i := 0; i < 4; i++ {
				Expect(loop.Tick()).To(Succeed())
			}
			Expect(loop.State().Steps).To(Equal(3))

			machine.Handle(control.Event{Kind: control.KeyDown, Key: "r"})
			zero.Reset()
			Expect(loop.Tick()).To(Succeed())

			st := loop.State()
			Expect(st.Steps).To(Equal(0))
			Expect(st.Obs).To(Equal(recs[0].Obs))
			Expect(st.AngleTotal).To(Equal(0.0))
			Expect(st.Done.Terminal).To(BeFalse())
			Expect(ctl.Snapshot().Replay).To(BeFalse())
			Expect(zero.Count(render.OpClear)).To(Equal(1))
			Expect(loop.Pose(1).Anchor).To(Equal(ps[1].Viewport().Waypoint(recs[0].Obs)))
		})

		It("restarts a finished run", func() {
			recs := makeRecords(3, true)
			ps, _, _ := panes()
			loop := New(step.Replay(recs), ctl, ps)
			Expect(loop.Run(context.Background(), 0)).To(Succeed())
			Expect(ctl.Snapshot().Done).To(BeTrue())

			control.NewMachine(ctl, control.NewFrameClock()).Handle(control.Event{Kind: control.KeyDown, Key: "r"})
			Expect(loop.Tick()).To(Succeed())
			Expect(ctl.Snapshot().Done).To(BeFalse())
			Expect(loop.Tick()).To(Succeed())
			Expect(loop.State().Steps).To(Equal(1))
		})
	})

	Describe("pause and step", func() {
		It("idles while paused and takes exactly one step per StepOnce", func() {
			recs := makeRecords(10, true)
			ps, _, _ := panes()
			clock := control.NewFrameClock()
			machine := control.NewMachine(ctl, clock)
			loop := New(step.Replay(recs), ctl, ps)
			Expect(loop.Tick()).To(Succeed())

			machine.Handle(control.Event{Kind: control.KeyDown, Key: "p"})
			Expect(loop.Tick()).To(Succeed())
			Expect(loop.State().Steps).To(Equal(0))

			machine.Handle(control.Event{Kind: control.KeyDown, Key: "s"})
			Expect(loop.Tick()).To(Succeed())
			Expect(loop.Tick()).To(Succeed())
			Expect(loop.State().Steps).To(Equal(1))
			Expect(ctl.Snapshot().Paused).To(BeTrue())
			Expect(ctl.Snapshot().StepOnce).To(BeFalse())

			clock.Advance(control.DefaultHoldDelay)
			Expect(loop.Tick()).To(Succeed())
			Expect(loop.Tick()).To(Succeed())
			Expect(loop.State().Steps).To(Equal(3))

			machine.Handle(control.Event{Kind: control.KeyUp, Key: "s"})
			Expect(loop.Tick()).To(Succeed())
			Expect(loop.State().Steps).To(Equal(3))
		})
	})

	Describe("live", func() {
		It("terminates with MAXSTEPS at 3000", func() {
			ps, _, _ := panes()
			stepper := &driftStepper{}
			loop := New(step.Live(zeroPolicy, stepper, dynamo.Observation{}), ctl, ps, record)

			Expect(loop.Run(context.Background(), 0)).To(Succeed())
			Expect(loop.State().Steps).To(Equal(dynamo.MaxSteps))
			Expect(loop.State().Done).To(Equal(dynamo.Terminated(dynamo.ReasonMaxSteps)))
			Expect(stepper.calls).To(Equal(dynamo.MaxSteps))
			Expect(statuses[len(statuses)-1].String()).To(HaveSuffix("Done: MAXSTEPS"))
		})

		It("keeps a natural done at the step limit", func() {
			ps, _, _ := panes()
			loop := New(step.Live(zeroPolicy, &driftStepper{doneAt: 5}, dynamo.Observation{}), ctl, ps, WithMaxSteps(5))
			Expect(loop.Run(context.Background(), 0)).To(Succeed())
			Expect(loop.State().Done).To(Equal(dynamo.Finished()))
		})

		It("ends the run on a stepper fault", func() {
			ps, _, _ := panes()
			stepper := &driftStepper{err: errors.New("socket closed")}
			loop := New(step.Live(zeroPolicy, stepper, dynamo.Observation{}), ctl, ps)

			err := loop.Run(context.Background(), 0)
			Expect(errors.Is(err, step.ErrStepperFault)).To(BeTrue())
			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(0))
			Expect(loop.Finished()).To(BeTrue())
			Expect(stepper.calls).To(Equal(1))
		})

		It("stops when the context is cancelled", func() {
			ps, _, _ := panes()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			loop := New(step.Live(zeroPolicy, &driftStepper{}, dynamo.Observation{}), ctl, ps)
			Expect(loop.Run(ctx, 0)).To(MatchError(context.Canceled))
		})
	})

	Describe("rendering", func() {
		It("draws every pane and keeps the world waypoint on its anchor", func() {
			recs := makeRecords(8, true)
			ps, zero, world := panes()
			loop := New(step.Replay(recs), ctl, ps)
			Expect(loop.Tick()).To(Succeed())

			for !loop.Finished() {
				world.Reset()
				Expect(loop.Tick()).To(Succeed())
				wp := world.Find(render.OpCircle, ps[1].Palette.Waypoint)
				Expect(wp).To(HaveLen(1))
				Expect(wp[0].Points[0].X).To(BeNumerically("~", loop.Pose(1).Anchor.X, 1e-9))
				Expect(wp[0].Points[0].Y).To(BeNumerically("~", loop.Pose(1).Anchor.Y, 1e-9))
			}
			Expect(zero.Count(render.OpClear)).To(Equal(8))
		})

		It("samples draws when trails are on", func() {
			recs := makeRecords(30, true)
			ps, zero, _ := panes()
			ctl.SetTrails(true)
			loop := New(step.Replay(recs), ctl, ps)
			Expect(loop.Run(context.Background(), 0)).To(Succeed())
			Expect(zero.Count(render.OpClear)).To(Equal(1))
			Expect(zero.Find(render.OpCircle, ps[0].Palette.Waypoint)).To(HaveLen(1 + 29/render.SkipEvery))
		})
	})

	Describe("status", func() {
		It("reports the initial frame with no action", func() {
			ps, _, _ := panes()
			loop := New(step.Replay(makeRecords(3, true)), ctl, ps, record)
			Expect(loop.Tick()).To(Succeed())
			Expect(statuses).To(HaveLen(1))
			line := statuses[0].String()
			Expect(line).To(HavePrefix("Steps:    0  steer: NaN   throttle: NaN"))
			Expect(line).To(HaveSuffix("Done: false"))
		})
	})
})
