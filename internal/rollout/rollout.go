// Package rollout drives one run tick by tick: it consults the control
// state, advances the step driver and renders every pane.
package rollout

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/geom"
	"github.com/san-kum/obsview/internal/render"
	"github.com/san-kum/obsview/internal/step"
	"go.uber.org/zap"
)

// RunState is the progress of one run.
type RunState struct {
	Steps      int
	Obs        dynamo.Observation
	Action     dynamo.Action
	AngleTotal float64
	Done       dynamo.Done
}

// Loop owns a RunState and advances it once per Tick.
type Loop struct {
	driver   step.Driver
	ctl      *control.State
	panes    []*render.Renderer
	anchors  []geom.Point
	maxSteps int
	log      *zap.Logger

	onStatus func(Status)
	onFrame  func(RunState)

	state   RunState
	started bool
	err     error
}

type Option func(*Loop)

func WithMaxSteps(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxSteps = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithStatus registers a callback invoked with the status line contents
// after every reset and every step.
func WithStatus(f func(Status)) Option {
	return func(l *Loop) { l.onStatus = f }
}

// WithFrameHook registers a callback invoked after each frame is rendered.
func WithFrameHook(f func(RunState)) Option {
	return func(l *Loop) { l.onFrame = f }
}

// New builds a loop. ctl may be nil for headless runs.
func New(driver step.Driver, ctl *control.State, panes []*render.Renderer, opts ...Option) *Loop {
	if ctl == nil {
		ctl = control.NewState()
	}
	l := &Loop{
		driver:   driver,
		ctl:      ctl,
		panes:    panes,
		anchors:  make([]geom.Point, len(panes)),
		maxSteps: dynamo.MaxSteps,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) State() RunState { return l.state }

func (l *Loop) Control() *control.State { return l.ctl }

// Err returns the fault that ended the run, if any.
func (l *Loop) Err() error { return l.err }

// Finished reports whether the run has terminated.
func (l *Loop) Finished() bool { return l.state.Done.Terminal }

// Pose returns the world-view pose of pane i.
func (l *Loop) Pose(i int) geom.Pose {
	return geom.Pose{AngleTotal: l.state.AngleTotal, Anchor: l.anchors[i]}
}

// Tick advances the run by at most one step. The first tick, and any tick
// that sees a replay request, resets the run and draws the initial frame.
// A stepper fault ends the run and is returned once.
func (l *Loop) Tick() error {
	if !l.started {
		l.started = true
		l.reset()
		return nil
	}
	if l.ctl.TakeReplay() {
		l.log.Info("replay")
		l.reset()
		return nil
	}

	snap := l.ctl.Snapshot()
	if snap.Done {
		return nil
	}
	if snap.Paused && !snap.Stepping() {
		return nil
	}

	res, err := l.driver.Step(l.state.Obs, l.state.Steps)
	switch {
	case errors.Is(err, step.ErrIndexExhausted):
		l.log.Warn("records ended without a done row", zap.Int("steps", l.state.Steps), zap.Error(err))
		l.finish(dynamo.Terminated(dynamo.ReasonEnd))
		return nil
	case err != nil:
		l.err = &dynamo.StepError{Step: l.state.Steps, Obs: l.state.Obs, Wrapped: err}
		l.log.Error("stepper fault", zap.Int("steps", l.state.Steps), zap.Error(err))
		l.finish(dynamo.Terminated(dynamo.ReasonError))
		return l.err
	}

	l.state.Obs = res.NextObs
	l.state.Action = res.Action
	l.state.AngleTotal += res.AngleDelta
	l.state.Done = res.Done

	trail := render.TrailOff
	if snap.Trails {
		trail = render.TrailOn
	}
	for i, r := range l.panes {
		r.Radials = snap.Radials
		r.Draw(l.state.Obs, l.state.Action, l.Pose(i), trail)
	}

	if snap.StepOnce {
		l.ctl.ConsumeStepOnce()
	}

	l.state.Steps++
	if !l.state.Done.Terminal && l.state.Steps >= l.maxSteps {
		l.state.Done = dynamo.Terminated(dynamo.ReasonMaxSteps)
		l.log.Info("max steps reached", zap.Int("max_steps", l.maxSteps))
	}
	if l.state.Done.Terminal {
		l.ctl.SetDone(true)
		l.log.Info("run done", zap.Int("steps", l.state.Steps), zap.Stringer("done", l.state.Done))
	}

	l.emit()
	return nil
}

func (l *Loop) reset() {
	l.state = RunState{Obs: l.driver.Initial, Action: dynamo.NoAction}
	l.err = nil
	l.ctl.SetDone(false)
	for i, r := range l.panes {
		l.anchors[i] = r.Viewport().Waypoint(l.driver.Initial)
		r.Reset()
		r.Radials = l.ctl.Snapshot().Radials
		r.Draw(l.state.Obs, l.state.Action, l.Pose(i), render.TrailOff)
	}
	l.emit()
}

func (l *Loop) finish(done dynamo.Done) {
	l.state.Done = done
	l.ctl.SetDone(true)
	l.emit()
}

func (l *Loop) emit() {
	if l.onFrame != nil {
		l.onFrame(l.state)
	}
	if l.onStatus != nil {
		l.onStatus(Status{Steps: l.state.Steps, Action: l.state.Action, Obs: l.state.Obs, Done: l.state.Done})
	}
}

// Run ticks until the run finishes or ctx is cancelled. A positive interval
// paces ticks; zero runs them back to back. Run is meant for headless use:
// with a paused State it only returns when ctx is cancelled.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}
	for {
		if err := l.Tick(); err != nil {
			return err
		}
		if l.Finished() {
			return nil
		}
		if ticker == nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
