// Package gui is the windowed player, built on raylib. Unlike a terminal
// it sees real key releases and focus changes.
package gui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/render"
	"github.com/san-kum/obsview/internal/rollout"
	"github.com/san-kum/obsview/internal/step"
	"go.uber.org/zap"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColText    = rl.NewColor(204, 204, 204, 255)
	ColTextDim = rl.NewColor(120, 120, 120, 255)
	ColAccent  = rl.NewColor(255, 170, 0, 255)
)

const (
	gap       = 10
	statusBar = 48
)

type Config struct {
	Title     string
	PaneSize  int
	MaxSteps  int
	HoldDelay time.Duration
	// Interval is the time between rollout ticks; frames render at FPS.
	Interval time.Duration
	FPS      int
	// TrailSample is the step interval between trail marks.
	TrailSample int
	Logger      *zap.Logger
}

// App runs one rollout in a window with a pane per view.
type App struct {
	cfg     Config
	clock   *control.FrameClock
	machine *control.Machine
	loop    *rollout.Loop
	input   *Input
	panes   []*Pane
	font    rl.Font
	log     *zap.Logger

	lastTick time.Duration
	err      error
}

// Run opens the window and blocks until it is closed or the run faults.
// clock, machine and state may be nil. A caller that needs the machine
// before the window opens, such as the human policy reading arrow keys,
// builds all three itself and the machine must schedule on clock.
func Run(driver step.Driver, cfg Config, clock *control.FrameClock, machine *control.Machine, state *control.State) error {
	if cfg.PaneSize <= 0 {
		cfg.PaneSize = 600
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 30
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if clock == nil {
		clock = control.NewFrameClock()
	}
	if state == nil {
		state = control.NewState()
	}
	if machine == nil {
		machine = control.NewMachine(state, clock, control.WithHoldDelay(cfg.HoldDelay), control.WithLogger(cfg.Logger))
	}

	w := int32(cfg.PaneSize*2 + gap*3)
	h := int32(cfg.PaneSize + gap*2 + statusBar)
	rl.InitWindow(w, h, cfg.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.FPS))
	rl.SetExitKey(rl.KeyQ)

	a := &App{
		cfg:     cfg,
		clock:   clock,
		machine: machine,
		input:   NewInput(),
		font:    rl.GetFontDefault(),
		log:     cfg.Logger,
	}

	renderers := make([]*render.Renderer, 0, 2)
	for _, v := range []render.View{render.ViewZero, render.ViewWorld} {
		p := NewPane(v.String(), cfg.PaneSize, cfg.PaneSize, a.font)
		a.panes = append(a.panes, p)
		renderers = append(renderers, paneRenderer(p.Rec, v, cfg.TrailSample))
	}
	defer func() {
		for _, p := range a.panes {
			p.Unload()
		}
	}()

	a.loop = rollout.New(driver, state, renderers,
		rollout.WithMaxSteps(cfg.MaxSteps),
		rollout.WithLogger(cfg.Logger))

	for !rl.WindowShouldClose() && a.err == nil {
		a.Update()
		a.Draw()
	}
	return a.err
}

// Update advances the control clock to the window time, applies input and
// ticks the rollout when its interval has elapsed.
func (a *App) Update() {
	now := time.Duration(rl.GetTime() * float64(time.Second))
	a.clock.AdvanceTo(now)

	for _, ev := range a.input.Poll() {
		a.machine.Handle(ev)
	}

	if now-a.lastTick < a.cfg.Interval {
		return
	}
	a.lastTick = now
	if err := a.loop.Tick(); err != nil {
		a.log.Error("window closed by stepper fault", zap.Error(err))
		a.err = err
	}
}

func (a *App) Draw() {
	for _, p := range a.panes {
		p.Flush()
	}

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	for i, p := range a.panes {
		p.Draw(float32(gap+i*(a.cfg.PaneSize+gap)), gap)
	}

	st := a.loop.State()
	status := rollout.Status{Steps: st.Steps, Action: st.Action, Obs: st.Obs, Done: st.Done}
	y := float32(a.cfg.PaneSize + gap*2)
	rl.DrawTextEx(a.font, status.String(), rl.NewVector2(gap, y), fontSize, 1, ColText)

	snap := a.loop.Control().Snapshot()
	hint := "p:pause  s:step (hold to run)  r:replay  t:trails  l:radials  q:quit"
	if snap.Paused && !st.Done.Terminal {
		hint = "PAUSED  " + hint
	}
	rl.DrawTextEx(a.font, hint, rl.NewVector2(gap, y+20), fontSize, 1, ColTextDim)
	rl.DrawTextEx(a.font, fmt.Sprintf("%d FPS", rl.GetFPS()), rl.NewVector2(float32(rl.GetScreenWidth()-70), y+20), fontSize, 1, ColAccent)
	rl.EndDrawing()
}

func paneRenderer(rec *render.Recording, v render.View, sample int) *render.Renderer {
	r := render.New(rec, v)
	if sample > 0 {
		r.Sample = sample
	}
	return r
}
