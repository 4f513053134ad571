package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/render"
	"github.com/san-kum/obsview/internal/rollout"
	"go.uber.org/zap"
)

const (
	PaneWidth  = 40
	PaneHeight = 20
)

var _ render.Canvas = (*Canvas)(nil)

type TickMsg time.Time

// Pane is one titled view of the run.
type Pane struct {
	Title  string
	Canvas *Canvas
}

// NewPanes builds the zero and world views on braille canvases of w x h
// cells, with their renderers in the same order.
func NewPanes(w, h int) ([]Pane, []*render.Renderer) {
	views := []render.View{render.ViewZero, render.ViewWorld}
	panes := make([]Pane, len(views))
	renderers := make([]*render.Renderer, len(views))
	for i, v := range views {
		c := NewCanvas(w, h)
		panes[i] = Pane{Title: v.String(), Canvas: c}
		renderers[i] = render.New(c, v)
	}
	return panes, renderers
}

// Model is the interactive terminal player. It ticks the rollout loop every
// interval and feeds key presses through the control machine.
type Model struct {
	loop     *rollout.Loop
	machine  *control.Machine
	clock    *TeaClock
	panes    []Pane
	keys     *keyTracker
	interval time.Duration
	title    string
	styles   styles
	log      *zap.Logger
	err      error
}

type Option func(*Model)

func WithTitle(s string) Option { return func(m *Model) { m.title = s } }

func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithTheme(name string) Option {
	return func(m *Model) { m.styles = newStyles(GetTheme(name)) }
}

// WithKeyTiming sets the synthesized release gap and the window in which a
// repeated command key is ignored.
func WithKeyTiming(gap, window time.Duration) Option {
	return func(m *Model) { m.keys = newKeyTracker(gap, window) }
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// NewModel wires a loop to a machine. The machine must schedule on clock.
func NewModel(loop *rollout.Loop, machine *control.Machine, clock *TeaClock, panes []Pane, opts ...Option) Model {
	m := Model{
		loop:     loop,
		machine:  machine,
		clock:    clock,
		panes:    panes,
		keys:     newKeyTracker(DefaultReleaseGap, DefaultRepeatWindow),
		interval: time.Second / 30,
		styles:   newStyles(ThemeDark),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Err is the stepper fault that ended the session, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances the run.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		ev, release := m.keys.press(key)
		m.machine.Handle(ev)
		return m, tea.Batch(release, m.clock.Drain())
	case releaseMsg:
		if ev, ok := m.keys.release(msg); ok {
			m.machine.Handle(ev)
		}
		return m, m.clock.Drain()
	case timerMsg:
		m.clock.Fire(msg.id)
		return m, m.clock.Drain()
	case tea.BlurMsg:
		m.keys.reset()
		m.machine.Handle(control.Event{Kind: control.FocusLost})
		return m, m.clock.Drain()
	case TickMsg:
		if err := m.loop.Tick(); err != nil {
			m.err = err
			m.log.Error("session ended by stepper fault", zap.Error(err))
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// View renders the panes side by side over the status line.
func (m Model) View() string {
	views := make([]string, len(m.panes))
	for i, p := range m.panes {
		body := m.styles.label.Render(p.Title) + "\n" + p.Canvas.Render()
		views[i] = m.styles.pane.Render(body)
	}

	st := m.loop.State()
	snap := m.loop.Control().Snapshot()
	status := rollout.Status{Steps: st.Steps, Action: st.Action, Obs: st.Obs, Done: st.Done}

	var s strings.Builder
	if m.title != "" {
		s.WriteString(m.styles.title.Render(m.title) + "\n")
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, views...) + "\n")
	s.WriteString(fmt.Sprintf("%s  %s\n", m.styles.badge(snap, st.Done), m.styles.flags(snap)))
	s.WriteString(m.styles.status.Render(status.String()) + "\n")
	if m.err != nil {
		s.WriteString(m.styles.err.Render(m.err.Error()) + "\n")
	}
	s.WriteString(m.styles.hint.Render("p:pause  s:step (hold to run)  r:replay  t:trails  l:radials  arrows:steer  q:quit"))
	return s.String()
}
