package control

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultHoldDelay is how long s must stay down while paused before
// stepping becomes continuous.
const DefaultHoldDelay = 200 * time.Millisecond

type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	FocusLost
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	case FocusLost:
		return "focus-lost"
	default:
		return "unknown"
	}
}

// Key names understood by the Machine. Letter keys match case-insensitively.
const (
	KeyTrails  = "t"
	KeyRadials = "l"
	KeyReplay  = "r"
	KeyPause   = "p"
	KeyStep    = "s"
	KeyUpArrow = "up"
	KeyDnArrow = "down"
	KeyLtArrow = "left"
	KeyRtArrow = "right"
)

// Event is one input notification. Repeat marks an auto-repeat key-down.
type Event struct {
	Kind   EventKind
	Key    string
	Repeat bool
}

// Arrows is the held state of the arrow keys.
type Arrows struct {
	Up, Down, Left, Right bool
}

// Machine applies input events to a State.
type Machine struct {
	mu sync.Mutex

	state *State
	sched Scheduler
	hold  time.Duration
	log   *zap.Logger

	stepDown bool
	timer    Timer
	gen      uint64
	arrows   Arrows
}

type Option func(*Machine)

func WithHoldDelay(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.hold = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMachine returns a machine over state. A nil sched uses RealClock, whose
// callbacks run on their own goroutine.
func NewMachine(state *State, sched Scheduler, opts ...Option) *Machine {
	m := &Machine{
		state: state,
		sched: sched,
		hold:  DefaultHoldDelay,
		log:   zap.NewNop(),
	}
	if m.sched == nil {
		m.sched = RealClock{}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() *State { return m.state }

func (m *Machine) Arrows() Arrows {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arrows
}

// Handle applies one event.
func (m *Machine) Handle(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(ev.Key)
	switch ev.Kind {
	case FocusLost:
		m.arrows = Arrows{}
		m.clearStepLocked()
		m.log.Debug("focus lost, input cleared")
	case KeyDown:
		if m.setArrow(key, true) {
			return
		}
		if ev.Repeat {
			return
		}
		m.keyDown(key)
	case KeyUp:
		if m.setArrow(key, false) {
			return
		}
		if key == KeyStep {
			m.stepDown = false
			m.cancelLocked()
			m.state.update(func(s *State) { s.stepHold = false })
		}
	}
}

func (m *Machine) keyDown(key string) {
	switch key {
	case KeyTrails:
		m.state.update(func(s *State) { s.trails = !s.trails })
	case KeyRadials:
		m.state.update(func(s *State) { s.radials = !s.radials })
	case KeyReplay:
		m.clearStepLocked()
		m.state.update(func(s *State) { s.replay = true })
		m.log.Debug("replay requested")
	case KeyPause:
		if m.state.Snapshot().Done {
			return
		}
		m.clearStepLocked()
		m.state.update(func(s *State) { s.paused = !s.paused })
	case KeyStep:
		snap := m.state.Snapshot()
		switch {
		case snap.Done:
		case !snap.Paused:
			m.clearStepLocked()
			m.state.SetPaused(true)
		default:
			m.stepDown = true
			m.state.update(func(s *State) {
				s.stepOnce = true
				s.stepHold = false
			})
			m.armLocked()
		}
	}
}

func (m *Machine) setArrow(key string, down bool) bool {
	switch key {
	case KeyUpArrow:
		m.arrows.Up = down
	case KeyDnArrow:
		m.arrows.Down = down
	case KeyLtArrow:
		m.arrows.Left = down
	case KeyRtArrow:
		m.arrows.Right = down
	default:
		return false
	}
	return true
}

func (m *Machine) armLocked() {
	m.cancelLocked()
	gen := m.gen
	m.timer = m.sched.AfterFunc(m.hold, func() { m.holdFired(gen) })
}

// clearStepLocked drops the held step key, any pending single step and the
// hold timer.
func (m *Machine) clearStepLocked() {
	m.stepDown = false
	m.cancelLocked()
	m.state.update(func(s *State) {
		s.stepOnce = false
		s.stepHold = false
	})
}

func (m *Machine) cancelLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) holdFired(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || !m.stepDown {
		return
	}
	m.timer = nil
	m.state.update(func(s *State) {
		if !s.done && s.paused {
			s.stepHold = true
		}
	})
	m.log.Debug("step hold engaged")
}
