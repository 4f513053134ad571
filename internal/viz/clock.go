package viz

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/obsview/internal/control"
)

// timerMsg fires a TeaClock callback on the update goroutine.
type timerMsg struct{ id uint64 }

// TeaClock is a control.Scheduler whose callbacks run inside Update, so
// control timers never race the frame loop. Armed timers become tea.Tick
// commands collected by Drain.
type TeaClock struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]func()
	cmds    []tea.Cmd
}

func NewTeaClock() *TeaClock {
	return &TeaClock{pending: make(map[uint64]func())}
}

type teaTimer struct {
	clock *TeaClock
	id    uint64
}

func (t teaTimer) Stop() {
	t.clock.mu.Lock()
	delete(t.clock.pending, t.id)
	t.clock.mu.Unlock()
}

func (c *TeaClock) AfterFunc(d time.Duration, f func()) control.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	id := c.next
	c.pending[id] = f
	c.cmds = append(c.cmds, tea.Tick(d, func(time.Time) tea.Msg { return timerMsg{id: id} }))
	return teaTimer{clock: c, id: id}
}

// Drain returns the commands for timers armed since the last call.
func (c *TeaClock) Drain() tea.Cmd {
	c.mu.Lock()
	cmds := c.cmds
	c.cmds = nil
	c.mu.Unlock()
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Fire runs the callback for id unless it was stopped.
func (c *TeaClock) Fire(id uint64) bool {
	c.mu.Lock()
	f, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if ok {
		f()
	}
	return ok
}

// Pending is the number of armed, unfired timers.
func (c *TeaClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
