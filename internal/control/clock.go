package control

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback. Stop is idempotent and safe after the
// callback has run.
type Timer interface {
	Stop()
}

// Scheduler arms single-shot timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules on the runtime timer heap.
type RealClock struct{}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() { r.t.Stop() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

// FrameClock is a clock that only moves when told to. Frame-driven hosts
// advance it by the frame time; tests advance it by hand. Due callbacks run
// on the advancing goroutine.
type FrameClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*frameTimer
}

type frameTimer struct {
	clock    *FrameClock
	deadline time.Duration
	seq      uint64
	f        func()
	stopped  bool
}

func NewFrameClock() *FrameClock {
	return &FrameClock{}
}

func (c *FrameClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FrameClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &frameTimer{clock: c, deadline: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *frameTimer) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}

// Advance moves the clock forward by d and runs every timer that fell due,
// earliest first.
func (c *FrameClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	c.AdvanceTo(target)
}

// AdvanceTo moves the clock to now. Moving backwards is a no-op.
func (c *FrameClock) AdvanceTo(now time.Duration) {
	c.mu.Lock()
	if now < c.now {
		c.mu.Unlock()
		return
	}
	c.now = now

	var due []*frameTimer
	pending := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case t.deadline <= now:
			t.stopped = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of armed timers.
func (c *FrameClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
