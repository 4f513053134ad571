package viz

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/obsview/internal/control"
)

// DefaultReleaseGap is how long a key may go without a repeat before it
// counts as released. Terminals only report presses, so held keys are seen
// as a stream of auto-repeat presses.
const DefaultReleaseGap = 120 * time.Millisecond

// DefaultRepeatWindow covers the OS delay before auto-repeat starts. A
// command key pressed again within it is reported as a repeat even after
// its release was synthesized.
const DefaultRepeatWindow = 600 * time.Millisecond

type releaseMsg struct {
	key string
	seq uint64
}

// keyTracker turns terminal key presses into down, repeat and up events.
type keyTracker struct {
	gap    time.Duration
	window time.Duration
	now    func() time.Time
	seq    uint64
	held   map[string]uint64
	last   map[string]time.Time
}

func newKeyTracker(gap, window time.Duration) *keyTracker {
	if gap <= 0 {
		gap = DefaultReleaseGap
	}
	if window <= 0 {
		window = DefaultRepeatWindow
	}
	return &keyTracker{
		gap:    gap,
		window: window,
		now:    time.Now,
		held:   make(map[string]uint64),
		last:   make(map[string]time.Time),
	}
}

// releaseTracked keys act on release, so they keep the short gap.
func releaseTracked(key string) bool {
	switch strings.ToLower(key) {
	case control.KeyStep, control.KeyUpArrow, control.KeyDnArrow, control.KeyLtArrow, control.KeyRtArrow:
		return true
	}
	return false
}

// press records a press of key and returns its event and the command that
// will report its release.
func (k *keyTracker) press(key string) (control.Event, tea.Cmd) {
	now := k.now()
	_, repeat := k.held[key]
	if !repeat && !releaseTracked(key) {
		if t, ok := k.last[key]; ok && now.Sub(t) < k.window {
			repeat = true
		}
	}
	k.last[key] = now
	k.seq++
	seq := k.seq
	k.held[key] = seq
	ev := control.Event{Kind: control.KeyDown, Key: key, Repeat: repeat}
	return ev, tea.Tick(k.gap, func(time.Time) tea.Msg { return releaseMsg{key: key, seq: seq} })
}

// release reports whether msg is the latest release for its key.
func (k *keyTracker) release(msg releaseMsg) (control.Event, bool) {
	if k.held[msg.key] != msg.seq {
		return control.Event{}, false
	}
	delete(k.held, msg.key)
	return control.Event{Kind: control.KeyUp, Key: msg.key}, true
}

func (k *keyTracker) reset() {
	clear(k.held)
	clear(k.last)
}
