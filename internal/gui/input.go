package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/obsview/internal/control"
)

// keyPoller is the slice of raylib input state the player reads.
type keyPoller interface {
	IsKeyPressed(key int32) bool
	IsKeyReleased(key int32) bool
	IsWindowFocused() bool
}

type rlPoller struct{}

func (rlPoller) IsKeyPressed(key int32) bool  { return rl.IsKeyPressed(key) }
func (rlPoller) IsKeyReleased(key int32) bool { return rl.IsKeyReleased(key) }
func (rlPoller) IsWindowFocused() bool        { return rl.IsWindowFocused() }

var keyNames = []struct {
	code int32
	name string
}{
	{rl.KeyT, control.KeyTrails},
	{rl.KeyL, control.KeyRadials},
	{rl.KeyR, control.KeyReplay},
	{rl.KeyP, control.KeyPause},
	{rl.KeyS, control.KeyStep},
	{rl.KeyUp, control.KeyUpArrow},
	{rl.KeyDown, control.KeyDnArrow},
	{rl.KeyLeft, control.KeyLtArrow},
	{rl.KeyRight, control.KeyRtArrow},
}

// Input turns per-frame key state into control events.
type Input struct {
	poller  keyPoller
	focused bool
}

func NewInput() *Input {
	return &Input{poller: rlPoller{}, focused: true}
}

// Poll returns the events since the previous frame: presses, then
// releases, then focus loss.
func (in *Input) Poll() []control.Event {
	var events []control.Event
	for _, k := range keyNames {
		if in.poller.IsKeyPressed(k.code) {
			events = append(events, control.Event{Kind: control.KeyDown, Key: k.name})
		}
	}
	for _, k := range keyNames {
		if in.poller.IsKeyReleased(k.code) {
			events = append(events, control.Event{Kind: control.KeyUp, Key: k.name})
		}
	}

	focused := in.poller.IsWindowFocused()
	if in.focused && !focused {
		events = append(events, control.Event{Kind: control.FocusLost})
	}
	in.focused = focused
	return events
}
