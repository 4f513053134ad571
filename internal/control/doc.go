// Package control turns key events into playback state.
//
// [State] holds the orthogonal playback flags (paused, step once, step hold,
// trails, radials, replay, done). A [Machine] mutates it from [Event]s and
// arms the step-hold timer through a [Scheduler]; a rollout loop reads it
// once per tick.
//
// # Keys
//
//	t       toggle trails
//	l       toggle radials
//	r       replay from the first frame
//	p       pause / resume
//	s       pause; while paused, step once, hold to step continuously
//	arrows  held state for the human policy
//
// # Clocks
//
//   - [RealClock]: time.AfterFunc, callbacks on their own goroutine
//   - [FrameClock]: fires timers when the host advances it, once per frame
//
// A Scheduler must never run f from inside AfterFunc.
package control
