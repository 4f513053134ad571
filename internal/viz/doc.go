// Package viz is the interactive terminal player, built on Bubble Tea.
//
// Both views of a run are drawn side by side on braille canvases:
//
//   - [Canvas]: braille pixel canvas implementing render.Canvas
//   - [Model]: the tea.Model driving a rollout.Loop from frame ticks
//   - [TeaClock]: control timers delivered as tea messages
//
// # Key Bindings
//
//	P      - Pause/Resume
//	S      - Pause, then step once per tap; hold to keep stepping
//	R      - Replay from the initial condition
//	T      - Toggle trails
//	L      - Toggle radials
//	Arrows - Throttle and steer (human policy)
//	Q      - Quit
//
// Terminals do not report key release. A key counts as released when no
// auto-repeat press arrives within the release gap. Command keys pressed
// again inside the repeat window are treated as auto-repeat, so holding T
// toggles trails once.
package viz
