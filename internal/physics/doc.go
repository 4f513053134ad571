// Package physics provides the built-in ship model and a local stepper.
//
// The model is written in the player frame: the player sits at the origin
// heading along +y, and the state is the waypoint position and the player
// velocity relative to it. [Ship] implements [dynamo.System] so any
// [dynamo.Integrator] can advance it; [Local] wraps it as a
// [dynamo.Stepper] and rotates the frame by the steering command after each
// integration step.
//
// Heading changes are reported clockwise-positive, the canvas rotation
// convention, so a world view rotated by the accumulated angle keeps the
// waypoint still.
package physics
