// Package dynamo provides the core value types shared by the playback engine.
//
// The package defines the data that flows between the simulation, the
// playback records and the renderer:
//
//   - [Observation]: waypoint position and player velocity in the player frame
//   - [Action]: throttle and steering command produced by a [Policy]
//   - [Frame]: one tick (observation, action, heading change, termination)
//   - [Stepper]: the physics evaluator that advances an observation
//   - [System] and [Integrator]: ODE primitives used by the built-in stepper
//
// Values are nominally in [-1, 1] but are never clamped. Only the file
// parsers validate shape.
package dynamo
