// Package recorder runs live episodes headless and writes them in the
// playback format.
package recorder

import (
	"context"
	"fmt"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/step"
)

// Episode is one recorded rollout.
type Episode struct {
	ID     string
	Seed   int64
	Frames []dynamo.Frame
	Done   dynamo.Done
}

// Steps is the number of steps taken, one less than the frame count.
func (e *Episode) Steps() int {
	if len(e.Frames) == 0 {
		return 0
	}
	return len(e.Frames) - 1
}

// Record drives d until it reports done or maxSteps steps have been taken.
// Frame 0 is the initial observation with no action, so the result replays
// through step.Replay the same way it ran live.
func Record(ctx context.Context, d step.Driver, maxSteps int) ([]dynamo.Frame, dynamo.Done, error) {
	if maxSteps <= 0 {
		maxSteps = dynamo.MaxSteps
	}

	frames := make([]dynamo.Frame, 0, 256)
	frames = append(frames, dynamo.Frame{Obs: d.Initial, Action: dynamo.NoAction})

	obs := d.Initial
	for steps := 0; steps < maxSteps; steps++ {
		if err := ctx.Err(); err != nil {
			return frames, dynamo.Done{}, err
		}

		res, err := d.Step(obs, steps)
		if err != nil {
			return frames, dynamo.Terminated(dynamo.ReasonError), fmt.Errorf("record step %d: %w", steps, err)
		}
		obs = res.NextObs

		frame := dynamo.Frame{Obs: res.NextObs, Action: res.Action, AngleDelta: res.AngleDelta, Done: res.Done}
		if !frame.Done.Terminal && steps+1 >= maxSteps {
			frame.Done = dynamo.Terminated(dynamo.ReasonMaxSteps)
		}
		frames = append(frames, frame)
		if frame.Done.Terminal {
			return frames, frame.Done, nil
		}
	}
	return frames, dynamo.Terminated(dynamo.ReasonMaxSteps), nil
}
