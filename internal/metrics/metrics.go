// Package metrics summarizes recorded episodes frame by frame.
package metrics

import "github.com/san-kum/obsview/internal/dynamo"

// Metric accumulates one scalar over the frames of an episode.
type Metric interface {
	Name() string
	Observe(f dynamo.Frame)
	Value() float64
	Reset()
}

// Result is one named metric value.
type Result struct {
	Name  string
	Value float64
}

// Defaults returns the metrics reported by the CLI.
func Defaults() []Metric {
	return []Metric{
		NewControlEffort(),
		NewClosest(),
		NewSettled(DefaultSettleRadius),
		NewHeading(),
	}
}

// Summarize resets each metric, feeds it every frame after the initial one
// and collects the values in order.
func Summarize(frames []dynamo.Frame, ms ...Metric) []Result {
	if len(ms) == 0 {
		ms = Defaults()
	}
	out := make([]Result, 0, len(ms))
	for _, m := range ms {
		m.Reset()
		if len(frames) > 1 {
			for _, f := range frames[1:] {
				m.Observe(f)
			}
		}
		out = append(out, Result{Name: m.Name(), Value: m.Value()})
	}
	return out
}
