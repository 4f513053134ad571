package metrics

import (
	"math"

	"github.com/san-kum/obsview/internal/dynamo"
)

// ControlEffort is the mean of |throttle|+|steering| over frames that
// carry an action.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(f dynamo.Frame) {
	a := f.Action
	if math.IsNaN(a.Throttle) || math.IsNaN(a.Steering) {
		return
	}
	c.sum += math.Abs(a.Throttle) + math.Abs(a.Steering)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Heading is the player's accumulated heading change in radians.
type Heading struct {
	total float64
}

func NewHeading() *Heading { return &Heading{} }

func (h *Heading) Name() string { return "heading" }

func (h *Heading) Observe(f dynamo.Frame) { h.total += f.AngleDelta }

func (h *Heading) Value() float64 { return h.total }

func (h *Heading) Reset() { h.total = 0 }
