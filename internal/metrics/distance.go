package metrics

import (
	"math"

	"github.com/san-kum/obsview/internal/dynamo"
)

// DefaultSettleRadius is the waypoint distance counted as settled.
const DefaultSettleRadius = 0.1

func distance(o dynamo.Observation) float64 {
	return math.Hypot(o.Wp1X, o.Wp1Y)
}

// Closest is the smallest waypoint distance seen. It is NaN before any
// frame.
type Closest struct {
	min  float64
	seen bool
}

func NewClosest() *Closest { return &Closest{} }

func (c *Closest) Name() string { return "closest" }

func (c *Closest) Observe(f dynamo.Frame) {
	d := distance(f.Obs)
	if !c.seen || d < c.min {
		c.min = d
		c.seen = true
	}
}

func (c *Closest) Value() float64 {
	if !c.seen {
		return math.NaN()
	}
	return c.min
}

func (c *Closest) Reset() {
	c.min = 0
	c.seen = false
}

// Settled is the fraction of frames with the waypoint within radius.
type Settled struct {
	radius  float64
	inside  int
	samples int
}

func NewSettled(radius float64) *Settled {
	return &Settled{radius: radius}
}

func (s *Settled) Name() string { return "settled" }

func (s *Settled) Observe(f dynamo.Frame) {
	s.samples++
	if distance(f.Obs) <= s.radius {
		s.inside++
	}
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.inside) / float64(s.samples)
}

func (s *Settled) Reset() {
	s.inside = 0
	s.samples = 0
}
