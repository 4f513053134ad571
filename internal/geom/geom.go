// Package geom converts between normalized simulation coordinates and canvas
// pixels and composes the observer-view transform.
package geom

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/san-kum/obsview/internal/dynamo"
)

type Point = gg.Point

// Viewport maps normalized [-1, 1] coordinates onto a pixel rectangle of
// 2*ScaleX by 2*ScaleY. Normalized y points up, pixel y points down.
type Viewport struct {
	ScaleX, ScaleY float64
}

func NewViewport(width, height int) Viewport {
	return Viewport{ScaleX: float64(width) / 2, ScaleY: float64(height) / 2}
}

func (v Viewport) Center() Point {
	return Point{X: v.ScaleX, Y: v.ScaleY}
}

func (v Viewport) ToPixel(x, y float64) Point {
	return Point{X: v.ScaleX + x*v.ScaleX, Y: v.ScaleY - y*v.ScaleY}
}

func (v Viewport) FromPixel(p Point) (x, y float64) {
	return (p.X - v.ScaleX) / v.ScaleX, (v.ScaleY - p.Y) / v.ScaleY
}

// Waypoint returns the pixel position of the observation's waypoint.
func (v Viewport) Waypoint(obs dynamo.Observation) Point {
	return v.ToPixel(obs.Wp1X, obs.Wp1Y)
}

// RotateAbout rotates p about c by angle radians using the canvas rotation
// convention (x' = cx + dx cos - dy sin, y' = cy + dx sin + dy cos).
func RotateAbout(p, c Point, angle float64) Point {
	if angle == 0 {
		return p
	}
	sin, cos := math.Sincos(angle)
	dx, dy := p.X-c.X, p.Y-c.Y
	return Point{
		X: c.X + dx*cos - dy*sin,
		Y: c.Y + dx*sin + dy*cos,
	}
}

// Pose is the world-view state of one run: the heading accumulated since the
// run started and the pixel the waypoint occupied at step 0.
type Pose struct {
	AngleTotal float64
	Anchor     Point
}

// NewPose anchors a run at the initial observation's waypoint.
func NewPose(v Viewport, initial dynamo.Observation) Pose {
	return Pose{Anchor: v.Waypoint(initial)}
}

// Advance adds one tick of heading change. The total is never wrapped.
func (p *Pose) Advance(angleDelta float64) {
	p.AngleTotal += angleDelta
}

// Envelope is the per-frame world-view transform, applied in order:
// translate(Offset), translate(Center), rotate(Angle), translate(-Center).
type Envelope struct {
	Offset Point
	Center Point
	Angle  float64
}

// Compose computes the envelope that keeps the waypoint on pose.Anchor.
func Compose(v Viewport, pose Pose, obs dynamo.Observation) Envelope {
	c := v.Center()
	rotated := RotateAbout(v.Waypoint(obs), c, pose.AngleTotal)
	return Envelope{
		Offset: Point{X: pose.Anchor.X - rotated.X, Y: pose.Anchor.Y - rotated.Y},
		Center: c,
		Angle:  pose.AngleTotal,
	}
}

func (e Envelope) Matrix() gg.Matrix {
	return gg.Translate(e.Offset.X, e.Offset.Y).
		Multiply(gg.Translate(e.Center.X, e.Center.Y)).
		Multiply(gg.Rotate(e.Angle)).
		Multiply(gg.Translate(-e.Center.X, -e.Center.Y))
}
