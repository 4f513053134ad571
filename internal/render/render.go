// Package render draws observations onto a Canvas in the zero-centered view
// or the waypoint-anchored world view, plus the grid overlays.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/geom"
)

const (
	// SkipEvery is the trail sampling period: with trails on, only every
	// SkipEvery-th draw reaches the canvas.
	SkipEvery = 10

	TextPad     = 6.0
	TopTextBand = 20.0

	playerW     = 2.0
	playerH     = 5.0
	waypointR   = 2.0
	steerR      = 1.0
	steerOffset = 10.0
	flameTop    = 5.0
	flameHalfW  = 3.0
	flameScale  = 10.0
	radialStep  = 45
	radialReach = 0.99
)

type View int

const (
	ViewZero View = iota
	ViewWorld
)

func (v View) String() string {
	if v == ViewWorld {
		return "world"
	}
	return "zero"
}

func ParseView(s string) (View, error) {
	switch strings.ToLower(s) {
	case "zero":
		return ViewZero, nil
	case "world":
		return ViewWorld, nil
	default:
		return ViewZero, fmt.Errorf("view must be 'zero' or 'world', got %q", s)
	}
}

type Trail int

const (
	TrailOff Trail = iota
	TrailOn
	// TrailNoSkip accumulates like TrailOn but draws every call.
	TrailNoSkip
)

type Renderer struct {
	View    View
	Palette Palette
	Radials bool
	// Sample is the TrailOn draw interval.
	Sample int

	canvas Canvas
	skip   int
}

func New(c Canvas, view View) *Renderer {
	return &Renderer{View: view, Palette: DefaultPalette(), Sample: SkipEvery, canvas: c}
}

func (r *Renderer) Canvas() Canvas { return r.canvas }

// Viewport is derived from the full canvas size, also while a tile
// transform is active.
func (r *Renderer) Viewport() geom.Viewport {
	w, h := r.canvas.Size()
	return geom.NewViewport(int(w), int(h))
}

// Reset restarts the trail sampling counter.
func (r *Renderer) Reset() {
	r.skip = 0
}

// Clear wipes the whole canvas.
func (r *Renderer) Clear() {
	w, h := r.canvas.Size()
	r.canvas.ClearRect(0, 0, w, h)
}

// Draw renders one frame. Without a trail the canvas is cleared first; with
// TrailOn only every Sample-th call draws.
func (r *Renderer) Draw(obs dynamo.Observation, action dynamo.Action, pose geom.Pose, trail Trail) {
	switch trail {
	case TrailOff:
		r.Clear()
	case TrailOn:
		r.skip++
		n := r.Sample
		if n <= 0 {
			n = SkipEvery
		}
		if r.skip%n != 0 {
			return
		}
	}

	if r.View == ViewZero {
		r.drawCore(obs, action)
		return
	}

	env := geom.Compose(r.Viewport(), pose, obs)
	c := r.canvas
	c.Save()
	c.Translate(env.Offset.X, env.Offset.Y)
	c.Translate(env.Center.X, env.Center.Y)
	c.Rotate(env.Angle)
	c.Translate(-env.Center.X, -env.Center.Y)
	r.drawCore(obs, action)
	c.Restore()
}

// DrawTile renders obs scaled into rect with no action, always accumulating.
func (r *Renderer) DrawTile(obs dynamo.Observation, pose geom.Pose, rect Rect) {
	w, h := r.canvas.Size()
	c := r.canvas
	c.Save()
	c.Translate(rect.X, rect.Y)
	c.Scale(rect.W/w, rect.H/h)
	r.Draw(obs, dynamo.Action{}, pose, TrailNoSkip)
	c.Restore()
}

func (r *Renderer) drawCore(obs dynamo.Observation, action dynamo.Action) {
	vp := r.Viewport()
	c := r.canvas
	center := vp.Center()

	if r.Radials {
		c.SetStroke(r.Palette.Radial, 1)
		for deg := 0; deg < 360; deg += radialStep {
			rad := float64(deg) * math.Pi / 180
			c.StrokeLine(center.X, center.Y,
				center.X+math.Cos(rad)*vp.ScaleX*radialReach,
				center.Y-math.Sin(rad)*vp.ScaleY*radialReach)
		}
	}

	wp := vp.Waypoint(obs)
	c.SetFill(r.Palette.Waypoint)
	c.FillCircle(wp.X, wp.Y, waypointR)

	c.SetFill(r.Palette.Player)
	c.FillRect(center.X-playerW/2, center.Y-playerH/2, playerW, playerH)

	if action.Throttle > 0 {
		c.SetFill(r.Palette.Flame)
		c.FillPath([]geom.Point{
			{X: center.X - flameHalfW, Y: center.Y + flameTop},
			{X: center.X + flameHalfW, Y: center.Y + flameTop},
			{X: center.X, Y: center.Y + flameTop + action.Throttle*flameScale},
		})
	}

	switch {
	case action.Steering < 0:
		c.SetFill(r.Palette.Steer)
		c.FillCircle(center.X+steerOffset, center.Y, steerR)
	case action.Steering > 0:
		c.SetFill(r.Palette.Steer)
		c.FillCircle(center.X-steerOffset, center.Y, steerR)
	}
}

// Rects splits the canvas into an n by n grid, row-major.
func (r *Renderer) Rects(n int) []Rect {
	if n <= 0 {
		return nil
	}
	w, h := r.canvas.Size()
	cw, ch := w/float64(n), h/float64(n)
	rects := make([]Rect, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			rects = append(rects, Rect{X: float64(col) * cw, Y: float64(row) * ch, W: cw, H: ch})
		}
	}
	return rects
}

func (r *Renderer) DrawGridBorders(n int) {
	c := r.canvas
	c.Save()
	c.SetStroke(r.Palette.Border, 1)
	for _, rect := range r.Rects(n) {
		c.StrokeRect(rect.X, rect.Y, rect.W, rect.H)
	}
	c.Restore()
}

// DrawTileText writes text in the bottom-left corner of rect.
func (r *Renderer) DrawTileText(text string, rect Rect) {
	c := r.canvas
	c.Save()
	c.SetFill(r.Palette.Text)
	c.FillText(text, rect.X+TextPad, rect.Y+rect.H-TextPad, AlignLeft, BaselineBottom)
	c.Restore()
}

// DrawTopText clears the top band of the canvas and writes text into it.
func (r *Renderer) DrawTopText(text string) {
	w, _ := r.canvas.Size()
	c := r.canvas
	c.Save()
	c.ClearRect(0, 0, w, TopTextBand)
	c.SetFill(r.Palette.Text)
	c.FillText(text, TextPad, TextPad, AlignLeft, BaselineTop)
	c.Restore()
}
