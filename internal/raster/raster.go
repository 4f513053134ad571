// Package raster implements render.Canvas on a gg software context, for
// PNG grid sessions and GIF export.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/san-kum/obsview/internal/geom"
	"github.com/san-kum/obsview/internal/render"
	"golang.org/x/image/font/gofont/goregular"
)

const DefaultFontSize = 13.0

// Canvas draws into an RGBA image. Draw errors are sticky and reported by
// Err so a whole frame can be checked once.
type Canvas struct {
	dc         *gg.Context
	face       text.Face
	background gg.RGBA

	fill        color.Color
	stroke      color.Color
	strokeWidth float64

	err error
}

type Option func(*Canvas)

// WithBackground sets the color ClearRect paints.
func WithBackground(c gg.RGBA) Option {
	return func(cv *Canvas) { cv.background = c }
}

func New(width, height int, opts ...Option) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", width, height)
	}
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("raster: load font: %w", err)
	}

	c := &Canvas{
		dc:          gg.NewContext(width, height),
		face:        source.Face(DefaultFontSize),
		background:  gg.Hex("#000000"),
		fill:        color.White,
		stroke:      color.White,
		strokeWidth: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.dc.SetFont(c.face)
	c.dc.ClearWithColor(c.background)
	return c, nil
}

func (c *Canvas) Size() (float64, float64) {
	return float64(c.dc.Width()), float64(c.dc.Height())
}

func (c *Canvas) Err() error { return c.err }

func (c *Canvas) Image() image.Image {
	c.check(c.dc.FlushGPU())
	return c.dc.Image()
}

func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

func (c *Canvas) Close() error { return c.dc.Close() }

func (c *Canvas) check(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

func (c *Canvas) ClearRect(x, y, w, h float64) {
	c.dc.SetColor(c.background.Color())
	c.dc.DrawRectangle(x, y, w, h)
	c.check(c.dc.Fill())
}

func (c *Canvas) SetFill(col color.Color) { c.fill = col }

func (c *Canvas) SetStroke(col color.Color, width float64) {
	c.stroke = col
	c.strokeWidth = width
}

func (c *Canvas) FillCircle(x, y, r float64) {
	c.dc.SetColor(c.fill)
	c.dc.DrawCircle(x, y, r)
	c.check(c.dc.Fill())
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.dc.SetColor(c.fill)
	c.dc.DrawRectangle(x, y, w, h)
	c.check(c.dc.Fill())
}

func (c *Canvas) FillPath(pts []geom.Point) {
	if len(pts) < 3 {
		return
	}
	c.dc.SetColor(c.fill)
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.dc.ClosePath()
	c.check(c.dc.Fill())
}

func (c *Canvas) StrokeRect(x, y, w, h float64) {
	c.dc.SetColor(c.stroke)
	c.dc.SetLineWidth(c.strokeWidth)
	c.dc.DrawRectangle(x, y, w, h)
	c.check(c.dc.Stroke())
}

func (c *Canvas) StrokeLine(x1, y1, x2, y2 float64) {
	c.dc.SetColor(c.stroke)
	c.dc.SetLineWidth(c.strokeWidth)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.check(c.dc.Stroke())
}

// FillText places text at the transformed anchor point. Glyphs are drawn
// unrotated at device scale.
func (c *Canvas) FillText(s string, x, y float64, align render.Align, base render.Baseline) {
	dx, dy := c.dc.TransformPoint(x, y)
	w, h := c.dc.MeasureString(s)

	switch align {
	case render.AlignCenter:
		dx -= w / 2
	case render.AlignRight:
		dx -= w
	}
	switch base {
	case render.BaselineTop:
		dy += h
	case render.BaselineMiddle:
		dy += h / 2
	case render.BaselineBottom:
		dy -= h / 4
	}

	c.dc.SetColor(c.fill)
	c.dc.DrawString(s, dx, dy)
}

func (c *Canvas) Save()    { c.dc.Push() }
func (c *Canvas) Restore() { c.dc.Pop() }

func (c *Canvas) Translate(x, y float64) { c.dc.Translate(x, y) }
func (c *Canvas) Rotate(angle float64)   { c.dc.Rotate(angle) }
func (c *Canvas) Scale(sx, sy float64)   { c.dc.Scale(sx, sy) }

func (c *Canvas) Transform() gg.Matrix { return c.dc.GetTransform() }
