package render

import (
	"image/color"

	"github.com/san-kum/obsview/internal/geom"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Baseline int

const (
	BaselineAlphabetic Baseline = iota
	BaselineTop
	BaselineMiddle
	BaselineBottom
)

// Canvas is the set of 2D drawing primitives the renderer needs. Coordinates
// go through the current transform, which Save and Restore push and pop.
// Rotate follows the canvas convention: positive angles turn +x toward +y.
type Canvas interface {
	Size() (w, h float64)
	ClearRect(x, y, w, h float64)

	SetFill(c color.Color)
	SetStroke(c color.Color, width float64)

	FillCircle(x, y, r float64)
	FillRect(x, y, w, h float64)
	FillPath(pts []geom.Point)
	StrokeRect(x, y, w, h float64)
	StrokeLine(x1, y1, x2, y2 float64)
	FillText(s string, x, y float64, align Align, base Baseline)

	Save()
	Restore()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(sx, sy float64)
}

// Rect is a tile in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}
