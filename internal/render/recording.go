package render

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/san-kum/obsview/internal/geom"
)

type OpKind int

const (
	OpClear OpKind = iota
	OpCircle
	OpRect
	OpPath
	OpStrokeRect
	OpLine
	OpText
)

// Op is one recorded draw call. Points are in device pixels, after the
// transform that was current when the call was made.
type Op struct {
	Kind   OpKind
	Points []geom.Point
	// Radius is scaled by the transform, Width is the stroke width.
	Radius   float64
	Width    float64
	Text     string
	Align    Align
	Baseline Baseline
	Color    color.Color
}

// Recording is a Canvas that keeps a list of draw calls instead of pixels.
// Headless rollouts draw into one and tests inspect it.
type Recording struct {
	W, H float64
	Ops  []Op

	// Discard drops draw calls while still tracking the transform stack.
	Discard bool

	m      gg.Matrix
	stack  []gg.Matrix
	fill   color.Color
	stroke color.Color
	width  float64
}

func NewRecording(w, h float64) *Recording {
	return &Recording{W: w, H: h, m: gg.Identity(), fill: color.Black, stroke: color.Black, width: 1}
}

func (r *Recording) Size() (float64, float64) { return r.W, r.H }

// Depth is the number of unmatched Save calls.
func (r *Recording) Depth() int { return len(r.stack) }

func (r *Recording) Transform() gg.Matrix { return r.m }

func (r *Recording) Reset() {
	r.Ops = r.Ops[:0]
}

// Count returns the number of recorded ops of kind k.
func (r *Recording) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Find returns the recorded ops of kind k drawn in color c.
func (r *Recording) Find(k OpKind, c color.Color) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == k && sameColor(op.Color, c) {
			out = append(out, op)
		}
	}
	return out
}

func (r *Recording) add(op Op) {
	if r.Discard {
		return
	}
	r.Ops = append(r.Ops, op)
}

func (r *Recording) pt(x, y float64) geom.Point {
	return r.m.TransformPoint(geom.Point{X: x, Y: y})
}

func (r *Recording) ClearRect(x, y, w, h float64) {
	r.add(Op{Kind: OpClear, Points: []geom.Point{r.pt(x, y), r.pt(x+w, y+h)}})
}

func (r *Recording) SetFill(c color.Color) { r.fill = c }

func (r *Recording) SetStroke(c color.Color, width float64) {
	r.stroke = c
	r.width = width
}

func (r *Recording) FillCircle(x, y, radius float64) {
	r.add(Op{Kind: OpCircle, Points: []geom.Point{r.pt(x, y)}, Radius: radius * r.scale(), Color: r.fill})
}

func (r *Recording) FillRect(x, y, w, h float64) {
	r.add(Op{Kind: OpRect, Points: r.corners(x, y, w, h), Color: r.fill})
}

func (r *Recording) FillPath(pts []geom.Point) {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = r.pt(p.X, p.Y)
	}
	r.add(Op{Kind: OpPath, Points: out, Color: r.fill})
}

func (r *Recording) StrokeRect(x, y, w, h float64) {
	r.add(Op{Kind: OpStrokeRect, Points: r.corners(x, y, w, h), Width: r.width, Color: r.stroke})
}

func (r *Recording) StrokeLine(x1, y1, x2, y2 float64) {
	r.add(Op{Kind: OpLine, Points: []geom.Point{r.pt(x1, y1), r.pt(x2, y2)}, Width: r.width, Color: r.stroke})
}

func (r *Recording) FillText(s string, x, y float64, align Align, base Baseline) {
	r.add(Op{Kind: OpText, Points: []geom.Point{r.pt(x, y)}, Text: s, Align: align, Baseline: base, Color: r.fill})
}

func (r *Recording) Save() {
	r.stack = append(r.stack, r.m)
}

func (r *Recording) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.m = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recording) Translate(x, y float64) { r.m = r.m.Multiply(gg.Translate(x, y)) }
func (r *Recording) Rotate(angle float64)   { r.m = r.m.Multiply(gg.Rotate(angle)) }
func (r *Recording) Scale(sx, sy float64)   { r.m = r.m.Multiply(gg.Scale(sx, sy)) }

func (r *Recording) scale() float64 {
	return math.Sqrt(math.Abs(r.m.A*r.m.E - r.m.B*r.m.D))
}

func (r *Recording) corners(x, y, w, h float64) []geom.Point {
	return []geom.Point{r.pt(x, y), r.pt(x+w, y), r.pt(x+w, y+h), r.pt(x, y+h)}
}

func sameColor(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
