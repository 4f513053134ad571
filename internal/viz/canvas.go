package viz

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/gg"
	"github.com/san-kum/obsview/internal/geom"
	"github.com/san-kum/obsview/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille render.Canvas. Its pixel size is (Width*2) x
// (Height*4). Each cell keeps the color of the last dot drawn into it, and
// text replaces whole cells.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	colors [][]color.Color
	text   [][]rune

	m      gg.Matrix
	stack  []gg.Matrix
	fill   color.Color
	stroke color.Color
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		colors: make([][]color.Color, h),
		text:   make([][]rune, h),
		m:      gg.Identity(),
		fill:   color.White,
		stroke: color.White,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.colors[i] = make([]color.Color, w)
		c.text[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) {
	c.setColor(x, y, nil)
}

func (c *Canvas) setColor(x, y int, col color.Color) {
	if x < 0 || y < 0 {
		return
	}

	row, cell := y/4, x/2
	if cell >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][cell] |= rune(pixelMap[y%4][x%2])
	if col != nil {
		c.colors[row][cell] = col
	}
}

// On reports whether the pixel at (x, y) is set.
func (c *Canvas) On(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	row, cell := y/4, x/2
	if cell >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][cell] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][cell] < blank {
		c.Grid[row][cell] = blank
	}
	if c.Grid[row][cell] == blank {
		c.colors[row][cell] = nil
	}
	c.text[row][cell] = 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.colors[i][j] = nil
			c.text[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.line(x0, y0, x1, y1, nil)
}

func (c *Canvas) line(x0, y0, x1, y1 int, col color.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.setColor(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String returns the plain cells, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if t := c.text[i][j]; t != 0 {
				r = t
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render returns the cells styled with their colors. Runs of one color
// share a style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		var run strings.Builder
		var runColor color.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(hexOf(runColor)).Render(run.String()))
			}
			run.Reset()
		}
		for j, r := range row {
			if t := c.text[i][j]; t != 0 {
				r = t
			}
			col := c.colors[i][j]
			if !sameColor(col, runColor) {
				flush()
				runColor = col
			}
			run.WriteRune(r)
		}
		flush()
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Canvas) Size() (float64, float64) {
	return float64(c.Width * 2), float64(c.Height * 4)
}

func (c *Canvas) pt(x, y float64) geom.Point {
	return c.m.TransformPoint(geom.Point{X: x, Y: y})
}

// scale is the length factor of the current transform.
func (c *Canvas) scale() float64 {
	return math.Sqrt(math.Abs(c.m.A*c.m.E - c.m.B*c.m.D))
}

func (c *Canvas) ClearRect(x, y, w, h float64) {
	minX, minY, maxX, maxY := bounds([]geom.Point{c.pt(x, y), c.pt(x+w, y), c.pt(x+w, y+h), c.pt(x, y+h)})
	for py := int(math.Floor(minY)); py < int(math.Ceil(maxY)); py++ {
		for px := int(math.Floor(minX)); px < int(math.Ceil(maxX)); px++ {
			c.Unset(px, py)
		}
	}
}

func (c *Canvas) SetFill(col color.Color) { c.fill = col }

func (c *Canvas) SetStroke(col color.Color, _ float64) { c.stroke = col }

func (c *Canvas) FillCircle(x, y, r float64) {
	p := c.pt(x, y)
	rr := r * c.scale()
	cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
	c.setColor(cx, cy, c.fill)
	n := int(math.Ceil(rr))
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if float64(dx*dx+dy*dy) <= rr*rr {
				c.setColor(cx+dx, cy+dy, c.fill)
			}
		}
	}
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.fillPolygon([]geom.Point{c.pt(x, y), c.pt(x+w, y), c.pt(x+w, y+h), c.pt(x, y+h)})
}

func (c *Canvas) FillPath(pts []geom.Point) {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = c.pt(p.X, p.Y)
	}
	c.fillPolygon(out)
}

func (c *Canvas) StrokeRect(x, y, w, h float64) {
	c.StrokeLine(x, y, x+w, y)
	c.StrokeLine(x+w, y, x+w, y+h)
	c.StrokeLine(x+w, y+h, x, y+h)
	c.StrokeLine(x, y+h, x, y)
}

func (c *Canvas) StrokeLine(x1, y1, x2, y2 float64) {
	a, b := c.pt(x1, y1), c.pt(x2, y2)
	c.line(int(math.Round(a.X)), int(math.Round(a.Y)), int(math.Round(b.X)), int(math.Round(b.Y)), c.stroke)
}

// FillText writes s into whole cells. The anchor is converted to a cell and
// the string is placed by align; the baseline only picks the row.
func (c *Canvas) FillText(s string, x, y float64, align render.Align, base render.Baseline) {
	p := c.pt(x, y)
	row := int(math.Floor(p.Y / 4))
	switch base {
	case render.BaselineAlphabetic, render.BaselineBottom:
		row = int(math.Ceil(p.Y/4)) - 1
	}
	runes := []rune(s)
	col := int(math.Floor(p.X / 2))
	switch align {
	case render.AlignCenter:
		col -= len(runes) / 2
	case render.AlignRight:
		col -= len(runes)
	}
	if row < 0 || row >= c.Height {
		return
	}
	for i, r := range runes {
		j := col + i
		if j < 0 || j >= c.Width {
			continue
		}
		c.text[row][j] = r
		c.colors[row][j] = c.fill
	}
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.m)
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.m = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) Translate(x, y float64) { c.m = c.m.Multiply(gg.Translate(x, y)) }
func (c *Canvas) Rotate(angle float64)   { c.m = c.m.Multiply(gg.Rotate(angle)) }
func (c *Canvas) Scale(sx, sy float64)   { c.m = c.m.Multiply(gg.Scale(sx, sy)) }

// fillPolygon sets every pixel whose center lies inside pts (even-odd).
func (c *Canvas) fillPolygon(pts []geom.Point) {
	if len(pts) < 3 {
		for _, p := range pts {
			c.setColor(int(math.Round(p.X)), int(math.Round(p.Y)), c.fill)
		}
		return
	}
	minX, minY, maxX, maxY := bounds(pts)
	hit := false
	for py := int(math.Floor(minY)); py <= int(math.Ceil(maxY)); py++ {
		for px := int(math.Floor(minX)); px <= int(math.Ceil(maxX)); px++ {
			if inside(pts, float64(px)+0.5, float64(py)+0.5) {
				c.setColor(px, py, c.fill)
				hit = true
			}
		}
	}
	// Shapes thinner than a dot still leave a mark.
	if !hit {
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		c.setColor(int(math.Floor(cx)), int(math.Floor(cy)), c.fill)
	}
}

func inside(pts []geom.Point, x, y float64) bool {
	in := false
	j := len(pts) - 1
	for i := range pts {
		a, b := pts[i], pts[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
		j = i
	}
	return in
}

func bounds(pts []geom.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return
}

func hexOf(col color.Color) lipgloss.Color {
	r, g, b, _ := col.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

func sameColor(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
