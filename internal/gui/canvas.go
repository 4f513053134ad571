package gui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/obsview/internal/render"
)

const fontSize = 14

// Pane draws a render.Recording into a render texture. The texture keeps
// its pixels between frames, so trails survive.
type Pane struct {
	Title string
	Rec   *render.Recording

	target     rl.RenderTexture2D
	font       rl.Font
	background rl.Color
}

func NewPane(title string, w, h int, font rl.Font) *Pane {
	p := &Pane{
		Title:      title,
		Rec:        render.NewRecording(float64(w), float64(h)),
		target:     rl.LoadRenderTexture(int32(w), int32(h)),
		font:       font,
		background: rl.Black,
	}
	rl.BeginTextureMode(p.target)
	rl.ClearBackground(p.background)
	rl.EndTextureMode()
	return p
}

// Flush replays the recorded ops into the texture and empties the
// recording. Call it outside BeginDrawing.
func (p *Pane) Flush() {
	if len(p.Rec.Ops) == 0 {
		return
	}
	rl.BeginTextureMode(p.target)
	for _, op := range p.Rec.Ops {
		p.draw(op)
	}
	rl.EndTextureMode()
	p.Rec.Reset()
}

// Draw blits the texture at (x, y). Render textures are stored upside
// down, hence the negative source height.
func (p *Pane) Draw(x, y float32) {
	tex := p.target.Texture
	src := rl.NewRectangle(0, 0, float32(tex.Width), -float32(tex.Height))
	rl.DrawTextureRec(tex, src, rl.NewVector2(x, y), rl.White)
	rl.DrawTextEx(p.font, p.Title, rl.NewVector2(x+6, y+6), fontSize, 1, ColTextDim)
}

func (p *Pane) Unload() {
	rl.UnloadRenderTexture(p.target)
}

func (p *Pane) draw(op render.Op) {
	col := toRL(op.Color)
	pts := op.Points
	switch op.Kind {
	case render.OpClear:
		x0, y0 := min32(pts[0].X, pts[1].X), min32(pts[0].Y, pts[1].Y)
		x1, y1 := max32(pts[0].X, pts[1].X), max32(pts[0].Y, pts[1].Y)
		rl.DrawRectangleRec(rl.NewRectangle(x0, y0, x1-x0, y1-y0), p.background)
	case render.OpCircle:
		r := float32(op.Radius)
		if r < 1 {
			r = 1
		}
		rl.DrawCircleV(vec(pts[0].X, pts[0].Y), r, col)
	case render.OpRect, render.OpPath:
		p.fillFan(op, col)
	case render.OpStrokeRect:
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			rl.DrawLineEx(vec(a.X, a.Y), vec(b.X, b.Y), float32(op.Width), col)
		}
	case render.OpLine:
		rl.DrawLineEx(vec(pts[0].X, pts[0].Y), vec(pts[1].X, pts[1].Y), float32(op.Width), col)
	case render.OpText:
		size := rl.MeasureTextEx(p.font, op.Text, fontSize, 1)
		x, y := float32(pts[0].X), float32(pts[0].Y)
		switch op.Align {
		case render.AlignCenter:
			x -= size.X / 2
		case render.AlignRight:
			x -= size.X
		}
		switch op.Baseline {
		case render.BaselineAlphabetic, render.BaselineBottom:
			y -= size.Y
		case render.BaselineMiddle:
			y -= size.Y / 2
		}
		rl.DrawTextEx(p.font, op.Text, rl.NewVector2(x, y), fontSize, 1, col)
	}
}

// fillFan draws a convex polygon as triangles. Both windings are drawn
// because raylib culls one of them.
func (p *Pane) fillFan(op render.Op, col rl.Color) {
	pts := op.Points
	for i := 1; i+1 < len(pts); i++ {
		a, b, c := vec(pts[0].X, pts[0].Y), vec(pts[i].X, pts[i].Y), vec(pts[i+1].X, pts[i+1].Y)
		rl.DrawTriangle(a, b, c, col)
		rl.DrawTriangle(a, c, b, col)
	}
}

func toRL(c color.Color) rl.Color {
	if c == nil {
		return rl.White
	}
	r, g, b, a := c.RGBA()
	return rl.NewColor(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

func vec(x, y float64) rl.Vector2 { return rl.NewVector2(float32(x), float32(y)) }

func min32(a, b float64) float32 {
	if a < b {
		return float32(a)
	}
	return float32(b)
}

func max32(a, b float64) float32 {
	if a > b {
		return float32(a)
	}
	return float32(b)
}
