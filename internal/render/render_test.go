package render

import (
	"math"
	"testing"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/geom"
)

const eps = 1e-9

func near(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func newTest(view View) (*Renderer, *Recording) {
	rec := NewRecording(200, 100)
	return New(rec, view), rec
}

func TestParseView(t *testing.T) {
	for _, s := range []string{"zero", "World"} {
		if _, err := ParseView(s); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
	if _, err := ParseView("observer"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestZeroViewDraw(t *testing.T) {
	r, rec := newTest(ViewZero)
	obs := dynamo.Observation{Wp1X: 0.5, Wp1Y: -0.5}
	r.Draw(obs, dynamo.Action{Throttle: 0.5, Steering: -0.3}, geom.Pose{}, TrailOff)

	if rec.Ops[0].Kind != OpClear {
		t.Fatalf("first op should clear, got %v", rec.Ops[0].Kind)
	}

	wps := rec.Find(OpCircle, r.Palette.Waypoint)
	if len(wps) != 1 {
		t.Fatalf("expected one waypoint, got %d", len(wps))
	}
	if !near(wps[0].Points[0], geom.Point{X: 150, Y: 75}) {
		t.Errorf("waypoint at %v", wps[0].Points[0])
	}

	player := rec.Find(OpRect, r.Palette.Player)
	if len(player) != 1 || !near(player[0].Points[0], geom.Point{X: 99, Y: 47.5}) {
		t.Errorf("player glyph: %+v", player)
	}

	flame := rec.Find(OpPath, r.Palette.Flame)
	if len(flame) != 1 || !near(flame[0].Points[2], geom.Point{X: 100, Y: 60}) {
		t.Errorf("flame: %+v", flame)
	}

	ticks := rec.Find(OpCircle, r.Palette.Steer)
	if len(ticks) != 1 || ticks[0].Points[0].X != 110 {
		t.Errorf("negative steering should tick right of the player: %+v", ticks)
	}
	if rec.Depth() != 0 {
		t.Errorf("unbalanced save/restore: %d", rec.Depth())
	}
}

func TestActionIndicators(t *testing.T) {
	tests := []struct {
		name   string
		action dynamo.Action
		flame  int
		tickX  float64
	}{
		{"idle", dynamo.Action{}, 0, 0},
		{"reverse", dynamo.Action{Throttle: -0.5}, 0, 0},
		{"steer right", dynamo.Action{Steering: 0.2}, 0, 90},
		{"steer left", dynamo.Action{Steering: -0.2}, 0, 110},
		{"no action", dynamo.NoAction, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newTest(ViewZero)
			r.Draw(dynamo.Observation{}, tt.action, geom.Pose{}, TrailOff)
			if n := len(rec.Find(OpPath, r.Palette.Flame)); n != tt.flame {
				t.Errorf("flame count: got %d, want %d", n, tt.flame)
			}
			ticks := rec.Find(OpCircle, r.Palette.Steer)
			if tt.tickX == 0 {
				if len(ticks) != 0 {
					t.Errorf("unexpected steering tick: %+v", ticks)
				}
				return
			}
			if len(ticks) != 1 || ticks[0].Points[0].X != tt.tickX {
				t.Errorf("tick: %+v", ticks)
			}
		})
	}
}

func TestWorldViewAnchorsWaypoint(t *testing.T) {
	r, rec := newTest(ViewWorld)
	initial := dynamo.Observation{Wp1X: 0.3, Wp1Y: 0.6}
	pose := geom.NewPose(r.Viewport(), initial)

	r.Draw(initial, dynamo.NoAction, pose, TrailOff)
	wp := rec.Find(OpCircle, r.Palette.Waypoint)[0].Points[0]
	if !near(wp, pose.Anchor) {
		t.Errorf("step 0: waypoint %v, anchor %v", wp, pose.Anchor)
	}

	rec.Reset()
	pose.Advance(0.7)
	pose.Advance(-0.2)
	moved := dynamo.Observation{Wp1X: -0.1, Wp1Y: 0.4}
	r.Draw(moved, dynamo.Action{}, pose, TrailOff)
	wp = rec.Find(OpCircle, r.Palette.Waypoint)[0].Points[0]
	if !near(wp, pose.Anchor) {
		t.Errorf("after rotation: waypoint %v, anchor %v", wp, pose.Anchor)
	}
	if rec.Depth() != 0 {
		t.Errorf("unbalanced save/restore: %d", rec.Depth())
	}
}

func TestTrailSkipsDraws(t *testing.T) {
	r, rec := newTest(ViewZero)
	for i := 0; i < 25; i++ {
		r.Draw(dynamo.Observation{}, dynamo.Action{}, geom.Pose{}, TrailOn)
	}
	if n := rec.Count(OpClear); n != 0 {
		t.Errorf("trail mode cleared %d times", n)
	}
	if n := len(rec.Find(OpCircle, r.Palette.Waypoint)); n != 2 {
		t.Errorf("expected 2 sampled draws out of 25, got %d", n)
	}

	rec.Reset()
	for i := 0; i < 5; i++ {
		r.Draw(dynamo.Observation{}, dynamo.Action{}, geom.Pose{}, TrailNoSkip)
	}
	if n := len(rec.Find(OpCircle, r.Palette.Waypoint)); n != 5 {
		t.Errorf("no-skip trail should draw every call, got %d", n)
	}
}

func TestRadials(t *testing.T) {
	r, rec := newTest(ViewZero)
	r.Radials = true
	r.Draw(dynamo.Observation{}, dynamo.Action{}, geom.Pose{}, TrailOff)

	lines := rec.Find(OpLine, r.Palette.Radial)
	if len(lines) != 8 {
		t.Fatalf("expected 8 radials, got %d", len(lines))
	}
	if end := lines[0].Points[1]; !near(end, geom.Point{X: 100 + 99, Y: 50}) {
		t.Errorf("0 degree radial ends at %v", end)
	}
}

func TestDrawTile(t *testing.T) {
	r, rec := newTest(ViewZero)
	rect := Rect{X: 100, Y: 50, W: 100, H: 50}
	r.DrawTile(dynamo.Observation{Wp1X: 1, Wp1Y: 1}, geom.Pose{}, rect)

	if rec.Count(OpClear) != 0 {
		t.Error("tiles must not clear")
	}
	wp := rec.Find(OpCircle, r.Palette.Waypoint)[0].Points[0]
	if !near(wp, geom.Point{X: 200, Y: 50}) {
		t.Errorf("tile waypoint at %v", wp)
	}
	if rec.Depth() != 0 {
		t.Errorf("unbalanced save/restore: %d", rec.Depth())
	}
}

func TestGridOverlays(t *testing.T) {
	r, rec := newTest(ViewZero)
	r.DrawGridBorders(3)
	if n := len(rec.Find(OpStrokeRect, r.Palette.Border)); n != 9 {
		t.Errorf("expected 9 borders, got %d", n)
	}

	rects := r.Rects(2)
	if len(rects) != 4 || rects[3] != (Rect{X: 100, Y: 50, W: 100, H: 50}) {
		t.Errorf("rects: %+v", rects)
	}

	rec.Reset()
	r.DrawTileText("42", rects[3])
	texts := rec.Find(OpText, r.Palette.Text)
	if len(texts) != 1 || !near(texts[0].Points[0], geom.Point{X: 106, Y: 94}) {
		t.Errorf("tile text: %+v", texts)
	}

	rec.Reset()
	r.DrawTopText("set.mpb total steps 10")
	if rec.Ops[0].Kind != OpClear || rec.Ops[1].Text != "set.mpb total steps 10" {
		t.Errorf("top text ops: %+v", rec.Ops)
	}
	if rec.Depth() != 0 {
		t.Errorf("unbalanced save/restore: %d", rec.Depth())
	}
}
