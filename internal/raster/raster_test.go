package raster

import (
	"bytes"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/geom"
	"github.com/san-kum/obsview/internal/render"
)

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xc000 && g < 0x4000 && b < 0x4000
}

func TestFillRectWithTransform(t *testing.T) {
	c, err := New(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.SetFill(color.RGBA{R: 255, A: 255})
	c.Save()
	c.Translate(32, 32)
	c.FillRect(0, 0, 16, 16)
	c.Restore()

	img := c.Image()
	if !isRed(img.At(40, 40)) {
		t.Errorf("expected red inside translated rect, got %v", img.At(40, 40))
	}
	if isRed(img.At(8, 8)) {
		t.Errorf("expected background outside rect, got %v", img.At(8, 8))
	}
	if err := c.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestClearRect(t *testing.T) {
	c, err := New(32, 32)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.SetFill(color.RGBA{R: 255, A: 255})
	c.FillRect(0, 0, 32, 32)
	c.ClearRect(0, 0, 32, 32)
	if isRed(c.Image().At(16, 16)) {
		t.Error("clear did not repaint the background")
	}
}

func TestRendererOnRaster(t *testing.T) {
	c, err := New(200, 200)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	r := render.New(c, render.ViewWorld)
	obs := dynamo.Observation{Wp1X: 0.5, Wp1Y: 0.5}
	pose := geom.NewPose(r.Viewport(), obs)
	r.Radials = true
	r.Draw(obs, dynamo.Action{Throttle: 1, Steering: 1}, pose, render.TrailOff)
	r.DrawTopText("steps 1")
	if err := c.Err(); err != nil {
		t.Fatal(err)
	}

	if !isRed(c.Image().At(150, 50)) {
		t.Errorf("waypoint not drawn at its anchor: %v", c.Image().At(150, 50))
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := c.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
}

func TestAnimation(t *testing.T) {
	c, err := New(32, 32)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	anim := NewAnimation(0)
	anim.Capture(c)
	c.SetFill(color.White)
	c.FillCircle(16, 16, 8)
	anim.Capture(c)

	var buf bytes.Buffer
	if err := anim.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Image) != 2 || decoded.Delay[0] != 2 {
		t.Errorf("got %d frames, delay %v", len(decoded.Image), decoded.Delay)
	}
}

func TestFrameDelay(t *testing.T) {
	tests := []struct {
		fps, n, want int
	}{
		{30, 1, 3},
		{30, 3, 10},
		{10, 1, 10},
		{60, 1, 2},
		{100, 1, 2},
		{240, 1, MinDelay},
		{0, 1, MinDelay},
		{25, 0, 4},
	}
	for _, tt := range tests {
		if got := FrameDelay(tt.fps, tt.n); got != tt.want {
			t.Errorf("FrameDelay(%d, %d) = %d, want %d", tt.fps, tt.n, got, tt.want)
		}
	}
	if got := NewAnimation(1).Delay; got != MinDelay {
		t.Errorf("delay 1 raised to %d, want %d", got, MinDelay)
	}
}

func TestInvalidSize(t *testing.T) {
	if _, err := New(0, 10); err == nil {
		t.Error("expected error for zero width")
	}
}
