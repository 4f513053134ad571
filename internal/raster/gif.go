package raster

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
)

// Animation collects frames for an animated GIF.
type Animation struct {
	// Delay per frame in 100ths of a second.
	Delay  int
	frames []*image.Paletted
}

// MinDelay is the shortest frame delay viewers play back as written.
const MinDelay = 2

// NewAnimation returns an animation with delay hundredths of a second per
// frame, raised to MinDelay.
func NewAnimation(delay int) *Animation {
	if delay < MinDelay {
		delay = MinDelay
	}
	return &Animation{Delay: delay}
}

// FrameDelay is the delay for keeping every n-th frame of a run ticking at
// fps, rounded to hundredths of a second.
func FrameDelay(fps, n int) int {
	if fps <= 0 {
		return MinDelay
	}
	if n < 1 {
		n = 1
	}
	d := (100*n + fps/2) / fps
	if d < MinDelay {
		return MinDelay
	}
	return d
}

// Capture quantizes the canvas's current image into a new frame.
func (a *Animation) Capture(c *Canvas) {
	src := c.Image()
	frame := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(frame, src.Bounds(), src, image.Point{})
	a.frames = append(a.frames, frame)
}

func (a *Animation) Len() int { return len(a.frames) }

func (a *Animation) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range a.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, a.Delay)
	}
	return gif.EncodeAll(w, &anim)
}
