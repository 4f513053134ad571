// Package grid replays every episode of a manifest into its own tile of one
// canvas, for side-by-side comparison.
package grid

import (
	"context"
	"fmt"
	"math"
	"path"
	"strconv"

	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/geom"
	"github.com/san-kum/obsview/internal/playback"
	"github.com/san-kum/obsview/internal/render"
	"go.uber.org/zap"
)

// Session renders one manifest.
type Session struct {
	Source   playback.Source
	Manifest string
	Renderer *render.Renderer
	MaxSteps int
	Log      *zap.Logger
}

// Result lists the episodes in manifest order with the steps each consumed.
type Result struct {
	Entries []string
	Steps   []int
	Total   int
}

// Size returns the side of the smallest square grid holding n tiles.
func Size(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Run draws the borders, then each episode in turn, then the totals line.
// The first episode that fails to load aborts the session.
func (s *Session) Run(ctx context.Context) (Result, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxSteps := s.MaxSteps
	if maxSteps <= 0 {
		maxSteps = dynamo.MaxSteps
	}
	log = log.With(zap.String("manifest", s.Manifest))

	entries, err := playback.LoadManifest(ctx, s.Source, s.Manifest)
	if err != nil {
		return Result{}, err
	}

	n := Size(len(entries))
	rects := s.Renderer.Rects(n)
	s.Renderer.DrawGridBorders(n)
	log.Info("grid playback", zap.Int("episodes", len(entries)), zap.Int("grid", n))

	res := Result{Entries: entries, Steps: make([]int, 0, len(entries))}
	for i, id := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		recs, err := playback.Load(ctx, s.Source, id, log)
		if err != nil {
			log.Error("grid aborted", zap.String("entry", id), zap.Error(err))
			return res, fmt.Errorf("grid entry %d (%s): %w", i, id, err)
		}

		steps, done := s.tile(recs, rects[i], maxSteps)
		if done.Reason == dynamo.ReasonEnd {
			log.Warn("records ended without a done row", zap.String("entry", id), zap.Int("steps", steps))
		} else {
			log.Debug("episode done", zap.String("entry", id), zap.Int("steps", steps), zap.Stringer("done", done))
		}

		s.Renderer.DrawTileText(strconv.Itoa(steps), rects[i])
		res.Steps = append(res.Steps, steps)
		res.Total += steps
	}

	s.Renderer.DrawTopText(fmt.Sprintf("%s total steps %d", path.Base(s.Manifest), res.Total))
	return res, nil
}

// tile draws the initial frame and drains recs[1:] into rect until a done
// row or maxSteps. It returns the number of frames consumed and why it
// stopped.
func (s *Session) tile(recs playback.Records, rect render.Rect, maxSteps int) (int, dynamo.Done) {
	r := s.Renderer
	pose := geom.NewPose(r.Viewport(), recs.Initial())
	r.DrawTile(recs.Initial(), pose, rect)

	for steps := 1; ; steps++ {
		if steps >= len(recs) {
			return steps - 1, dynamo.Terminated(dynamo.ReasonEnd)
		}
		f := recs[steps]
		pose.Advance(f.AngleDelta)
		r.DrawTile(f.Obs, pose, rect)
		if f.Done.Terminal {
			return steps, f.Done
		}
		if steps >= maxSteps {
			return steps, dynamo.Terminated(dynamo.ReasonMaxSteps)
		}
	}
}
