package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/grid"
	"github.com/san-kum/obsview/internal/metrics"
	"github.com/san-kum/obsview/internal/playback"
	"github.com/san-kum/obsview/internal/raster"
	"github.com/san-kum/obsview/internal/recorder"
	"github.com/san-kum/obsview/internal/render"
	"github.com/san-kum/obsview/internal/rollout"
	"github.com/san-kum/obsview/internal/step"
	"github.com/spf13/cobra"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func trimExt(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer log.Sync()

	view, err := render.ParseView(orDefault(viewName, "zero"))
	if err != nil {
		return err
	}
	dir := orDefault(outPath, ".")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	w, h := cfg.Canvas.Width, cfg.Canvas.Height
	if size > 0 {
		w, h = size, size
	}

	// manifests are independent sessions, each on a fresh canvas
	for _, arg := range args {
		src, id, err := playback.OpenSource(arg)
		if err != nil {
			return err
		}
		canvas, err := raster.New(w, h)
		if err != nil {
			return err
		}
		session := grid.Session{
			Source:   src,
			Manifest: id,
			Renderer: render.New(canvas, view),
			MaxSteps: cfg.Playback.MaxSteps,
			Log:      log,
		}
		res, err := session.Run(cmd.Context())
		if err != nil {
			canvas.Close()
			return err
		}
		if err := canvas.Err(); err != nil {
			canvas.Close()
			return fmt.Errorf("draw %s: %w", arg, err)
		}

		out := filepath.Join(dir, trimExt(arg)+".png")
		err = canvas.SavePNG(out)
		canvas.Close()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d episodes, %d total steps -> %s\n", id, len(res.Entries), res.Total, out)
	}
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Live.Policy == "human" {
		return fmt.Errorf("record runs headless, the human policy needs a player")
	}

	ctx := cmd.Context()
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	// drivers are built up front so each remote connection is dialled once
	drivers := make(map[int64]step.Driver, episodes)
	for i := 0; i < episodes; i++ {
		s := cfg.Live.Seed + int64(i)
		d, closer, err := liveDriver(ctx, cfg, s, nil, log)
		if err != nil {
			return err
		}
		closers = append(closers, closer)
		drivers[s] = d
	}
	factory := func(s int64) (step.Driver, error) {
		d, ok := drivers[s]
		if !ok {
			return step.Driver{}, fmt.Errorf("no driver for seed %d", s)
		}
		return d, nil
	}

	eps, err := recorder.NewEnsemble(factory, episodes, cfg.Live.Seed, cfg.Playback.MaxSteps, log).Run(ctx)
	if err != nil {
		return err
	}

	store := recorder.NewStore(orDefault(outPath, "recordings"))
	if err := store.Init(); err != nil {
		return err
	}
	if len(eps) == 1 {
		name, err := store.SaveEpisode(eps[0])
		if err != nil {
			return err
		}
		fmt.Printf("recorded %d steps (%s) -> %s\n", eps[0].Steps(), eps[0].Done, filepath.Join(orDefault(outPath, "recordings"), name))
		fmt.Println(formatMetrics(metrics.Summarize(eps[0].Frames)))
		return nil
	}
	manifest, err := store.SaveSet(setName, eps)
	if err != nil {
		return err
	}
	for _, ep := range eps {
		fmt.Printf("  %s seed %d: %d steps (%s) %s\n", ep.ID, ep.Seed, ep.Steps(), ep.Done, formatMetrics(metrics.Summarize(ep.Frames)))
	}
	fmt.Printf("recorded %d episodes -> %s\n", len(eps), manifest)
	return nil
}

func runGIF(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer log.Sync()

	view, err := render.ParseView(orDefault(viewName, "world"))
	if err != nil {
		return err
	}
	recs, err := loadRecords(cmd.Context(), args[0], log)
	if err != nil {
		return err
	}

	w, h := cfg.Canvas.Width, cfg.Canvas.Height
	if size > 0 {
		w, h = size, size
	}
	canvas, err := raster.New(w, h)
	if err != nil {
		return err
	}
	defer canvas.Close()

	r := render.New(canvas, view)
	r.Sample = cfg.Playback.TrailSample
	state := control.NewState()
	state.SetTrails(trails)

	n := every
	if n < 1 {
		n = 1
	}
	anim := raster.NewAnimation(raster.FrameDelay(cfg.Playback.FPS, n))
	loop := rollout.New(step.Replay(recs), state, []*render.Renderer{r},
		rollout.WithMaxSteps(cfg.Playback.MaxSteps),
		rollout.WithLogger(log),
		rollout.WithFrameHook(func(st rollout.RunState) {
			if st.Steps%n == 0 || st.Done.Terminal {
				anim.Capture(canvas)
			}
		}))
	if err := loop.Run(cmd.Context(), 0); err != nil {
		return err
	}
	if err := canvas.Err(); err != nil {
		return err
	}

	out := orDefault(outPath, trimExt(args[0])+".gif")
	if err := writeGIF(out, anim); err != nil {
		return err
	}
	st := loop.State()
	fmt.Printf("saved %s (%d frames, %d steps, done %s)\n", out, anim.Len(), st.Steps, st.Done)
	return nil
}

func writeGIF(path string, anim *raster.Animation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := anim.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runPlot(cmd *cobra.Command, args []string) error {
	_, log, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer log.Sync()

	recs, err := loadRecords(cmd.Context(), args[0], log)
	if err != nil {
		return err
	}
	if len(recs) < 2 {
		return fmt.Errorf("no data to plot")
	}

	throttle := make([]float64, 0, len(recs)-1)
	steering := make([]float64, 0, len(recs)-1)
	heading := make([]float64, 0, len(recs)-1)
	dist := make([]float64, 0, len(recs)-1)
	total := 0.0
	for _, f := range recs[1:] {
		total += f.AngleDelta
		throttle = append(throttle, f.Action.Throttle)
		steering = append(steering, f.Action.Steering)
		heading = append(heading, total)
		dist = append(dist, math.Hypot(f.Obs.Wp1X, f.Obs.Wp1Y))
	}

	fmt.Printf("file: %s\n", args[0])
	fmt.Printf("steps: %d\n", len(recs)-1)
	fmt.Printf("done: %v\n", recs[len(recs)-1].Done.Terminal)
	fmt.Printf("metrics: %s\n\n", formatMetrics(metrics.Summarize(recs)))

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"throttle", throttle},
		{"steering", steering},
		{"heading (accumulated angle, rad)", heading},
		{"distance to waypoint", dist},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func formatMetrics(rs []metrics.Result) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("%s=%.3f", r.Name, r.Value)
	}
	return strings.Join(parts, " ")
}
