package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/obsview/internal/agents"
	"github.com/san-kum/obsview/internal/config"
	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/dynamo"
	"github.com/san-kum/obsview/internal/gui"
	"github.com/san-kum/obsview/internal/logging"
	"github.com/san-kum/obsview/internal/raster"
	"github.com/san-kum/obsview/internal/remote"
	"github.com/san-kum/obsview/internal/render"
	"github.com/san-kum/obsview/internal/rollout"
	"github.com/san-kum/obsview/internal/step"
	"github.com/san-kum/obsview/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const tuiLogFile = "obsview.log"

// Flags shared by several commands are bound to one variable. Each
// registration uses the same default and commands only read a flag the
// user set, see loadConfig.
var (
	configFile string
	logLevel   string
	logFile    string
	// Live rollout
	policy      string
	stepperAddr string
	preset      string
	seed        int64
	dt          float64
	integrator  string
	maxSteps    int
	// Presentation
	fps      int
	theme    string
	gifOut   string
	viewName string
	outPath  string
	size     int
	trails   bool
	every    int
	// Recording
	episodes int
	setName  string
	// Stepper server
	listenAddr string
	wsPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "obsview",
		Short:         "observer-view playback and live rollouts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (terminal players default to "+tuiLogFile+")")

	playCmd := &cobra.Command{
		Use:   "play [file.pb]",
		Short: "replay a recorded episode in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}
	addViewFlags(playCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a live episode in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLiveFlags(liveCmd)
	addViewFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [file.pb]",
		Short: "replay a file, or run live, in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	addLiveFlags(guiCmd)
	guiCmd.Flags().IntVar(&fps, "fps", 0, "ticks per second")
	guiCmd.Flags().IntVar(&size, "size", 0, "pane size in pixels (default 600)")

	gridCmd := &cobra.Command{
		Use:   "grid [manifest.mpb]...",
		Short: "render every episode of a manifest into one image",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGrid,
	}
	gridCmd.Flags().StringVar(&viewName, "view", "", "view, zero or world (default zero)")
	gridCmd.Flags().StringVar(&outPath, "out", "", "output directory (default .)")
	gridCmd.Flags().IntVar(&size, "size", 0, "image size in pixels (defaults to the canvas width)")
	gridCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step limit per episode")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record live episodes headless",
		Args:  cobra.NoArgs,
		RunE:  runRecord,
	}
	addLiveFlags(recordCmd)
	recordCmd.Flags().IntVar(&episodes, "episodes", 1, "number of episodes")
	recordCmd.Flags().StringVar(&outPath, "out", "", "output directory (default recordings)")
	recordCmd.Flags().StringVar(&setName, "name", "episodes", "manifest name")

	gifCmd := &cobra.Command{
		Use:   "gif [file.pb]",
		Short: "export a replay as an animated gif",
		Args:  cobra.ExactArgs(1),
		RunE:  runGIF,
	}
	gifCmd.Flags().StringVar(&viewName, "view", "", "view, zero or world (default world)")
	gifCmd.Flags().StringVar(&outPath, "out", "", "output file (defaults to <file>.gif)")
	gifCmd.Flags().IntVar(&size, "size", 0, "image size in pixels")
	gifCmd.Flags().BoolVar(&trails, "trails", false, "accumulate trails")
	gifCmd.Flags().IntVar(&every, "every", 1, "keep every n-th frame")

	plotCmd := &cobra.Command{
		Use:   "plot [file.pb]",
		Short: "plot the controls and heading of a recording",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	serveCmd := &cobra.Command{
		Use:   "serve-stepper",
		Short: "serve the built-in stepper over websocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&wsPath, "path", "/step", "websocket path")
	serveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	serveCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named initial observations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tWP1\tVEL")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				if p.Random {
					fmt.Fprintf(w, "%s\trandom\trandom\n", name)
					continue
				}
				fmt.Fprintf(w, "%s\t(%.2f, %.2f)\t(%.2f, %.2f)\n", name, p.Wp1X, p.Wp1Y, p.VelX, p.VelY)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(playCmd, liveCmd, guiCmd, gridCmd, recordCmd, gifCmd, plotCmd, serveCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&policy, "policy", config.DefaultPolicy, "policy ("+strings.Join(agents.NewRegistry().List(), ", ")+")")
	cmd.Flags().StringVar(&stepperAddr, "stepper", config.DefaultStepper, "stepper: local or a ws:// url")
	cmd.Flags().StringVar(&preset, "preset", "", "initial observation preset")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step limit")
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&fps, "fps", 0, "frames per second")
	cmd.Flags().StringVar(&theme, "theme", "dark", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().StringVar(&gifOut, "gif", "", "also record the world view to this gif")
}

// loadConfig reads --config, then applies every flag the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.Live.Policy = policy
	}
	if flags.Changed("stepper") {
		cfg.Live.Stepper = stepperAddr
	}
	if flags.Changed("preset") {
		cfg.Live.Preset = preset
	}
	if flags.Changed("seed") {
		cfg.Live.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Live.Dt = dt
	}
	if flags.Changed("integrator") {
		cfg.Live.Integrator = integrator
	}
	if flags.Changed("max-steps") {
		cfg.Playback.MaxSteps = maxSteps
	}
	if flags.Changed("fps") {
		cfg.Playback.FPS = fps
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the config and builds the logger. Terminal players pass a
// default log file so logs stay off the screen.
func setup(cmd *cobra.Command, defaultLog string) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	file := cfg.Log.File
	if file == "" {
		file = defaultLog
	}
	log, err := logging.New(cfg.Log.Level, file)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, tuiLogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	recs, err := loadRecords(cmd.Context(), args[0], log)
	if err != nil {
		return err
	}
	log.Info("playback", zap.String("file", args[0]), zap.Int("records", len(recs)))

	return runTUI(cfg, log, filepath.Base(args[0]), func(agents.ArrowSource) (step.Driver, io.Closer, error) {
		return step.Replay(recs), nopCloser{}, nil
	})
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, tuiLogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	title := fmt.Sprintf("live %s (seed %d)", cfg.Live.Policy, cfg.Live.Seed)
	return runTUI(cfg, log, title, func(arrows agents.ArrowSource) (step.Driver, io.Closer, error) {
		return liveDriver(cmd.Context(), cfg, cfg.Live.Seed, arrows, log)
	})
}

// runTUI runs a terminal session. build receives the control machine so
// the human policy can read its arrow keys.
func runTUI(cfg *config.Config, log *zap.Logger, title string, build func(agents.ArrowSource) (step.Driver, io.Closer, error)) error {
	clock := viz.NewTeaClock()
	state := control.NewState()
	machine := control.NewMachine(state, clock,
		control.WithHoldDelay(cfg.Playback.HoldDelay),
		control.WithLogger(log))

	driver, closer, err := build(machine)
	if err != nil {
		return err
	}
	defer closer.Close()

	panes, renderers := viz.NewPanes(viz.PaneWidth, viz.PaneHeight)
	for _, r := range renderers {
		r.Sample = cfg.Playback.TrailSample
	}
	opts := []rollout.Option{
		rollout.WithMaxSteps(cfg.Playback.MaxSteps),
		rollout.WithLogger(log),
	}

	var anim *raster.Animation
	if gifOut != "" {
		canvas, err := raster.New(cfg.Canvas.Width, cfg.Canvas.Height)
		if err != nil {
			return err
		}
		defer canvas.Close()
		r := render.New(canvas, render.ViewWorld)
		r.Sample = cfg.Playback.TrailSample
		renderers = append(renderers, r)
		anim = raster.NewAnimation(raster.FrameDelay(cfg.Playback.FPS, 1))
		opts = append(opts, rollout.WithFrameHook(func(rollout.RunState) { anim.Capture(canvas) }))
	}

	loop := rollout.New(driver, state, renderers, opts...)
	model := viz.NewModel(loop, machine, clock, panes,
		viz.WithTitle(title),
		viz.WithInterval(cfg.FrameInterval()),
		viz.WithTheme(theme),
		viz.WithKeyTiming(cfg.Playback.ReleaseGap, cfg.Playback.RepeatWindow),
		viz.WithLogger(log))

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus()).Run()
	if err != nil {
		return err
	}

	if anim != nil {
		if err := writeGIF(gifOut, anim); err != nil {
			return err
		}
		fmt.Printf("saved %s (%d frames)\n", gifOut, anim.Len())
	}
	if m, ok := final.(viz.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer log.Sync()

	clock := control.NewFrameClock()
	state := control.NewState()
	machine := control.NewMachine(state, clock,
		control.WithHoldDelay(cfg.Playback.HoldDelay),
		control.WithLogger(log))

	var driver step.Driver
	title := "obsview"
	if len(args) == 1 {
		recs, err := loadRecords(cmd.Context(), args[0], log)
		if err != nil {
			return err
		}
		driver = step.Replay(recs)
		title = filepath.Base(args[0])
	} else {
		d, closer, err := liveDriver(cmd.Context(), cfg, cfg.Live.Seed, machine, log)
		if err != nil {
			return err
		}
		defer closer.Close()
		driver = d
		title = "live " + cfg.Live.Policy
	}

	return gui.Run(driver, gui.Config{
		Title:       title,
		PaneSize:    size,
		MaxSteps:    cfg.Playback.MaxSteps,
		HoldDelay:   cfg.Playback.HoldDelay,
		Interval:    cfg.FrameInterval(),
		TrailSample: cfg.Playback.TrailSample,
		Logger:      log,
	}, clock, machine, state)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer log.Sync()

	if _, err := newLocalStepper(cfg); err != nil {
		return err
	}
	handler := remote.NewHandler(remote.HandlerConfig{
		Logger: log,
		NewStepper: func() dynamo.Stepper {
			s, _ := newLocalStepper(cfg)
			return s
		},
	})

	mux := http.NewServeMux()
	mux.Handle(wsPath, handler)
	srv := &http.Server{Addr: listenAddr, Handler: mux}

	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Info("serving stepper", zap.String("addr", listenAddr), zap.String("path", wsPath))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
