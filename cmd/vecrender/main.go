// main.go - vecrender command line driver

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/vecrender
License: GPLv3 or later
*/

// vecrender runs a vector of cart-pole environments under a random policy
// and records tiled videos of them, shows them live in a window, or both.
//
// Configuration is layered: built-in defaults, then the YAML file named by
// --config, then .env and VECRENDER_* environment variables, then flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"

	"github.com/intuitionamiga/vecrender"
	"github.com/intuitionamiga/vecrender/cartpole"
	"github.com/intuitionamiga/vecrender/internal/config"
	"github.com/intuitionamiga/vecrender/internal/logger"
	"github.com/intuitionamiga/vecrender/luatrigger"
	"github.com/intuitionamiga/vecrender/metrics"
)

const shutdownTimeout = 10 * time.Second

type (
	obsT   = []cartpole.State
	actT   = []int
	envT   = vecrender.VectorEnv[obsT, actT]
	recT   = vecrender.VideoRecorder[obsT, actT]
	stackT struct {
		env      envT
		recorder *recT
		composer *vecrender.DisplayComposer[obsT, actT]
		triggers []*luatrigger.Trigger
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("vecrender", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	features := bindFlags(flagSet, cfg)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}
	if *features {
		vecrender.PrintFeatures(stdout)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewWriter(stderr, cfg.Log.Level, cfg.Log.Format)
	vecrender.SetLogger(log)

	met := metrics.New()
	var buffered atomic.Int64
	if cfg.Server.MetricsAddr != "" {
		srv := startMetricsServer(cfg.Server.MetricsAddr, log, met, &buffered)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("metrics server shutdown", "error", err)
			}
		}()
	}

	stack, err := buildStack(cfg, log, met)
	if err != nil {
		return err
	}
	defer stack.closeTriggers()

	log.Info("starting",
		"envs", cfg.Run.Envs,
		"episodes", cfg.Run.Episodes,
		"record_dir", cfg.Record.Dir,
		"display", cfg.Display.Enabled,
	)
	runErr := drive(ctx, cfg, stack, met, &buffered)
	closeErr := stack.env.Close()
	if err := errors.Join(runErr, closeErr); err != nil {
		return err
	}
	log.Info("finished", "episodes", cfg.Run.Episodes)
	return nil
}

// configPath finds --config ahead of full flag parsing so that the file
// can supply the flag defaults.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func bindFlags(fs *pflag.FlagSet, cfg *config.Config) *bool {
	fs.String("config", "", "YAML configuration file")

	fs.IntVar(&cfg.Run.Envs, "envs", cfg.Run.Envs, "number of cart-pole sub-environments")
	fs.IntVar(&cfg.Run.Episodes, "episodes", cfg.Run.Episodes, "number of episodes to run")
	fs.IntVar(&cfg.Run.MaxSteps, "max-steps", cfg.Run.MaxSteps, "step limit per episode")
	fs.Int64Var(&cfg.Run.Seed, "seed", cfg.Run.Seed, "seed for environments and policy")
	fs.StringVar(&cfg.Run.RenderMode, "render-mode", cfg.Run.RenderMode, "rgb_array or rgb_array_list")
	fs.StringVar(&cfg.Run.FrameSize, "frame-size", cfg.Run.FrameSize, "sub-environment frame size WxH")

	fs.StringVar(&cfg.Record.Dir, "record-dir", cfg.Record.Dir, "write videos to this folder")
	fs.StringVar(&cfg.Record.Aspect, "aspect", cfg.Record.Aspect, "target aspect ratio W:H of recorded frames")
	fs.StringVar(&cfg.Record.EpisodeTrigger, "episode-trigger", cfg.Record.EpisodeTrigger, "Lua expression of e, start recording when true")
	fs.StringVar(&cfg.Record.StepTrigger, "step-trigger", cfg.Record.StepTrigger, "Lua expression of s, start recording when true")
	fs.IntVar(&cfg.Record.VideoLength, "video-length", cfg.Record.VideoLength, "frames per video, 0 for whole episodes")
	fs.StringVar(&cfg.Record.NamePrefix, "name-prefix", cfg.Record.NamePrefix, "video file name prefix")
	fs.IntVar(&cfg.Record.FPS, "fps", cfg.Record.FPS, "video frame rate, 0 for the environment rate")
	fs.BoolVar(&cfg.Record.Compress, "compress", cfg.Record.Compress, "keep buffered frames lz4-compressed")
	fs.BoolVar(&cfg.Record.Progress, "progress", cfg.Record.Progress, "show encoder progress")

	fs.BoolVar(&cfg.Display.Enabled, "display", cfg.Display.Enabled, "show the environments live")
	fs.BoolVar(&cfg.Display.Headless, "headless", cfg.Display.Headless, "present to an in-memory display instead of a window")
	fs.StringVar(&cfg.Display.Screen, "screen", cfg.Display.Screen, "window size WxH")
	fs.IntVar(&cfg.Display.Scale, "scale", cfg.Display.Scale, "window scale 1-4")
	fs.BoolVar(&cfg.Display.StatusBar, "status-bar", cfg.Display.StatusBar, "show the status bar")

	fs.StringVar(&cfg.Server.MetricsAddr, "metrics-addr", cfg.Server.MetricsAddr, "serve Prometheus metrics on this address")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "text or json")

	fs.BoolP("help", "h", false, "show help")
	return fs.Bool("features", false, "print compiled features and exit")
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `vecrender - record and display vectorised cart-pole environments.

Usage:
  vecrender --record-dir videos [flags]
  vecrender --display [flags]

Examples:
  # Record every tenth episode, 200 frames each
  vecrender --record-dir videos --episode-trigger "e %% 10 == 0" --video-length 200

  # Watch 16 environments in a 1280x720 window
  vecrender --display --envs 16 --screen 1280x720

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}

func startMetricsServer(addr string, log *slog.Logger, met *metrics.Metrics, buffered *atomic.Int64) *http.Server {
	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetBufferedFrames(int(buffered.Load())) }).ServeHTTP(w, r)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok\n")
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", "error", err)
		}
	}()
	log.Info("metrics server starting", "addr", addr)
	return srv
}

func buildStack(cfg *config.Config, log *slog.Logger, met *metrics.Metrics) (*stackT, error) {
	fw, fh, err := config.ParseSize(cfg.Run.FrameSize)
	if err != nil {
		return nil, err
	}
	base, err := cartpole.NewVectorEnv(cartpole.Config{
		NumEnvs:    cfg.Run.Envs,
		RenderMode: vecrender.RenderMode(cfg.Run.RenderMode),
		Width:      fw,
		Height:     fh,
		Seed:       cfg.Run.Seed,
		MaxSteps:   cfg.Run.MaxSteps,
	})
	if err != nil {
		return nil, err
	}

	s := &stackT{env: base}
	fail := func(err error) (*stackT, error) {
		s.closeTriggers()
		return nil, errors.Join(err, s.env.Close())
	}

	if cfg.Record.Dir != "" {
		aspect, err := config.ParseAspect(cfg.Record.Aspect)
		if err != nil {
			return fail(err)
		}
		rc := vecrender.RecorderConfig{
			VideoFolder:     cfg.Record.Dir,
			AspectRatio:     aspect,
			VideoLength:     cfg.Record.VideoLength,
			NamePrefix:      cfg.Record.NamePrefix,
			FPS:             cfg.Record.FPS,
			EncoderProgress: cfg.Record.Progress,
			CompressFrames:  cfg.Record.Compress,
			Logger:          log,
			Observer:        met,
		}
		if rc.EpisodeTrigger, err = s.compile(cfg.Record.EpisodeTrigger, "e", log); err != nil {
			return fail(err)
		}
		if rc.StepTrigger, err = s.compile(cfg.Record.StepTrigger, "s", log); err != nil {
			return fail(err)
		}
		rec, err := vecrender.NewVideoRecorder(s.env, rc)
		if err != nil {
			return fail(err)
		}
		s.env, s.recorder = rec, rec
	}

	if cfg.Display.Enabled {
		cc := vecrender.ComposerConfig{
			Backend:   vecrender.VIDEO_BACKEND_EBITEN,
			Title:     "vecrender",
			Scale:     cfg.Display.Scale,
			StatusBar: cfg.Display.StatusBar,
			Logger:    log,
			Observer:  met,
		}
		if cfg.Display.Headless {
			cc.Backend = vecrender.VIDEO_BACKEND_HEADLESS
		}
		if cfg.Display.Screen != "" {
			if cc.ScreenWidth, cc.ScreenHeight, err = config.ParseSize(cfg.Display.Screen); err != nil {
				return fail(err)
			}
		}
		disp, err := vecrender.NewDisplayComposer(s.env, cc)
		if err != nil {
			return fail(err)
		}
		s.env, s.composer = disp, disp
	}
	return s, nil
}

// compile returns nil for an empty expression so the recorder applies its
// default schedule.
func (s *stackT) compile(expr, variable string, log *slog.Logger) (vecrender.Trigger, error) {
	if expr == "" {
		return nil, nil
	}
	t, err := luatrigger.Compile(expr, variable)
	if err != nil {
		return nil, err
	}
	t.SetLogger(log)
	s.triggers = append(s.triggers, t)
	return t.Func(), nil
}

func (s *stackT) closeTriggers() {
	for _, t := range s.triggers {
		t.Close()
	}
	s.triggers = nil
}

// windowDone returns a channel closed when the user closes the window, or
// nil when there is no window.
func (s *stackT) windowDone() <-chan struct{} {
	if s.composer == nil {
		return nil
	}
	if d, ok := s.composer.Output().(interface{ Done() <-chan struct{} }); ok {
		return d.Done()
	}
	return nil
}

// drive plays a uniform random policy. An episode ends once every
// sub-environment has finished at least once, or at the step limit.
func drive(ctx context.Context, cfg *config.Config, s *stackT, met *metrics.Metrics, buffered *atomic.Int64) error {
	n := s.env.NumEnvs()
	policy := rand.New(rand.NewPCG(uint64(cfg.Run.Seed), 0x5eed))
	actions := make([]int, n)
	finished := make([]bool, n)
	seed := cfg.Run.Seed

	for episode := range cfg.Run.Episodes {
		opts := vecrender.ResetOptions{}
		if episode == 0 {
			opts.Seed = &seed
		}
		if _, _, err := s.env.Reset(opts); err != nil {
			return err
		}
		met.IncEpisodes()
		clear(finished)
		remaining := n

		for step := 0; step < cfg.Run.MaxSteps && remaining > 0; step++ {
			select {
			case <-ctx.Done():
				vecrender.Logger().Info("interrupted", "episode", episode, "step", step)
				return nil
			case <-s.windowDone():
				vecrender.Logger().Info("window closed", "episode", episode, "step", step)
				return nil
			default:
			}

			for i := range actions {
				actions[i] = policy.IntN(2)
			}
			res, err := s.env.Step(actions)
			if err != nil {
				return err
			}
			met.IncSteps()
			if s.recorder != nil {
				buffered.Store(int64(s.recorder.Unflushed()))
			}
			for i := range n {
				if !finished[i] && (res.Terminations[i] || res.Truncations[i]) {
					finished[i] = true
					remaining--
				}
			}
		}
	}
	return nil
}
