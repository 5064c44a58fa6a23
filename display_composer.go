// display_composer.go - Live on-screen display of a vector environment

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

/*
display_composer.go - Live Display Composer

Wraps a vector environment so every Reset and Step presents the latest frame
of all sub-environments in one window:

  Reset/Step → env.Render() → validate batch → padded grid (cached)
             → rescale + blit into screen buffer → VideoOutput → Clock.Tick

The window, the screen size and the grid are unknown until the first frame
arrives, because the sub-frame size is only known then.
*/

package vecrender

import (
	"errors"
	"image"
	"log/slog"
	"slices"

	xdraw "golang.org/x/image/draw"
)

// DisplayObserver is notified after every presented frame.
type DisplayObserver interface {
	FramePresented()
}

// ComposerConfig configures a DisplayComposer. The zero value opens an
// ebiten window sized to one sub-frame.
type ComposerConfig struct {
	// ScreenWidth and ScreenHeight fix the window size. Leave both zero to
	// adopt the native sub-frame size.
	ScreenWidth  int
	ScreenHeight int

	Backend int         // VIDEO_BACKEND_* used when Output is nil
	Output  VideoOutput // Pre-built backend, takes precedence over Backend

	Scaler    xdraw.Scaler // Defaults to draw.BiLinear
	Clock     Clock        // Defaults to NewFrameClock()
	Title     string
	Scale     int
	StatusBar bool

	Logger   *slog.Logger
	Observer DisplayObserver
}

// layoutKey identifies the frame shape a cached layout was computed for.
type layoutKey struct {
	n, w, h int
}

// DisplayComposer presents every Reset and Step of the wrapped environment
// in a window. It reports RenderModeHuman as its own mode.
type DisplayComposer[O, A any] struct {
	env      VectorEnv[O, A]
	cfg      ComposerConfig
	metadata Metadata
	scaler   xdraw.Scaler
	clock    Clock

	screenW, screenH int
	grid             PaddedGrid
	gridKey          layoutKey
	gridSet          bool
	screen           *image.RGBA

	output VideoOutput
	closed bool
}

// NewDisplayComposer wraps env. The wrapped env must render one of the array
// modes and declare a render fps.
func NewDisplayComposer[O, A any](env VectorEnv[O, A], cfg ComposerConfig) (*DisplayComposer[O, A], error) {
	mode := env.RenderMode()
	if !mode.IsArray() {
		return nil, newError(ErrConfiguration, "display composer", "expected env render mode to be one of %v, got %q", ArrayRenderModes, mode)
	}
	meta := env.Metadata()
	if meta.RenderFPS <= 0 {
		return nil, newError(ErrConfiguration, "display composer", "the wrapped env must declare a render fps")
	}
	if cfg.ScreenWidth < 0 || cfg.ScreenHeight < 0 || (cfg.ScreenWidth == 0) != (cfg.ScreenHeight == 0) {
		return nil, newError(ErrConfiguration, "display composer", "screen size %dx%d must be both positive or both zero", cfg.ScreenWidth, cfg.ScreenHeight)
	}

	meta = meta.Clone()
	if !slices.Contains(meta.RenderModes, RenderModeHuman) {
		meta.RenderModes = append(meta.RenderModes, RenderModeHuman)
	}

	d := &DisplayComposer[O, A]{
		env:      env,
		cfg:      cfg,
		metadata: meta,
		scaler:   cfg.Scaler,
		clock:    cfg.Clock,
		screenW:  cfg.ScreenWidth,
		screenH:  cfg.ScreenHeight,
	}
	if d.scaler == nil {
		d.scaler = xdraw.BiLinear
	}
	if d.clock == nil {
		d.clock = NewFrameClock()
	}
	return d, nil
}

func (d *DisplayComposer[O, A]) log() *slog.Logger { return loggerOr(d.cfg.Logger) }

func (d *DisplayComposer[O, A]) NumEnvs() int { return d.env.NumEnvs() }

func (d *DisplayComposer[O, A]) Metadata() Metadata { return d.metadata.Clone() }

// RenderMode always returns RenderModeHuman.
func (d *DisplayComposer[O, A]) RenderMode() RenderMode { return RenderModeHuman }

// Reset resets the wrapped env and presents the first frame.
func (d *DisplayComposer[O, A]) Reset(opts ResetOptions) (O, Info, error) {
	obs, info, err := d.env.Reset(opts)
	if err != nil {
		return obs, info, err
	}
	return obs, info, d.renderFrame()
}

// Step steps the wrapped env and presents the resulting frame.
func (d *DisplayComposer[O, A]) Step(actions A) (StepResult[O], error) {
	res, err := d.env.Step(actions)
	if err != nil {
		return res, err
	}
	return res, d.renderFrame()
}

// Render returns nothing: frames are presented, not handed back.
func (d *DisplayComposer[O, A]) Render() (Render, error) {
	return Render{}, nil
}

// Grid returns the cached display layout and whether one has been computed.
func (d *DisplayComposer[O, A]) Grid() (PaddedGrid, bool) {
	return d.grid, d.gridSet
}

// ScreenSize returns the window size, zero until the first frame when it was
// not configured.
func (d *DisplayComposer[O, A]) ScreenSize() (int, int) {
	return d.screenW, d.screenH
}

// Output returns the opened display backend, nil before the first frame.
func (d *DisplayComposer[O, A]) Output() VideoOutput {
	return d.output
}

func (d *DisplayComposer[O, A]) renderFrame() error {
	out, err := d.env.Render()
	if err != nil {
		return err
	}

	batch := out.Batch
	if out.List {
		if len(out.Batches) == 0 {
			return newError(ErrEnvContract, "display frame", "list render returned no frames")
		}
		batch = out.Batches[len(out.Batches)-1]
	}
	w, h, err := checkBatch(batch, d.env.NumEnvs())
	if err != nil {
		return wrapError(ErrEnvContract, "display frame", err, "env.Render() returned a malformed batch")
	}

	if d.screenW == 0 {
		d.screenW, d.screenH = w, h
	}
	if err := d.ensureGrid(layoutKey{n: len(batch), w: w, h: h}); err != nil {
		return err
	}
	if d.screen == nil {
		d.screen = image.NewRGBA(image.Rect(0, 0, d.screenW, d.screenH))
	}
	composePadded(d.screen, d.grid, batch, d.scaler)
	return d.present()
}

func (d *DisplayComposer[O, A]) ensureGrid(key layoutKey) error {
	if d.gridSet && key == d.gridKey {
		return nil
	}
	if d.gridSet {
		d.log().Warn("sub-frame shape changed, recomputing display layout",
			"envs", key.n, "width", key.w, "height", key.h, "previous_envs", d.gridKey.n)
	}
	grid, err := PaddedLayout(key.n, key.w, key.h, d.screenW, d.screenH)
	if err != nil {
		return err
	}
	d.grid, d.gridKey, d.gridSet = grid, key, true
	d.log().Debug("display layout computed",
		"rows", grid.Rows, "cols", grid.Cols, "cell_width", grid.CellW, "cell_height", grid.CellH,
		"screen_width", d.screenW, "screen_height", d.screenH)
	if d.output != nil {
		return d.output.SetDisplayConfig(d.displayConfig())
	}
	return nil
}

func (d *DisplayComposer[O, A]) displayConfig() DisplayConfig {
	return DisplayConfig{
		Width:       d.screenW,
		Height:      d.screenH,
		Scale:       d.cfg.Scale,
		RefreshRate: d.metadata.RenderFPS,
		Title:       d.cfg.Title,
		StatusBar:   d.cfg.StatusBar,
		Grid:        d.grid.GridLayout,
	}
}

func (d *DisplayComposer[O, A]) present() error {
	if d.output == nil {
		out := d.cfg.Output
		if out == nil {
			var err error
			if out, err = NewVideoOutput(d.cfg.Backend); err != nil {
				return err
			}
		}
		if err := out.SetDisplayConfig(d.displayConfig()); err != nil {
			return wrapError(ErrConfiguration, "window open", err, "display backend rejected config")
		}
		if err := out.Start(); err != nil {
			return err
		}
		d.output = out
		d.log().Debug("display window opened", "width", d.screenW, "height", d.screenH)
	}

	if err := d.output.UpdateFrame(d.screen.Pix); err != nil {
		return err
	}
	d.clock.Tick(d.metadata.RenderFPS)
	if d.cfg.Observer != nil {
		d.cfg.Observer.FramePresented()
	}
	return nil
}

// Close releases the window if one was opened and closes the wrapped env.
// Calling Close more than once is a no-op.
func (d *DisplayComposer[O, A]) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var outErr error
	if d.output != nil {
		outErr = d.output.Close()
		d.output = nil
	}
	return errors.Join(outErr, d.env.Close())
}
