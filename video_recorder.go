// video_recorder.go - Episode and step triggered video recording

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
video_recorder.go - Recording Session Manager

Wraps a vector environment and records the composed grid of all
sub-environment frames to video files.

State machine:

	          StartRecording                 StopRecording
	  Idle ─────────────────> Recording ─────────────────> Idle
	                           │     ^     (flush or discard,
	                           └─────┘      name cleared)
	                StartRecording (stop, then start)

Triggers are evaluated only at Reset and Step boundaries:

	Reset: episodeID++ → stop if whole-episode clip → EpisodeTrigger?
	       → capture → stop if over VideoLength
	Step:  stepID++ → StepTrigger? → capture → stop if over VideoLength

Frames are tiled at native size (no rescaling). The tiling is searched once,
on the first capture, and reused until the sub-frame shape changes.
*/

package vecrender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
)

// RecorderObserver is notified of recording events.
type RecorderObserver interface {
	FrameCaptured(buffered int)
	VideoWritten(path string, frames int)
	VideoSkipped(name string)
	RecordingAborted(name string)
}

// RecorderConfig configures a VideoRecorder. Only VideoFolder is required.
type RecorderConfig struct {
	VideoFolder string // Created with parents if missing

	// AspectRatio is the desired width:height of the tiled frame. Zero
	// means 1:1.
	AspectRatio [2]int

	// EpisodeTrigger and StepTrigger start a recording at matching indices.
	// With both nil, CappedCubicSchedule is used for episodes.
	EpisodeTrigger Trigger
	StepTrigger    Trigger

	// VideoLength caps the frames per clip; 0 records whole episodes.
	VideoLength int

	NamePrefix string // Defaults to "rl-video"
	FPS        int    // Defaults to the env render fps, or 30

	EncoderProgress bool         // Show encoder progress output
	Encoder         VideoEncoder // Defaults to an FFmpegEncoder

	// GCTrigger decides, by episode index, whether Reclaim runs after a
	// recording stops. Nil means always.
	GCTrigger Trigger
	Reclaim   func() // Defaults to debug.FreeOSMemory

	// CompressFrames keeps buffered frames lz4-compressed until encoding.
	CompressFrames bool

	Logger   *slog.Logger
	Observer RecorderObserver
}

const (
	defaultNamePrefix = "rl-video"
	defaultFPS        = 30
	unboundedLength   = math.MaxInt
)

// VideoRecorder records videos of a vector environment. Each output frame is
// every sub-environment frame tiled into one grid whose aspect ratio is as
// close as possible to the configured one.
type VideoRecorder[O, A any] struct {
	env            VectorEnv[O, A]
	cfg            RecorderConfig
	folder         string
	fps            int
	videoLength    int
	episodeTrigger Trigger
	stepTrigger    Trigger
	gcTrigger      Trigger
	reclaim        func()
	encoder        VideoEncoder

	recording bool
	videoName string
	frames    frameStore
	history   []FrameBatch

	episodeID int
	stepID    int

	layout    GridLayout
	layoutKey layoutKey
	layoutSet bool

	closed bool
}

// NewVideoRecorder wraps env. The env must render an array mode.
func NewVideoRecorder[O, A any](env VectorEnv[O, A], cfg RecorderConfig) (*VideoRecorder[O, A], error) {
	mode := env.RenderMode()
	if !mode.IsArray() {
		return nil, newError(ErrConfiguration, "video recorder",
			"render mode is %q, which is incompatible with VideoRecorder; initialize your environment with a render mode that returns an image, such as rgb_array", mode)
	}
	if cfg.VideoFolder == "" {
		return nil, newError(ErrConfiguration, "video recorder", "video folder is required")
	}
	if cfg.AspectRatio == [2]int{} {
		cfg.AspectRatio = [2]int{1, 1}
	}
	if cfg.AspectRatio[0] <= 0 || cfg.AspectRatio[1] <= 0 {
		return nil, newError(ErrConfiguration, "video recorder", "aspect ratio %d:%d must be positive", cfg.AspectRatio[0], cfg.AspectRatio[1])
	}
	if cfg.VideoLength < 0 {
		return nil, newError(ErrConfiguration, "video recorder", "video length %d must not be negative", cfg.VideoLength)
	}
	if cfg.FPS < 0 {
		return nil, newError(ErrConfiguration, "video recorder", "fps %d must not be negative", cfg.FPS)
	}

	r := &VideoRecorder[O, A]{
		env:            env,
		cfg:            cfg,
		episodeTrigger: cfg.EpisodeTrigger,
		stepTrigger:    cfg.StepTrigger,
		gcTrigger:      cfg.GCTrigger,
		reclaim:        cfg.Reclaim,
		encoder:        cfg.Encoder,
		frames:         newFrameStore(cfg.CompressFrames),
		episodeID:      -1,
		stepID:         -1,
	}
	if r.episodeTrigger == nil && r.stepTrigger == nil {
		r.episodeTrigger = CappedCubicSchedule
	}
	if r.gcTrigger == nil {
		r.gcTrigger = Always
	}
	if r.reclaim == nil {
		r.reclaim = debug.FreeOSMemory
	}
	if r.cfg.NamePrefix == "" {
		r.cfg.NamePrefix = defaultNamePrefix
	}
	r.videoLength = cfg.VideoLength
	if r.videoLength == 0 {
		r.videoLength = unboundedLength
	}

	meta := env.Metadata()
	r.fps = cfg.FPS
	if r.fps == 0 {
		r.fps = meta.RenderFPS
	}
	if r.fps <= 0 {
		r.fps = defaultFPS
	}

	folder, err := filepath.Abs(cfg.VideoFolder)
	if err != nil {
		return nil, wrapError(ErrConfiguration, "video recorder", err, "resolving video folder %q", cfg.VideoFolder)
	}
	if info, err := os.Stat(folder); err == nil && info.IsDir() {
		r.log().Warn("overwriting existing videos in folder (specify a different video folder if this is not desired)", "folder", folder)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, wrapError(ErrConfiguration, "video recorder", err, "creating video folder %q", folder)
	}
	r.folder = folder

	if r.encoder == nil {
		r.encoder = &FFmpegEncoder{Progress: cfg.EncoderProgress, Logger: cfg.Logger}
	}
	if err := r.encoder.Available(); err != nil {
		return nil, err
	}

	if meta.AutoresetMode == AutoresetSameStep {
		r.log().Warn("autoreset mode is same_step; recorded episodes will not contain the last frame of the episode")
	}

	runtime.AddCleanup(r, warnUnflushed, unflushedCheck{store: r.frames, logger: cfg.Logger})
	return r, nil
}

type unflushedCheck struct {
	store  frameStore
	logger *slog.Logger
}

// warnUnflushed runs when a recorder is collected. It only reports.
func warnUnflushed(c unflushedCheck) {
	if n := c.store.Len(); n > 0 {
		loggerOr(c.logger).Warn("unable to save last video, did you call Close()?", "frames", n)
	}
}

func (r *VideoRecorder[O, A]) log() *slog.Logger { return loggerOr(r.cfg.Logger) }

func (r *VideoRecorder[O, A]) NumEnvs() int { return r.env.NumEnvs() }

func (r *VideoRecorder[O, A]) Metadata() Metadata { return r.env.Metadata() }

func (r *VideoRecorder[O, A]) RenderMode() RenderMode { return r.env.RenderMode() }

// Recording reports whether a recording is in progress.
func (r *VideoRecorder[O, A]) Recording() bool { return r.recording }

// VideoName returns the name of the current recording, empty when idle.
func (r *VideoRecorder[O, A]) VideoName() string { return r.videoName }

// EpisodeID returns the index of the current episode, -1 before the first Reset.
func (r *VideoRecorder[O, A]) EpisodeID() int { return r.episodeID }

// StepID returns the index of the last step, -1 before the first Step.
func (r *VideoRecorder[O, A]) StepID() int { return r.stepID }

// VideoFolder returns the absolute output folder.
func (r *VideoRecorder[O, A]) VideoFolder() string { return r.folder }

// FPS returns the frame rate videos are written at.
func (r *VideoRecorder[O, A]) FPS() int { return r.fps }

// Layout returns the cached tiling and whether one has been computed.
func (r *VideoRecorder[O, A]) Layout() (GridLayout, bool) { return r.layout, r.layoutSet }

// Unflushed returns the number of captured frames not yet written.
func (r *VideoRecorder[O, A]) Unflushed() int { return r.frames.Len() }

// Reset resets the wrapped env and, if the episode trigger matches, starts a
// new recording named after the episode.
func (r *VideoRecorder[O, A]) Reset(opts ResetOptions) (O, Info, error) {
	obs, info, err := r.env.Reset(opts)
	if err != nil {
		return obs, info, err
	}
	r.episodeID++

	// A failed save of the previous clip never keeps this episode from
	// being recorded; the save error is returned alongside.
	var stopErr error
	if r.recording && r.videoLength == unboundedLength {
		stopErr = r.StopRecording()
	}
	if r.episodeTrigger != nil && r.episodeTrigger(r.episodeID) {
		stopErr = errors.Join(stopErr, r.StartRecording(fmt.Sprintf("%s-episode-%d", r.cfg.NamePrefix, r.episodeID)))
	}
	return obs, info, errors.Join(stopErr, r.captureAndCap())
}

// Step steps the wrapped env and, if the step trigger matches, starts a new
// recording named after the step.
func (r *VideoRecorder[O, A]) Step(actions A) (StepResult[O], error) {
	res, err := r.env.Step(actions)
	if err != nil {
		return res, err
	}
	r.stepID++

	var stopErr error
	if r.stepTrigger != nil && r.stepTrigger(r.stepID) {
		stopErr = r.StartRecording(fmt.Sprintf("%s-step-%d", r.cfg.NamePrefix, r.stepID))
	}
	return res, errors.Join(stopErr, r.captureAndCap())
}

func (r *VideoRecorder[O, A]) captureAndCap() error {
	if !r.recording {
		return nil
	}
	if err := r.captureFrame(); err != nil {
		return err
	}
	return r.stopIfFull()
}

// stopIfFull saves the clip once it holds more than videoLength frames.
func (r *VideoRecorder[O, A]) stopIfFull() error {
	if r.recording && r.frames.Len() > r.videoLength {
		return r.StopRecording()
	}
	return nil
}

// Render forwards to the wrapped env. While recording, batches returned in
// list shape are appended to the clip until it reaches the length limit.
// Batches consumed by an earlier capture are prepended once so callers
// still see every frame.
func (r *VideoRecorder[O, A]) Render() (Render, error) {
	out, err := r.env.Render()
	if err != nil {
		return out, err
	}
	if r.recording && out.List {
		for _, batch := range out.Batches {
			if err := r.appendBatch(batch); err != nil {
				return out, err
			}
			if err := r.stopIfFull(); err != nil {
				return out, err
			}
			if !r.recording {
				break
			}
		}
	}

	if len(r.history) > 0 {
		history := r.history
		r.history = nil
		if out.List {
			out.Batches = append(history, out.Batches...)
		}
	}
	return out, nil
}

// StartRecording starts a new recording, stopping and saving the current one
// first if there is one.
func (r *VideoRecorder[O, A]) StartRecording(name string) error {
	var err error
	if r.recording {
		err = r.StopRecording()
	}
	r.recording = true
	r.videoName = name
	return err
}

// StopRecording writes the buffered frames to <folder>/<name>.mp4 and
// returns to idle. With no frames buffered nothing is written. The buffer is
// cleared whether or not encoding succeeds.
func (r *VideoRecorder[O, A]) StopRecording() error {
	if !r.recording {
		return newError(ErrNotRecording, "stop recording", "StopRecording was called, but no recording was started")
	}

	name := r.videoName
	n := r.frames.Len()
	var err error
	if n == 0 {
		r.log().Warn("ignored saving a video as there were zero frames to save", "name", name)
		if r.cfg.Observer != nil {
			r.cfg.Observer.VideoSkipped(name)
		}
	} else {
		err = r.writeVideo(name, n)
	}

	r.frames.Reset()
	r.recording = false
	r.videoName = ""

	if r.gcTrigger != nil && r.gcTrigger(r.episodeID) {
		r.reclaim()
	}
	return err
}

func (r *VideoRecorder[O, A]) writeVideo(name string, n int) error {
	path := filepath.Join(r.folder, name+".mp4")
	bounds := r.frames.Bounds()
	clip := Clip{
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		FPS:    r.fps,
		Len:    n,
		Frames: r.frames.Frames(),
	}
	err := r.encoder.Encode(context.Background(), path, clip)
	if err == nil {
		err = r.frames.Err()
	}
	if err != nil {
		return fmt.Errorf("writing video %s: %w", path, err)
	}
	r.log().Info("video saved", "path", path, "frames", n, "fps", r.fps)
	if r.cfg.Observer != nil {
		r.cfg.Observer.VideoWritten(path, n)
	}
	return nil
}

// Close closes the wrapped env and saves a recording still in progress.
func (r *VideoRecorder[O, A]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.env.Close()
	if r.recording {
		err = errors.Join(err, r.StopRecording())
	}
	return err
}

// captureFrame renders the env and appends the tiled frame to the clip.
func (r *VideoRecorder[O, A]) captureFrame() error {
	if !r.recording {
		return newError(ErrNotRecording, "capture frame", "cannot capture a frame, recording wasn't started")
	}

	out, err := r.env.Render()
	if err != nil {
		return err
	}
	batch := out.Batch
	if out.List {
		if len(out.Batches) == 0 {
			r.log().Warn("trying to capture render frame but env.Render() has just been called; the frame cannot be captured")
			return nil
		}
		last := len(out.Batches) - 1
		r.history = append(r.history, out.Batches[:last]...)
		batch = out.Batches[last]
	}
	return r.appendBatch(batch)
}

// appendBatch tiles batch and buffers it. A batch that cannot be tiled stops
// the recording instead of failing the step.
func (r *VideoRecorder[O, A]) appendBatch(batch FrameBatch) error {
	w, h, err := checkBatch(batch, r.env.NumEnvs())
	if err != nil {
		return r.abort(fmt.Sprintf("expected a batch of %d sub-environment frames: %v", r.env.NumEnvs(), err))
	}

	key := layoutKey{n: len(batch), w: w, h: h}
	if r.layoutSet && key != r.layoutKey {
		if r.frames.Len() > 0 {
			r.layoutSet = false
			return r.abort(fmt.Sprintf("sub-frame shape changed from %d x %dx%d to %d x %dx%d",
				r.layoutKey.n, r.layoutKey.w, r.layoutKey.h, key.n, key.w, key.h))
		}
		r.layoutSet = false
	}
	if !r.layoutSet {
		layout, err := TiledLayout(key.n, key.h, key.w, r.cfg.AspectRatio[0], r.cfg.AspectRatio[1])
		if err != nil {
			return err
		}
		r.layout, r.layoutKey, r.layoutSet = layout, key, true
		r.log().Debug("recording layout computed", "rows", layout.Rows, "cols", layout.Cols,
			"width", layout.Cols*w, "height", layout.Rows*h)
	}

	frame, err := ComposeTiled(r.layout, batch)
	if err != nil {
		return r.abort(err.Error())
	}
	if err := r.frames.Append(frame); err != nil {
		return r.abort(err.Error())
	}
	if r.cfg.Observer != nil {
		r.cfg.Observer.FrameCaptured(r.frames.Len())
	}
	return nil
}

// abort stops the current recording, saving what was already buffered.
func (r *VideoRecorder[O, A]) abort(reason string) error {
	name := r.videoName
	err := r.StopRecording()
	r.log().Warn("recording stopped: "+reason, "name", name)
	if r.cfg.Observer != nil {
		r.cfg.Observer.RecordingAborted(name)
	}
	return err
}
