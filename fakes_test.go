// fakes_test.go - Test doubles shared by the vecrender tests

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

package vecrender

import (
	"context"
	"image"
	"image/color"
	"os"
	"sync"
)

// fakeEnv renders one solid frame per sub-environment. The red channel
// encodes the sub-environment index and the green channel the step count.
type fakeEnv struct {
	n, w, h int
	mode    RenderMode
	meta    Metadata

	steps   int
	resets  int
	renders int
	closed  int
	pending []FrameBatch

	override  FrameBatch
	renderErr error
	closeErr  error
}

func newFakeEnv(n, w, h int, mode RenderMode) *fakeEnv {
	return &fakeEnv{
		n: n, w: w, h: h, mode: mode,
		meta: Metadata{RenderModes: []RenderMode{mode}, RenderFPS: 50},
	}
}

func fakeColor(env, step int) color.RGBA {
	return color.RGBA{R: uint8(10 + env*20), G: uint8(step), B: 0x40, A: 0xFF}
}

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func (e *fakeEnv) batch() FrameBatch {
	if e.override != nil {
		return e.override
	}
	b := make(FrameBatch, e.n)
	for i := range b {
		b[i] = solidFrame(e.w, e.h, fakeColor(i, e.steps))
	}
	return b
}

func (e *fakeEnv) NumEnvs() int           { return e.n }
func (e *fakeEnv) Metadata() Metadata     { return e.meta.Clone() }
func (e *fakeEnv) RenderMode() RenderMode { return e.mode }

func (e *fakeEnv) Reset(ResetOptions) ([]int, Info, error) {
	e.resets++
	e.steps = 0
	if e.mode.IsList() {
		e.pending = []FrameBatch{e.batch()}
	}
	return make([]int, e.n), Info{}, nil
}

func (e *fakeEnv) Step(actions []int) (StepResult[[]int], error) {
	e.steps++
	if e.mode.IsList() {
		e.pending = append(e.pending, e.batch())
	}
	return StepResult[[]int]{
		Obs:          make([]int, e.n),
		Rewards:      make([]float64, e.n),
		Terminations: make([]bool, e.n),
		Truncations:  make([]bool, e.n),
	}, nil
}

func (e *fakeEnv) Render() (Render, error) {
	e.renders++
	if e.renderErr != nil {
		return Render{}, e.renderErr
	}
	if e.mode.IsList() {
		out := ListRender(e.pending...)
		e.pending = nil
		return out, nil
	}
	return SingleRender(e.batch()), nil
}

func (e *fakeEnv) Close() error {
	e.closed++
	return e.closeErr
}

type encodedClip struct {
	path   string
	clip   Clip
	frames []*image.RGBA
}

// fakeEncoder copies every encoded frame and writes a placeholder file.
type fakeEncoder struct {
	availErr  error
	encodeErr error
	clips     []encodedClip
}

func (f *fakeEncoder) Available() error { return f.availErr }

func (f *fakeEncoder) Encode(_ context.Context, path string, clip Clip) error {
	if f.encodeErr != nil {
		return f.encodeErr
	}
	var frames []*image.RGBA
	for frame := range clip.Frames {
		c := image.NewRGBA(frame.Bounds())
		copy(c.Pix, frame.Pix)
		frames = append(frames, c)
	}
	f.clips = append(f.clips, encodedClip{path: path, clip: clip, frames: frames})
	return os.WriteFile(path, []byte("fake mp4"), 0o644)
}

type fakeClock struct {
	ticks []int
}

func (c *fakeClock) Tick(fps int) { c.ticks = append(c.ticks, fps) }

type recordingObserver struct {
	mu        sync.Mutex
	captured  int
	written   []string
	skipped   []string
	aborted   []string
	presented int
}

func (o *recordingObserver) FrameCaptured(int) {
	o.mu.Lock()
	o.captured++
	o.mu.Unlock()
}

func (o *recordingObserver) VideoWritten(path string, _ int) {
	o.mu.Lock()
	o.written = append(o.written, path)
	o.mu.Unlock()
}

func (o *recordingObserver) VideoSkipped(name string) {
	o.mu.Lock()
	o.skipped = append(o.skipped, name)
	o.mu.Unlock()
}

func (o *recordingObserver) RecordingAborted(name string) {
	o.mu.Lock()
	o.aborted = append(o.aborted, name)
	o.mu.Unlock()
}

func (o *recordingObserver) FramePresented() {
	o.mu.Lock()
	o.presented++
	o.mu.Unlock()
}
