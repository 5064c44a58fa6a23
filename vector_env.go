// vector_env.go - Vector environment contract consumed by the wrappers

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
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"
)

// RenderMode names what a vector environment's Render call produces.
type RenderMode string

const (
	RenderModeUnset          RenderMode = ""
	RenderModeHuman          RenderMode = "human"
	RenderModeANSI           RenderMode = "ansi"
	RenderModeRGBArray       RenderMode = "rgb_array"
	RenderModeRGBArrayList   RenderMode = "rgb_array_list"
	RenderModeDepthArray     RenderMode = "depth_array"
	RenderModeDepthArrayList RenderMode = "depth_array_list"
)

// IsList reports whether the mode buffers every frame since the previous
// Render call instead of returning only the current one.
func (m RenderMode) IsList() bool {
	return strings.HasSuffix(string(m), "_list")
}

// IsArray reports whether the mode returns pixel buffers.
func (m RenderMode) IsArray() bool {
	switch m {
	case RenderModeRGBArray, RenderModeRGBArrayList, RenderModeDepthArray, RenderModeDepthArrayList:
		return true
	}
	return false
}

// ArrayRenderModes lists the modes whose output can be composed.
var ArrayRenderModes = []RenderMode{
	RenderModeRGBArray,
	RenderModeRGBArrayList,
	RenderModeDepthArray,
	RenderModeDepthArrayList,
}

// AutoresetMode describes when a vector environment resets finished
// sub-environments.
type AutoresetMode int

const (
	AutoresetNextStep AutoresetMode = iota // reset on the step after termination
	AutoresetSameStep                      // reset inside the terminating step
	AutoresetDisabled                      // caller resets explicitly
)

func (m AutoresetMode) String() string {
	switch m {
	case AutoresetNextStep:
		return "next_step"
	case AutoresetSameStep:
		return "same_step"
	case AutoresetDisabled:
		return "disabled"
	}
	return "unknown"
}

// Metadata is the static description a vector environment exposes.
type Metadata struct {
	RenderModes   []RenderMode
	RenderFPS     int // 0 means not declared
	AutoresetMode AutoresetMode
}

// Clone returns a deep copy so wrappers can extend it without aliasing.
func (m Metadata) Clone() Metadata {
	m.RenderModes = slices.Clone(m.RenderModes)
	return m
}

// Info carries per-call auxiliary data.
type Info map[string]any

// ResetOptions are forwarded verbatim to the wrapped environment.
type ResetOptions struct {
	Seed    *int64
	Options map[string]any
}

// StepResult is the batched outcome of one Step call.
type StepResult[O any] struct {
	Obs          O
	Rewards      []float64
	Terminations []bool
	Truncations  []bool
	Info         Info
}

// FrameBatch holds one frame per sub-environment for a single instant.
type FrameBatch []image.Image

// Render is the output of VectorEnv.Render. List selects the shape: a single
// batch for the current instant, or every batch rendered since the previous
// call (possibly none).
type Render struct {
	List    bool
	Batch   FrameBatch
	Batches []FrameBatch
}

// SingleRender wraps the frames of one instant.
func SingleRender(batch FrameBatch) Render {
	return Render{Batch: batch}
}

// ListRender wraps the batches buffered since the previous Render call.
func ListRender(batches ...FrameBatch) Render {
	if batches == nil {
		batches = []FrameBatch{}
	}
	return Render{List: true, Batches: batches}
}

// VectorEnv is a batch of independently simulated sub-environments.
type VectorEnv[O, A any] interface {
	NumEnvs() int
	Metadata() Metadata
	RenderMode() RenderMode
	Reset(opts ResetOptions) (O, Info, error)
	Step(actions A) (StepResult[O], error)
	Render() (Render, error)
	Close() error
}

// checkBatch validates that batch holds n non-nil frames of one size and
// returns that size. n <= 0 skips the count check.
func checkBatch(batch FrameBatch, n int) (w, h int, err error) {
	if len(batch) == 0 {
		return 0, 0, errors.New("empty frame batch")
	}
	if n > 0 && len(batch) != n {
		return 0, 0, fmt.Errorf("expected %d frames, got %d", n, len(batch))
	}
	for i, frame := range batch {
		if frame == nil {
			return 0, 0, fmt.Errorf("frame %d is nil", i)
		}
		b := frame.Bounds()
		if i == 0 {
			w, h = b.Dx(), b.Dy()
			if w <= 0 || h <= 0 {
				return 0, 0, fmt.Errorf("frame 0 has empty bounds %v", b)
			}
			continue
		}
		if b.Dx() != w || b.Dy() != h {
			return 0, 0, fmt.Errorf("frame %d is %dx%d, frame 0 is %dx%d", i, b.Dx(), b.Dy(), w, h)
		}
	}
	return w, h, nil
}
