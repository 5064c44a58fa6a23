// vector.go - Synchronous vector of cart-pole environments

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

package cartpole

import (
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/intuitionamiga/vecrender"
)

// RenderFPS is the frame rate the cart-pole simulation is timed for.
const RenderFPS = 50

// Config configures a VectorEnv.
type Config struct {
	NumEnvs    int
	RenderMode vecrender.RenderMode // rgb_array or rgb_array_list
	Width      int                  // Frame size, defaults to 600x400
	Height     int
	Seed       int64
	MaxSteps   int // Defaults to DefaultMaxSteps
}

// VectorEnv steps NumEnvs cart-poles in lock step with next-step autoreset:
// a sub-environment that ended on step t is reset on step t+1, and that
// step reports the reset observation with zero reward.
type VectorEnv struct {
	cfg      Config
	envs     []*Env
	needsRst []bool
	pending  []vecrender.FrameBatch
	closed   bool
}

func NewVectorEnv(cfg Config) (*VectorEnv, error) {
	if cfg.NumEnvs < 1 {
		return nil, fmt.Errorf("cartpole: need at least one env, got %d", cfg.NumEnvs)
	}
	switch cfg.RenderMode {
	case vecrender.RenderModeRGBArray, vecrender.RenderModeRGBArrayList:
	case vecrender.RenderModeUnset:
		cfg.RenderMode = vecrender.RenderModeRGBArray
	default:
		return nil, fmt.Errorf("cartpole: unsupported render mode %q", cfg.RenderMode)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 600, 400
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}

	v := &VectorEnv{
		cfg:      cfg,
		envs:     make([]*Env, cfg.NumEnvs),
		needsRst: make([]bool, cfg.NumEnvs),
	}
	for i := range v.envs {
		v.envs[i] = NewEnv(rand.New(rand.NewSource(cfg.Seed + int64(i))))
		v.envs[i].MaxSteps = cfg.MaxSteps
	}
	return v, nil
}

func (v *VectorEnv) NumEnvs() int { return len(v.envs) }

func (v *VectorEnv) Metadata() vecrender.Metadata {
	return vecrender.Metadata{
		RenderModes:   []vecrender.RenderMode{vecrender.RenderModeRGBArray, vecrender.RenderModeRGBArrayList},
		RenderFPS:     RenderFPS,
		AutoresetMode: vecrender.AutoresetNextStep,
	}
}

func (v *VectorEnv) RenderMode() vecrender.RenderMode { return v.cfg.RenderMode }

// Reset resets every sub-environment. A seed reseeds sub-environment i
// with seed+i.
func (v *VectorEnv) Reset(opts vecrender.ResetOptions) ([]State, vecrender.Info, error) {
	if v.closed {
		return nil, nil, fmt.Errorf("cartpole: reset after close")
	}
	obs := make([]State, len(v.envs))
	for i, e := range v.envs {
		if opts.Seed != nil {
			e.Rand = rand.New(rand.NewSource(*opts.Seed + int64(i)))
		}
		obs[i] = e.Reset()
		v.needsRst[i] = false
	}
	if v.listMode() {
		v.pending = v.pending[:0]
		if err := v.collect(); err != nil {
			return obs, nil, err
		}
	}
	return obs, vecrender.Info{}, nil
}

// Step applies one action per sub-environment.
func (v *VectorEnv) Step(actions []int) (vecrender.StepResult[[]State], error) {
	if v.closed {
		return vecrender.StepResult[[]State]{}, fmt.Errorf("cartpole: step after close")
	}
	if len(actions) != len(v.envs) {
		return vecrender.StepResult[[]State]{}, fmt.Errorf("cartpole: got %d actions for %d envs", len(actions), len(v.envs))
	}

	res := vecrender.StepResult[[]State]{
		Obs:          make([]State, len(v.envs)),
		Rewards:      make([]float64, len(v.envs)),
		Terminations: make([]bool, len(v.envs)),
		Truncations:  make([]bool, len(v.envs)),
		Info:         vecrender.Info{},
	}
	for i, e := range v.envs {
		if v.needsRst[i] {
			res.Obs[i] = e.Reset()
			v.needsRst[i] = false
			continue
		}
		state, reward, term, trunc := e.Step(actions[i])
		res.Obs[i] = state
		res.Rewards[i] = reward
		res.Terminations[i] = term
		res.Truncations[i] = trunc
		v.needsRst[i] = term || trunc
	}
	if v.listMode() {
		if err := v.collect(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Render returns the current frame of every sub-environment, or in list
// mode every batch collected since the previous Render.
func (v *VectorEnv) Render() (vecrender.Render, error) {
	if v.listMode() {
		out := vecrender.ListRender(v.pending...)
		v.pending = nil
		return out, nil
	}
	batch, err := v.renderBatch()
	if err != nil {
		return vecrender.Render{}, err
	}
	return vecrender.SingleRender(batch), nil
}

func (v *VectorEnv) Close() error {
	v.closed = true
	v.pending = nil
	return nil
}

// States returns a copy of the current sub-environment states.
func (v *VectorEnv) States() []State {
	out := make([]State, len(v.envs))
	for i, e := range v.envs {
		out[i] = e.State
	}
	return out
}

func (v *VectorEnv) listMode() bool { return v.cfg.RenderMode.IsList() }

func (v *VectorEnv) collect() error {
	batch, err := v.renderBatch()
	if err != nil {
		return err
	}
	v.pending = append(v.pending, batch)
	return nil
}

// renderBatch draws all sub-environments concurrently.
func (v *VectorEnv) renderBatch() (vecrender.FrameBatch, error) {
	batch := make(vecrender.FrameBatch, len(v.envs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range v.envs {
		g.Go(func() error {
			img, err := e.Render(v.cfg.Width, v.cfg.Height)
			if err != nil {
				return fmt.Errorf("cartpole: render env %d: %w", i, err)
			}
			batch[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}
