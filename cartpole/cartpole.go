// cartpole.go - Cart-pole balancing environment

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
	"image"
	"image/draw"
	"math"
	"math/rand"

	"github.com/gogpu/gg"
)

const (
	gravity        = 9.8
	massCart       = 1.0
	massPole       = 0.1
	length         = 0.5 // half the pole length
	totalMass      = massCart + massPole
	poleMassLength = massPole * length
	forceMax       = 10.0
	tau            = 0.02

	xThreshold     = 2.4
	thetaThreshold = 12.0 * math.Pi / 180.0

	// DefaultMaxSteps truncates an episode.
	DefaultMaxSteps = 500
)

type State struct {
	X        float64 `json:"x"`
	XDot     float64 `json:"x_dot"`
	Theta    float64 `json:"theta"`
	ThetaDot float64 `json:"theta_dot"`
}

// Env is a single cart-pole. Action 0 pushes left, anything else right.
type Env struct {
	State    State
	Steps    int
	MaxSteps int
	Rand     *rand.Rand
}

func NewEnv(rng *rand.Rand) *Env {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	env := &Env{Rand: rng, MaxSteps: DefaultMaxSteps}
	env.Reset()
	return env
}

func (e *Env) Reset() State {
	e.State = State{
		X:        e.Rand.Float64()*0.1 - 0.05,
		XDot:     e.Rand.Float64()*0.1 - 0.05,
		Theta:    e.Rand.Float64()*0.1 - 0.05,
		ThetaDot: e.Rand.Float64()*0.1 - 0.05,
	}
	e.Steps = 0
	return e.State
}

// Step advances the simulation by one tick. terminated reports the pole
// falling or the cart leaving the track, truncated the step limit.
func (e *Env) Step(action int) (state State, reward float64, terminated, truncated bool) {
	force := forceMax
	if action == 0 {
		force = -forceMax
	}

	x := e.State.X
	xDot := e.State.XDot
	theta := e.State.Theta
	thetaDot := e.State.ThetaDot

	cosTheta := math.Cos(theta)
	sinTheta := math.Sin(theta)

	temp := (force + poleMassLength*thetaDot*thetaDot*sinTheta) / totalMass
	thetaAcc := (gravity*sinTheta - cosTheta*temp) / (length * (4.0/3.0 - massPole*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosTheta/totalMass
	x += tau * xDot
	xDot += tau * xAcc
	theta += tau * thetaDot
	thetaDot += tau * thetaAcc

	e.State = State{
		X:        x,
		XDot:     xDot,
		Theta:    theta,
		ThetaDot: thetaDot,
	}
	e.Steps++

	terminated = x < -xThreshold || x > xThreshold || theta < -thetaThreshold || theta > thetaThreshold
	truncated = !terminated && e.MaxSteps > 0 && e.Steps >= e.MaxSteps
	reward = 1.0
	return e.State, reward, terminated, truncated
}

var (
	skyColor   = gg.RGB(1, 1, 1)
	trackColor = gg.RGB(0, 0, 0)
	cartColor  = gg.RGB(0, 0, 0)
	poleColor  = gg.RGB(202.0/255, 152.0/255, 101.0/255)
	axleColor  = gg.RGB(129.0/255, 132.0/255, 203.0/255)
)

// Render draws the current state into a w x h RGBA image. Geometry is laid
// out for 600x400 and scaled with the width.
func (e *Env) Render(w, h int) (*image.RGBA, error) {
	dc := gg.NewContext(w, h)
	defer dc.Close()

	s := float64(w) / 600
	worldWidth := xThreshold * 2
	scale := float64(w) / worldWidth
	poleWidth := 10 * s
	poleLen := scale * (2 * length)
	cartWidth := 50 * s
	cartHeight := 30 * s

	dc.ClearWithColor(skyColor)

	trackY := float64(h) - 100*s
	if trackY < cartHeight {
		trackY = float64(h) * 0.75
	}
	setColor(dc, trackColor)
	dc.SetLineWidth(max(1, s))
	dc.DrawLine(0, trackY, float64(w), trackY)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}

	cartX := e.State.X*scale + float64(w)/2
	setColor(dc, cartColor)
	dc.DrawRectangle(cartX-cartWidth/2, trackY-cartHeight/2, cartWidth, cartHeight)
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	axleY := trackY - cartHeight/4
	dc.Push()
	dc.Translate(cartX, axleY)
	dc.Rotate(e.State.Theta)
	setColor(dc, poleColor)
	dc.DrawRectangle(-poleWidth/2, -poleLen+poleWidth/2, poleWidth, poleLen)
	err := dc.Fill()
	dc.Pop()
	if err != nil {
		return nil, err
	}

	setColor(dc, axleColor)
	dc.DrawCircle(cartX, axleY, poleWidth/2)
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	img := dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func setColor(dc *gg.Context, c gg.RGBA) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}
