// Package control holds the controllers and kinematics of a
// differential-drive base: a PID, a speed limiter, wheel/body velocity
// conversion and odometry integration.
package control

// PID is a discrete PID controller. The integral term is accumulated
// already scaled by I, so IClamp bounds its contribution to the output.
type PID struct {
	P, I, D   float64
	IClamp    float64
	OutputMin float64
	OutputMax float64

	iTerm     float64
	prevError float64
	output    float64
	primed    bool
}

// Update advances the controller by dt seconds with the given error and
// returns the new output. A non-positive dt leaves the state untouched.
func (p *PID) Update(err float64, dt float64) float64 {
	if dt <= 0 {
		return p.output
	}

	p.iTerm = clamp(p.iTerm+p.I*err*dt, -p.IClamp, p.IClamp)

	var dTerm float64
	if p.primed {
		dTerm = p.D * (err - p.prevError) / dt
	}
	p.prevError = err
	p.primed = true

	out := p.P*err + p.iTerm + dTerm
	if p.OutputMax > p.OutputMin {
		out = clamp(out, p.OutputMin, p.OutputMax)
	}
	p.output = out
	return out
}

func (p *PID) Output() float64 {
	return p.output
}

func (p *PID) Reset() {
	p.iTerm = 0
	p.prevError = 0
	p.output = 0
	p.primed = false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
