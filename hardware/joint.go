package hardware

import (
	"math"
)

// Joint is one driven wheel. Encoder ticks arrive through ApplyTicks;
// position and velocity are refreshed once per control cycle by read.
type Joint struct {
	Name     string
	Ticks    int64   // accumulated, signed by direction of travel
	Position float64 // rad
	Velocity float64 // rad/s
	Command  float64 // requested velocity, rad/s
	Output   int32   // last motor output, percent

	ticksAtRead int64
}

// ApplyTicks adds an encoder reading. The Mirte encoders count pulses
// without direction, so a positive delta takes the sign of the motor
// output that produced it.
func (j *Joint) ApplyTicks(delta int32) {
	d := int64(delta)
	if d > 0 && j.Output < 0 {
		d = -d
	}
	j.Ticks += d
}

func (j *Joint) read(dt float64, radPerTick float64) {
	delta := j.Ticks - j.ticksAtRead
	j.ticksAtRead = j.Ticks
	j.Position = float64(j.Ticks) * radPerTick
	if dt > 0 {
		j.Velocity = float64(delta) * radPerTick / dt
	}
}

// percent converts a motor effort to the integer percentage the motor
// service takes.
func percent(effort float64) int32 {
	if effort > 100 {
		effort = 100
	} else if effort < -100 {
		effort = -100
	}
	return int32(math.Round(effort))
}
