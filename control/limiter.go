package control

import (
	"math"
)

// SpeedLimiter bounds a velocity command and its rate of change. A zero
// limit disables that bound.
type SpeedLimiter struct {
	MaxVelocity     float64
	MaxAcceleration float64

	last float64
}

// Limit returns v bounded by the limits, given dt seconds since the
// previous call. With an acceleration limit, dt <= 0 allows no change.
func (l *SpeedLimiter) Limit(v float64, dt float64) float64 {
	if l.MaxVelocity > 0 {
		v = clamp(v, -l.MaxVelocity, l.MaxVelocity)
	}
	if l.MaxAcceleration > 0 {
		step := l.MaxAcceleration * math.Max(dt, 0)
		v = clamp(v, l.last-step, l.last+step)
	}
	l.last = v
	return v
}

func (l *SpeedLimiter) Reset() {
	l.last = 0
}
