package control

import (
	"math"
)

// Below this angular velocity the arc is integrated with second-order
// Runge-Kutta instead of the exact formula.
const exactArcThreshold = 1e-6

// Odometry integrates body velocities into a planar pose.
type Odometry struct {
	x, y, heading   float64
	linear, angular float64
}

// Integrate advances the pose by dt seconds at the given body velocity.
func (o *Odometry) Integrate(linear, angular, dt float64) {
	o.linear, o.angular = linear, angular
	if dt <= 0 {
		return
	}

	if math.Abs(angular) < exactArcThreshold {
		direction := o.heading + angular*dt/2
		o.x += linear * dt * math.Cos(direction)
		o.y += linear * dt * math.Sin(direction)
		o.heading = normalizeAngle(o.heading + angular*dt)
		return
	}

	prev := o.heading
	radius := linear / angular
	o.heading += angular * dt
	o.x += radius * (math.Sin(o.heading) - math.Sin(prev))
	o.y -= radius * (math.Cos(o.heading) - math.Cos(prev))
	o.heading = normalizeAngle(o.heading)
}

func (o *Odometry) Pose() (x, y, heading float64) {
	return o.x, o.y, o.heading
}

// Velocity returns the body velocity of the last integration step.
func (o *Odometry) Velocity() (linear, angular float64) {
	return o.linear, o.angular
}

func (o *Odometry) Reset() {
	*o = Odometry{}
}

// normalizeAngle maps a to (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// YawToQuaternion returns the (z, w) components of a rotation of yaw
// radians about the z axis.
func YawToQuaternion(yaw float64) (z, w float64) {
	return math.Sin(yaw / 2), math.Cos(yaw / 2)
}
