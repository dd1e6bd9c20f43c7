package control

// DiffDrive converts between body velocities (m/s, rad/s) and wheel
// angular velocities (rad/s).
type DiffDrive struct {
	WheelRadius     float64
	WheelSeparation float64
}

func (d DiffDrive) WheelSpeeds(linear, angular float64) (left, right float64) {
	offset := angular * d.WheelSeparation / 2
	left = (linear - offset) / d.WheelRadius
	right = (linear + offset) / d.WheelRadius
	return left, right
}

func (d DiffDrive) BodyTwist(left, right float64) (linear, angular float64) {
	linear = d.WheelRadius * (left + right) / 2
	angular = d.WheelRadius * (right - left) / d.WheelSeparation
	return linear, angular
}
