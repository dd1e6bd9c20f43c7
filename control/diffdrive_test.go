package control

import (
	"testing"
)

func TestDiffDrive(t *testing.T) {
	d := DiffDrive{WheelRadius: 0.1, WheelSeparation: 0.2}
	var tests = []struct {
		linear, angular float64
		left, right     float64
	}{
		{0, 0, 0, 0},
		{1, 0, 10, 10},
		{0, 1, -1, 1},
		{-0.5, 2, -7, -3},
	}
	for _, test := range tests {
		left, right := d.WheelSpeeds(test.linear, test.angular)
		if !almostEqual(left, test.left) || !almostEqual(right, test.right) {
			t.Errorf("(%v, %v): expected (%v, %v), got (%v, %v)",
				test.linear, test.angular, test.left, test.right, left, right)
		}
		linear, angular := d.BodyTwist(left, right)
		if !almostEqual(linear, test.linear) || !almostEqual(angular, test.angular) {
			t.Errorf("(%v, %v): round trip gave (%v, %v)", test.linear, test.angular, linear, angular)
		}
	}
}
