package hardware

import (
	"github.com/mirte-robot/mirte-speed-control/control"
	"github.com/mirte-robot/mirte-speed-control/msgs/nav_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgs/sensor_msgs"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

func (hw *RobotHW) odometryMessage(stamp ros.Time) *nav_msgs.Odometry {
	x, y, heading := hw.odom.Pose()
	linear, angular := hw.odom.Velocity()

	msg := &nav_msgs.Odometry{}
	msg.Header.Seq = hw.seq
	msg.Header.Stamp = stamp
	msg.Header.FrameId = hw.cfg.OdomFrame
	msg.ChildFrameId = hw.cfg.BaseFrame

	msg.Pose.Pose.Position.X = x
	msg.Pose.Pose.Position.Y = y
	msg.Pose.Pose.Orientation.Z, msg.Pose.Pose.Orientation.W = control.YawToQuaternion(heading)
	msg.Twist.Twist.Linear.X = linear
	msg.Twist.Twist.Angular.Z = angular
	for i := 0; i < 6; i++ {
		msg.Pose.Covariance[i*7] = hw.cfg.PoseCovariance[i]
		msg.Twist.Covariance[i*7] = hw.cfg.TwistCovariance[i]
	}
	return msg
}

func (hw *RobotHW) jointStateMessage(stamp ros.Time) *sensor_msgs.JointState {
	msg := &sensor_msgs.JointState{
		Name:     make([]string, 0, len(hw.joints)),
		Position: make([]float64, 0, len(hw.joints)),
		Velocity: make([]float64, 0, len(hw.joints)),
		Effort:   []float64{},
	}
	msg.Header.Seq = hw.seq
	msg.Header.Stamp = stamp
	for _, j := range hw.joints {
		msg.Name = append(msg.Name, j.Name)
		msg.Position = append(msg.Position, j.Position)
		msg.Velocity = append(msg.Velocity, j.Velocity)
	}
	return msg
}
