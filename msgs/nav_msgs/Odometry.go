// Package nav_msgs holds nav_msgs/Odometry.
package nav_msgs

import (
	"bytes"

	"github.com/mirte-robot/mirte-speed-control/msgs/geometry_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgs/std_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgOdometry struct {
	text string
	name string
}

func (t *_MsgOdometry) Text() string   { return t.text }
func (t *_MsgOdometry) Name() string   { return t.name }
func (t *_MsgOdometry) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgOdometry) NewMessage() ros.Message {
	return new(Odometry)
}

var (
	MsgOdometry = &_MsgOdometry{
		`# This represents an estimate of a position and velocity in free space.
# The pose in this message should be specified in the coordinate frame given by header.frame_id.
# The twist in this message should be specified in the coordinate frame given by the child_frame_id
Header header
string child_frame_id
geometry_msgs/PoseWithCovariance pose
geometry_msgs/TwistWithCovariance twist
`,
		"nav_msgs/Odometry",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgOdometry.name, MsgOdometry.text)
}

type Odometry struct {
	Header       std_msgs.Header                   `rosmsg:"header:Header"`
	ChildFrameId string                            `rosmsg:"child_frame_id:string"`
	Pose         geometry_msgs.PoseWithCovariance  `rosmsg:"pose:PoseWithCovariance"`
	Twist        geometry_msgs.TwistWithCovariance `rosmsg:"twist:TwistWithCovariance"`
}

func (m *Odometry) Type() ros.MessageType {
	return MsgOdometry
}

func (m *Odometry) Serialize(buf *bytes.Buffer) error {
	if err := m.Header.Serialize(buf); err != nil {
		return err
	}
	std_msgs.WriteString(buf, m.ChildFrameId)
	if err := m.Pose.Serialize(buf); err != nil {
		return err
	}
	return m.Twist.Serialize(buf)
}

func (m *Odometry) Deserialize(buf *bytes.Reader) error {
	if err := m.Header.Deserialize(buf); err != nil {
		return err
	}
	var err error
	if m.ChildFrameId, err = std_msgs.ReadString(buf); err != nil {
		return err
	}
	if err := m.Pose.Deserialize(buf); err != nil {
		return err
	}
	return m.Twist.Deserialize(buf)
}
