package geometry_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgPoseWithCovariance struct {
	text string
	name string
}

func (t *_MsgPoseWithCovariance) Text() string   { return t.text }
func (t *_MsgPoseWithCovariance) Name() string   { return t.name }
func (t *_MsgPoseWithCovariance) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgPoseWithCovariance) NewMessage() ros.Message {
	return new(PoseWithCovariance)
}

var (
	MsgPoseWithCovariance = &_MsgPoseWithCovariance{
		`# This represents a pose in free space with uncertainty.

Pose pose

# Row-major representation of the 6x6 covariance matrix
# The orientation parameters use a fixed-axis representation.
# In order, the parameters are:
# (x, y, z, rotation about X axis, rotation about Y axis, rotation about Z axis)
float64[36] covariance
`,
		"geometry_msgs/PoseWithCovariance",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgPoseWithCovariance.name, MsgPoseWithCovariance.text)
}

type PoseWithCovariance struct {
	Pose       Pose        `rosmsg:"pose:Pose"`
	Covariance [36]float64 `rosmsg:"covariance:float64[36]"`
}

func (m *PoseWithCovariance) Type() ros.MessageType {
	return MsgPoseWithCovariance
}

// Every field is fixed-size, so the struct is written as one block.
func (m *PoseWithCovariance) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m)
}

func (m *PoseWithCovariance) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, m)
}
