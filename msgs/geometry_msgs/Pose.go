package geometry_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgPose struct {
	text string
	name string
}

func (t *_MsgPose) Text() string   { return t.text }
func (t *_MsgPose) Name() string   { return t.name }
func (t *_MsgPose) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgPose) NewMessage() ros.Message {
	return new(Pose)
}

var (
	MsgPose = &_MsgPose{
		`# A representation of pose in free space, composed of position and orientation.
Point position
Quaternion orientation
`,
		"geometry_msgs/Pose",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgPose.name, MsgPose.text)
}

type Pose struct {
	Position    Point      `rosmsg:"position:Point"`
	Orientation Quaternion `rosmsg:"orientation:Quaternion"`
}

func (m *Pose) Type() ros.MessageType {
	return MsgPose
}

// Every field is fixed-size, so the struct is written as one block.
func (m *Pose) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m)
}

func (m *Pose) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, m)
}
