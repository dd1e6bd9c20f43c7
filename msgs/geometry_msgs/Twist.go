package geometry_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgTwist struct {
	text string
	name string
}

func (t *_MsgTwist) Text() string   { return t.text }
func (t *_MsgTwist) Name() string   { return t.name }
func (t *_MsgTwist) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgTwist) NewMessage() ros.Message {
	return new(Twist)
}

var (
	MsgTwist = &_MsgTwist{
		`# This expresses velocity in free space broken into its linear and angular parts.
Vector3  linear
Vector3  angular
`,
		"geometry_msgs/Twist",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgTwist.name, MsgTwist.text)
}

type Twist struct {
	Linear  Vector3 `rosmsg:"linear:Vector3"`
	Angular Vector3 `rosmsg:"angular:Vector3"`
}

func (m *Twist) Type() ros.MessageType {
	return MsgTwist
}

// Every field is fixed-size, so the struct is written as one block.
func (m *Twist) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m)
}

func (m *Twist) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, m)
}
