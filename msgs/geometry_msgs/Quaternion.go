package geometry_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgQuaternion struct {
	text string
	name string
}

func (t *_MsgQuaternion) Text() string   { return t.text }
func (t *_MsgQuaternion) Name() string   { return t.name }
func (t *_MsgQuaternion) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgQuaternion) NewMessage() ros.Message {
	return new(Quaternion)
}

var (
	MsgQuaternion = &_MsgQuaternion{
		`# This represents an orientation in free space in quaternion form.

float64 x
float64 y
float64 z
float64 w
`,
		"geometry_msgs/Quaternion",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgQuaternion.name, MsgQuaternion.text)
}

type Quaternion struct {
	X float64 `rosmsg:"x:float64"`
	Y float64 `rosmsg:"y:float64"`
	Z float64 `rosmsg:"z:float64"`
	W float64 `rosmsg:"w:float64"`
}

func (m *Quaternion) Type() ros.MessageType {
	return MsgQuaternion
}

// Every field is fixed-size, so the struct is written as one block.
func (m *Quaternion) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m)
}

func (m *Quaternion) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, m)
}
