// Package geometry_msgs holds the geometry_msgs types used for velocity
// commands and odometry.
package geometry_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgVector3 struct {
	text string
	name string
}

func (t *_MsgVector3) Text() string   { return t.text }
func (t *_MsgVector3) Name() string   { return t.name }
func (t *_MsgVector3) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgVector3) NewMessage() ros.Message {
	return new(Vector3)
}

var (
	MsgVector3 = &_MsgVector3{
		`# This represents a vector in free space.
# It is only meant to represent a direction. Therefore, it does not
# make sense to apply a translation to it.

float64 x
float64 y
float64 z
`,
		"geometry_msgs/Vector3",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgVector3.name, MsgVector3.text)
}

type Vector3 struct {
	X float64 `rosmsg:"x:float64"`
	Y float64 `rosmsg:"y:float64"`
	Z float64 `rosmsg:"z:float64"`
}

func (m *Vector3) Type() ros.MessageType {
	return MsgVector3
}

// Every field is fixed-size, so the struct is written as one block.
func (m *Vector3) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m)
}

func (m *Vector3) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, m)
}
