package geometry_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgPoint struct {
	text string
	name string
}

func (t *_MsgPoint) Text() string   { return t.text }
func (t *_MsgPoint) Name() string   { return t.name }
func (t *_MsgPoint) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgPoint) NewMessage() ros.Message {
	return new(Point)
}

var (
	MsgPoint = &_MsgPoint{
		`# This contains the position of a point in free space
float64 x
float64 y
float64 z
`,
		"geometry_msgs/Point",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgPoint.name, MsgPoint.text)
}

type Point struct {
	X float64 `rosmsg:"x:float64"`
	Y float64 `rosmsg:"y:float64"`
	Z float64 `rosmsg:"z:float64"`
}

func (m *Point) Type() ros.MessageType {
	return MsgPoint
}

// Every field is fixed-size, so the struct is written as one block.
func (m *Point) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m)
}

func (m *Point) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, m)
}
