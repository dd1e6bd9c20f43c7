// Package mirte_msgs holds the Mirte telemetrix messages and services the
// base controller talks to.
package mirte_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgs/std_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgEncoder struct {
	text string
	name string
}

func (t *_MsgEncoder) Text() string   { return t.text }
func (t *_MsgEncoder) Name() string   { return t.name }
func (t *_MsgEncoder) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgEncoder) NewMessage() ros.Message {
	return new(Encoder)
}

var (
	MsgEncoder = &_MsgEncoder{
		`Header header
int32 value
`,
		"mirte_msgs/Encoder",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgEncoder.name, MsgEncoder.text)
}

// Encoder carries the tick count reported by a wheel encoder.
type Encoder struct {
	Header std_msgs.Header `rosmsg:"header:Header"`
	Value  int32           `rosmsg:"value:int32"`
}

func (m *Encoder) Type() ros.MessageType {
	return MsgEncoder
}

func (m *Encoder) Serialize(buf *bytes.Buffer) error {
	if err := m.Header.Serialize(buf); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, m.Value)
}

func (m *Encoder) Deserialize(buf *bytes.Reader) error {
	if err := m.Header.Deserialize(buf); err != nil {
		return err
	}
	return binary.Read(buf, binary.LittleEndian, &m.Value)
}
