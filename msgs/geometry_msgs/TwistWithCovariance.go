package geometry_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgTwistWithCovariance struct {
	text string
	name string
}

func (t *_MsgTwistWithCovariance) Text() string   { return t.text }
func (t *_MsgTwistWithCovariance) Name() string   { return t.name }
func (t *_MsgTwistWithCovariance) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgTwistWithCovariance) NewMessage() ros.Message {
	return new(TwistWithCovariance)
}

var (
	MsgTwistWithCovariance = &_MsgTwistWithCovariance{
		`# This expresses velocity in free space with uncertainty.

Twist twist

# Row-major representation of the 6x6 covariance matrix
# The orientation parameters use a fixed-axis representation.
# In order, the parameters are:
# (x, y, z, rotation about X axis, rotation about Y axis, rotation about Z axis)
float64[36] covariance
`,
		"geometry_msgs/TwistWithCovariance",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgTwistWithCovariance.name, MsgTwistWithCovariance.text)
}

type TwistWithCovariance struct {
	Twist      Twist       `rosmsg:"twist:Twist"`
	Covariance [36]float64 `rosmsg:"covariance:float64[36]"`
}

func (m *TwistWithCovariance) Type() ros.MessageType {
	return MsgTwistWithCovariance
}

// Every field is fixed-size, so the struct is written as one block.
func (m *TwistWithCovariance) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m)
}

func (m *TwistWithCovariance) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, m)
}
