// Package sensor_msgs holds sensor_msgs/JointState.
package sensor_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgs/std_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgJointState struct {
	text string
	name string
}

func (t *_MsgJointState) Text() string   { return t.text }
func (t *_MsgJointState) Name() string   { return t.name }
func (t *_MsgJointState) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgJointState) NewMessage() ros.Message {
	m := new(JointState)
	m.Name = []string{}
	m.Position = []float64{}
	m.Velocity = []float64{}
	m.Effort = []float64{}
	return m
}

var (
	MsgJointState = &_MsgJointState{
		`# This is a message that holds data to describe the state of a set of torque controlled joints.
#
# The state of each joint (revolute or prismatic) is defined by:
#  * the position of the joint (rad or m),
#  * the velocity of the joint (rad/s or m/s) and
#  * the effort that is applied in the joint (Nm or N).
#
# All arrays in this message should have the same size, or be empty.
Header header

string[] name
float64[] position
float64[] velocity
float64[] effort
`,
		"sensor_msgs/JointState",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgJointState.name, MsgJointState.text)
}

type JointState struct {
	Header   std_msgs.Header `rosmsg:"header:Header"`
	Name     []string        `rosmsg:"name:string[]"`
	Position []float64       `rosmsg:"position:float64[]"`
	Velocity []float64       `rosmsg:"velocity:float64[]"`
	Effort   []float64       `rosmsg:"effort:float64[]"`
}

func (m *JointState) Type() ros.MessageType {
	return MsgJointState
}

func (m *JointState) Serialize(buf *bytes.Buffer) error {
	if err := m.Header.Serialize(buf); err != nil {
		return err
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(m.Name)))
	for _, name := range m.Name {
		std_msgs.WriteString(buf, name)
	}
	for _, values := range [][]float64{m.Position, m.Velocity, m.Effort} {
		binary.Write(buf, binary.LittleEndian, uint32(len(values)))
		binary.Write(buf, binary.LittleEndian, values)
	}
	return nil
}

func (m *JointState) Deserialize(buf *bytes.Reader) error {
	if err := m.Header.Deserialize(buf); err != nil {
		return err
	}
	size, err := std_msgs.ReadArrayLen(buf, 4)
	if err != nil {
		return err
	}
	m.Name = make([]string, size)
	for i := range m.Name {
		if m.Name[i], err = std_msgs.ReadString(buf); err != nil {
			return err
		}
	}
	for _, values := range []*[]float64{&m.Position, &m.Velocity, &m.Effort} {
		size, err := std_msgs.ReadArrayLen(buf, 8)
		if err != nil {
			return err
		}
		*values = make([]float64, size)
		if err := binary.Read(buf, binary.LittleEndian, *values); err != nil {
			return err
		}
	}
	return nil
}
