// Package std_msgs holds the std_msgs types the base controller uses.
package std_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgHeader struct {
	text string
	name string
}

func (t *_MsgHeader) Text() string   { return t.text }
func (t *_MsgHeader) Name() string   { return t.name }
func (t *_MsgHeader) MD5Sum() string { return msgspec.MustMsgMD5(t.name) }

func (t *_MsgHeader) NewMessage() ros.Message {
	return new(Header)
}

var (
	MsgHeader = &_MsgHeader{
		`# Standard metadata for higher-level stamped data types.
# This is generally used to communicate timestamped data
# in a particular coordinate frame.
#
# sequence ID: consecutively increasing ID
uint32 seq
#Two-integer timestamp that is expressed as:
# * stamp.sec: seconds (stamp_secs) since epoch
# * stamp.nsec: nanoseconds since stamp_secs
time stamp
#Frame this data is associated with
string frame_id
`,
		"std_msgs/Header",
	}
)

func init() {
	msgspec.Default.RegisterMsg(MsgHeader.name, MsgHeader.text)
}

type Header struct {
	Seq     uint32   `rosmsg:"seq:uint32"`
	Stamp   ros.Time `rosmsg:"stamp:time"`
	FrameId string   `rosmsg:"frame_id:string"`
}

func (m *Header) Type() ros.MessageType {
	return MsgHeader
}

func (m *Header) Serialize(buf *bytes.Buffer) error {
	binary.Write(buf, binary.LittleEndian, m.Seq)
	binary.Write(buf, binary.LittleEndian, m.Stamp.Sec)
	binary.Write(buf, binary.LittleEndian, m.Stamp.NSec)
	WriteString(buf, m.FrameId)
	return nil
}

func (m *Header) Deserialize(buf *bytes.Reader) error {
	if err := binary.Read(buf, binary.LittleEndian, &m.Seq); err != nil {
		return err
	}
	if err := binary.Read(buf, binary.LittleEndian, &m.Stamp.Sec); err != nil {
		return err
	}
	if err := binary.Read(buf, binary.LittleEndian, &m.Stamp.NSec); err != nil {
		return err
	}
	var err error
	m.FrameId, err = ReadString(buf)
	return err
}
