package mirte_msgs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgSetMotorSpeedRequest struct {
	text string
	name string
}

func (t *_MsgSetMotorSpeedRequest) Text() string            { return t.text }
func (t *_MsgSetMotorSpeedRequest) Name() string            { return t.name }
func (t *_MsgSetMotorSpeedRequest) MD5Sum() string          { return msgspec.MustMsgMD5(t.name) }
func (t *_MsgSetMotorSpeedRequest) NewMessage() ros.Message { return new(SetMotorSpeedRequest) }

type _MsgSetMotorSpeedResponse struct {
	text string
	name string
}

func (t *_MsgSetMotorSpeedResponse) Text() string            { return t.text }
func (t *_MsgSetMotorSpeedResponse) Name() string            { return t.name }
func (t *_MsgSetMotorSpeedResponse) MD5Sum() string          { return msgspec.MustMsgMD5(t.name) }
func (t *_MsgSetMotorSpeedResponse) NewMessage() ros.Message { return new(SetMotorSpeedResponse) }

var (
	MsgSetMotorSpeedRequest  = &_MsgSetMotorSpeedRequest{"int32 speed", "mirte_msgs/SetMotorSpeedRequest"}
	MsgSetMotorSpeedResponse = &_MsgSetMotorSpeedResponse{"bool status\n", "mirte_msgs/SetMotorSpeedResponse"}
)

// SetMotorSpeedRequest.Speed is a signed duty-cycle percentage.
type SetMotorSpeedRequest struct {
	Speed int32 `rosmsg:"speed:int32"`
}

func (m *SetMotorSpeedRequest) Type() ros.MessageType {
	return MsgSetMotorSpeedRequest
}

func (m *SetMotorSpeedRequest) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m.Speed)
}

func (m *SetMotorSpeedRequest) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, &m.Speed)
}

type SetMotorSpeedResponse struct {
	Status bool `rosmsg:"status:bool"`
}

func (m *SetMotorSpeedResponse) Type() ros.MessageType {
	return MsgSetMotorSpeedResponse
}

func (m *SetMotorSpeedResponse) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m.Status)
}

func (m *SetMotorSpeedResponse) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, &m.Status)
}

// Service type metadata
type _SrvSetMotorSpeed struct {
	name    string
	text    string
	reqType ros.MessageType
	resType ros.MessageType
}

func (t *_SrvSetMotorSpeed) Name() string                  { return t.name }
func (t *_SrvSetMotorSpeed) MD5Sum() string                { return msgspec.MustSrvMD5(t.name) }
func (t *_SrvSetMotorSpeed) Text() string                  { return t.text }
func (t *_SrvSetMotorSpeed) RequestType() ros.MessageType  { return t.reqType }
func (t *_SrvSetMotorSpeed) ResponseType() ros.MessageType { return t.resType }
func (t *_SrvSetMotorSpeed) NewService() ros.Service {
	return new(SetMotorSpeed)
}

var (
	SrvSetMotorSpeed = &_SrvSetMotorSpeed{
		"mirte_msgs/SetMotorSpeed",
		"int32 speed\n---\nbool status\n",
		MsgSetMotorSpeedRequest,
		MsgSetMotorSpeedResponse,
	}
)

func init() {
	msgspec.MustRegisterSrv(SrvSetMotorSpeed.name, SrvSetMotorSpeed.text)
}

type SetMotorSpeed struct {
	Request  SetMotorSpeedRequest
	Response SetMotorSpeedResponse
}

func (s *SetMotorSpeed) ReqMessage() ros.Message { return &s.Request }
func (s *SetMotorSpeed) ResMessage() ros.Message { return &s.Response }
