package std_srvs

import (
	"bytes"
	"encoding/binary"

	"github.com/mirte-robot/mirte-speed-control/msgs/std_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgspec"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

type _MsgSetBoolRequest struct {
	text string
	name string
}

func (t *_MsgSetBoolRequest) Text() string            { return t.text }
func (t *_MsgSetBoolRequest) Name() string            { return t.name }
func (t *_MsgSetBoolRequest) MD5Sum() string          { return msgspec.MustMsgMD5(t.name) }
func (t *_MsgSetBoolRequest) NewMessage() ros.Message { return new(SetBoolRequest) }

type _MsgSetBoolResponse struct {
	text string
	name string
}

func (t *_MsgSetBoolResponse) Text() string            { return t.text }
func (t *_MsgSetBoolResponse) Name() string            { return t.name }
func (t *_MsgSetBoolResponse) MD5Sum() string          { return msgspec.MustMsgMD5(t.name) }
func (t *_MsgSetBoolResponse) NewMessage() ros.Message { return new(SetBoolResponse) }

var (
	MsgSetBoolRequest = &_MsgSetBoolRequest{
		"bool data # e.g. for hardware enabling / disabling",
		"std_srvs/SetBoolRequest",
	}
	MsgSetBoolResponse = &_MsgSetBoolResponse{
		`bool success   # indicate successful run of triggered service
string message # informational, e.g. for error messages
`,
		"std_srvs/SetBoolResponse",
	}
)

type SetBoolRequest struct {
	Data bool `rosmsg:"data:bool"`
}

func (m *SetBoolRequest) Type() ros.MessageType {
	return MsgSetBoolRequest
}

func (m *SetBoolRequest) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m.Data)
}

func (m *SetBoolRequest) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, &m.Data)
}

type SetBoolResponse struct {
	Success bool   `rosmsg:"success:bool"`
	Message string `rosmsg:"message:string"`
}

func (m *SetBoolResponse) Type() ros.MessageType {
	return MsgSetBoolResponse
}

func (m *SetBoolResponse) Serialize(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, m.Success); err != nil {
		return err
	}
	std_msgs.WriteString(buf, m.Message)
	return nil
}

func (m *SetBoolResponse) Deserialize(buf *bytes.Reader) error {
	if err := binary.Read(buf, binary.LittleEndian, &m.Success); err != nil {
		return err
	}
	var err error
	m.Message, err = std_msgs.ReadString(buf)
	return err
}

// Service type metadata
type _SrvSetBool struct {
	name    string
	text    string
	reqType ros.MessageType
	resType ros.MessageType
}

func (t *_SrvSetBool) Name() string                  { return t.name }
func (t *_SrvSetBool) MD5Sum() string                { return msgspec.MustSrvMD5(t.name) }
func (t *_SrvSetBool) Text() string                  { return t.text }
func (t *_SrvSetBool) RequestType() ros.MessageType  { return t.reqType }
func (t *_SrvSetBool) ResponseType() ros.MessageType { return t.resType }
func (t *_SrvSetBool) NewService() ros.Service {
	return new(SetBool)
}

var (
	SrvSetBool = &_SrvSetBool{
		"std_srvs/SetBool",
		MsgSetBoolRequest.text + "\n---\n" + MsgSetBoolResponse.text,
		MsgSetBoolRequest,
		MsgSetBoolResponse,
	}
)

func init() {
	msgspec.MustRegisterSrv(SrvSetBool.name, SrvSetBool.text)
}

type SetBool struct {
	Request  SetBoolRequest
	Response SetBoolResponse
}

func (s *SetBool) ReqMessage() ros.Message { return &s.Request }
func (s *SetBool) ResMessage() ros.Message { return &s.Response }
