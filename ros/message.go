package ros

import (
	"bytes"
)

// MessageType describes a message definition: its name, full text and the
// MD5 sum both ends compare during the TCPROS handshake.
type MessageType interface {
	Text() string
	MD5Sum() string
	Name() string
	NewMessage() Message
}

type Message interface {
	Type() MessageType
	Serialize(buf *bytes.Buffer) error
	Deserialize(buf *bytes.Reader) error
}

// ServiceType is the metadata of a .srv definition.
type ServiceType interface {
	MD5Sum() string
	Name() string
	RequestType() MessageType
	ResponseType() MessageType
	NewService() Service
}

// Service pairs a request message with its response.
type Service interface {
	ReqMessage() Message
	ResMessage() Message
}

func serializeMessage(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
