package ros

import (
	"bytes"
	"encoding/binary"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mirte-robot/mirte-speed-control/xmlrpc"
)

// fakeMaster is an in-process ROS master with just enough of the master
// and parameter APIs for node tests.
type fakeMaster struct {
	mutex       sync.Mutex
	params      map[string]interface{}
	publishers  map[string][]string
	subscribers map[string][]string
	services    map[string]string
	server      *httptest.Server
}

func newFakeMaster() *fakeMaster {
	m := &fakeMaster{
		params:      map[string]interface{}{"/rosdistro": "noetic"},
		publishers:  make(map[string][]string),
		subscribers: make(map[string][]string),
		services:    make(map[string]string),
	}
	ok := func(value interface{}) (interface{}, error) {
		return buildRosAPIResult(APIStatusSuccess, "", value), nil
	}
	fail := func(msg string) (interface{}, error) {
		return buildRosAPIResult(APIStatusError, msg, 0), nil
	}
	handler := xmlrpc.NewHandler(map[string]xmlrpc.Method{
		"registerPublisher": func(callerID, topic, topicType, callerAPI string) (interface{}, error) {
			m.mutex.Lock()
			m.publishers[topic] = appendUnique(m.publishers[topic], callerAPI)
			pubs := append([]string{}, m.publishers[topic]...)
			subs := append([]string{}, m.subscribers[topic]...)
			m.mutex.Unlock()
			m.notify(topic, pubs, subs)
			return ok(subs)
		},
		"unregisterPublisher": func(callerID, topic, callerAPI string) (interface{}, error) {
			m.mutex.Lock()
			m.publishers[topic] = remove(m.publishers[topic], callerAPI)
			pubs := append([]string{}, m.publishers[topic]...)
			subs := append([]string{}, m.subscribers[topic]...)
			m.mutex.Unlock()
			m.notify(topic, pubs, subs)
			return ok(1)
		},
		"registerSubscriber": func(callerID, topic, topicType, callerAPI string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			m.subscribers[topic] = appendUnique(m.subscribers[topic], callerAPI)
			return ok(append([]string{}, m.publishers[topic]...))
		},
		"unregisterSubscriber": func(callerID, topic, callerAPI string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			m.subscribers[topic] = remove(m.subscribers[topic], callerAPI)
			return ok(1)
		},
		"registerService": func(callerID, service, serviceAPI, callerAPI string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			m.services[service] = serviceAPI
			return ok(1)
		},
		"unregisterService": func(callerID, service, serviceAPI string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			if m.services[service] == serviceAPI {
				delete(m.services, service)
			}
			return ok(1)
		},
		"lookupService": func(callerID, service string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			if uri, found := m.services[service]; found {
				return ok(uri)
			}
			return fail("no provider")
		},
		"setParam": func(callerID, key string, value interface{}) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			m.params[key] = value
			return ok(0)
		},
		"getParam": func(callerID, key string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			if value, found := m.params[key]; found {
				return ok(value)
			}
			return fail("Parameter [" + key + "] is not set")
		},
		"hasParam": func(callerID, key string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			_, found := m.params[key]
			return ok(found)
		},
		"searchParam": func(callerID, key string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			name := "/" + strings.TrimPrefix(key, "/")
			if _, found := m.params[name]; found {
				return ok(name)
			}
			return fail("not found")
		},
		"deleteParam": func(callerID, key string) (interface{}, error) {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			if _, found := m.params[key]; !found {
				return fail("not set")
			}
			delete(m.params, key)
			return ok(0)
		},
	})
	m.server = httptest.NewServer(handler)
	return m
}

func (m *fakeMaster) URL() string {
	return m.server.URL
}

func (m *fakeMaster) Close() {
	m.server.Close()
}

func (m *fakeMaster) param(key string) (interface{}, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	value, found := m.params[key]
	return value, found
}

func (m *fakeMaster) notify(topic string, pubs []string, subs []string) {
	for _, sub := range subs {
		go callRosAPI(sub, "publisherUpdate", "/master", topic, pubs)
	}
}

func appendUnique(list []string, item string) []string {
	for _, x := range list {
		if x == item {
			return list
		}
	}
	return append(list, item)
}

func remove(list []string, item string) []string {
	result := []string{}
	for _, x := range list {
		if x != item {
			result = append(result, x)
		}
	}
	return result
}

func newTestNode(t *testing.T, m *fakeMaster, name string, extraArgs ...string) *defaultNode {
	t.Helper()
	args := append([]string{"__master:=" + m.URL(), "__ip:=127.0.0.1"}, extraArgs...)
	node, err := newDefaultNode(name, args)
	if err != nil {
		t.Fatal(err)
	}
	return node
}

// int32Msg mirrors std_msgs/Int32.
type int32Msg struct {
	Data int32
}

type int32MsgType struct{}

func (int32MsgType) Text() string        { return "int32 data\n" }
func (int32MsgType) MD5Sum() string      { return "da5909fbe378aeaf85e547e830cc1bb7" }
func (int32MsgType) Name() string        { return "std_msgs/Int32" }
func (int32MsgType) NewMessage() Message { return &int32Msg{} }

func (m *int32Msg) Type() MessageType { return int32MsgType{} }

func (m *int32Msg) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m.Data)
}

func (m *int32Msg) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, &m.Data)
}

// addTwoInts mirrors rospy_tutorials/AddTwoInts.
type addTwoIntsRequest struct {
	A, B int64
}

type addTwoIntsResponse struct {
	Sum int64
}

type addTwoIntsReqType struct{}

func (addTwoIntsReqType) Text() string        { return "int64 a\nint64 b\n" }
func (addTwoIntsReqType) MD5Sum() string      { return "36d09b846be0b371c5f190354dd3153e" }
func (addTwoIntsReqType) Name() string        { return "rospy_tutorials/AddTwoIntsRequest" }
func (addTwoIntsReqType) NewMessage() Message { return &addTwoIntsRequest{} }

type addTwoIntsResType struct{}

func (addTwoIntsResType) Text() string        { return "int64 sum\n" }
func (addTwoIntsResType) MD5Sum() string      { return "b88405221c77b1878a3cbbffff8428d7" }
func (addTwoIntsResType) Name() string        { return "rospy_tutorials/AddTwoIntsResponse" }
func (addTwoIntsResType) NewMessage() Message { return &addTwoIntsResponse{} }

func (m *addTwoIntsRequest) Type() MessageType { return addTwoIntsReqType{} }

func (m *addTwoIntsRequest) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, []int64{m.A, m.B})
}

func (m *addTwoIntsRequest) Deserialize(buf *bytes.Reader) error {
	if err := binary.Read(buf, binary.LittleEndian, &m.A); err != nil {
		return err
	}
	return binary.Read(buf, binary.LittleEndian, &m.B)
}

func (m *addTwoIntsResponse) Type() MessageType { return addTwoIntsResType{} }

func (m *addTwoIntsResponse) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, m.Sum)
}

func (m *addTwoIntsResponse) Deserialize(buf *bytes.Reader) error {
	return binary.Read(buf, binary.LittleEndian, &m.Sum)
}

type addTwoInts struct {
	Request  addTwoIntsRequest
	Response addTwoIntsResponse
}

type addTwoIntsType struct{}

func (addTwoIntsType) MD5Sum() string            { return "6a2e34150c00229791cc89ff309fff21" }
func (addTwoIntsType) Name() string              { return "rospy_tutorials/AddTwoInts" }
func (addTwoIntsType) RequestType() MessageType  { return addTwoIntsReqType{} }
func (addTwoIntsType) ResponseType() MessageType { return addTwoIntsResType{} }
func (addTwoIntsType) NewService() Service       { return &addTwoInts{} }

func (s *addTwoInts) ReqMessage() Message { return &s.Request }
func (s *addTwoInts) ResMessage() Message { return &s.Response }
