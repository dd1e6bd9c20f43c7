package hardware

import (
	"time"

	"github.com/mirte-robot/mirte-speed-control/ros"
	"github.com/pkg/errors"
)

// fakeNode records what the hardware interface registers and lets tests
// invoke callbacks directly, standing in for the spinning goroutine.
type fakeNode struct {
	publishers  map[string]*fakePublisher
	subscribers map[string]*fakeSubscriber
	servers     map[string]*fakeServer
	clients     map[string]*fakeClient
	timers      []*fakeTimer

	failPublisher string
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		publishers:  make(map[string]*fakePublisher),
		subscribers: make(map[string]*fakeSubscriber),
		servers:     make(map[string]*fakeServer),
		clients:     make(map[string]*fakeClient),
	}
}

func (n *fakeNode) NewPublisher(topic string, msgType ros.MessageType) (ros.Publisher, error) {
	if topic == n.failPublisher {
		return nil, errors.New("master unreachable")
	}
	pub := &fakePublisher{msgType: msgType}
	n.publishers[topic] = pub
	return pub, nil
}

func (n *fakeNode) NewSubscriber(topic string, msgType ros.MessageType, callback interface{}) (ros.Subscriber, error) {
	sub := &fakeSubscriber{msgType: msgType, callback: callback}
	n.subscribers[topic] = sub
	return sub, nil
}

func (n *fakeNode) NewServiceClient(service string, srvType ros.ServiceType) ros.ServiceClient {
	client := &fakeClient{}
	n.clients[service] = client
	return client
}

func (n *fakeNode) NewServiceServer(service string, srvType ros.ServiceType, handler interface{}) (ros.ServiceServer, error) {
	server := &fakeServer{srvType: srvType, handler: handler}
	n.servers[service] = server
	return server, nil
}

func (n *fakeNode) NewTimer(period time.Duration, callback func(ros.TimerEvent)) ros.Timer {
	timer := &fakeTimer{period: period, callback: callback}
	n.timers = append(n.timers, timer)
	return timer
}

func (n *fakeNode) OK() bool                                      { return true }
func (n *fakeNode) SpinOnce()                                     {}
func (n *fakeNode) Spin()                                         {}
func (n *fakeNode) Shutdown()                                     {}
func (n *fakeNode) Name() string                                  { return "/my_robot_base_node" }
func (n *fakeNode) ResolveName(name string) string                { return name }
func (n *fakeNode) GetParam(name string) (interface{}, error)     { return nil, errors.New("no params") }
func (n *fakeNode) SetParam(name string, value interface{}) error { return nil }
func (n *fakeNode) HasParam(name string) (bool, error)            { return false, nil }
func (n *fakeNode) SearchParam(name string) (string, error)       { return "", nil }
func (n *fakeNode) DeleteParam(name string) error                 { return nil }
func (n *fakeNode) Logger() ros.Logger                            { return ros.DefaultLogger() }
func (n *fakeNode) NonRosArgs() []string                          { return nil }

type fakePublisher struct {
	msgType  ros.MessageType
	messages []ros.Message
	shutdown bool
}

func (p *fakePublisher) Publish(msg ros.Message) error {
	if p.shutdown {
		return ros.ErrNotOK
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) GetNumSubscribers() int { return 0 }
func (p *fakePublisher) Shutdown()              { p.shutdown = true }

type fakeSubscriber struct {
	msgType  ros.MessageType
	callback interface{}
	shutdown bool
}

func (s *fakeSubscriber) GetNumPublishers() int { return 0 }
func (s *fakeSubscriber) Shutdown()             { s.shutdown = true }

type fakeServer struct {
	srvType  ros.ServiceType
	handler  interface{}
	shutdown bool
}

func (s *fakeServer) Shutdown() { s.shutdown = true }

type fakeClient struct {
	calls    []ros.Service
	err      error
	respond  func(srv ros.Service)
	shutdown bool
}

func (c *fakeClient) Call(srv ros.Service) error {
	if c.shutdown {
		return ros.ErrNotOK
	}
	c.calls = append(c.calls, srv)
	if c.err != nil {
		return c.err
	}
	if c.respond != nil {
		c.respond(srv)
	}
	return nil
}

func (c *fakeClient) Shutdown() { c.shutdown = true }

type fakeTimer struct {
	period   time.Duration
	callback func(ros.TimerEvent)
	stopped  bool
}

func (t *fakeTimer) Stop() { t.stopped = true }

type fakeMotor struct {
	speeds []int32
	err    error
}

func (m *fakeMotor) SetSpeed(percent int32) error {
	m.speeds = append(m.speeds, percent)
	return m.err
}

func (m *fakeMotor) last() int32 {
	if len(m.speeds) == 0 {
		return -1000
	}
	return m.speeds[len(m.speeds)-1]
}
