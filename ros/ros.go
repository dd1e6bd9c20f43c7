// Package ros is a ROS1 node runtime: master and slave XML-RPC APIs,
// TCPROS topics and services, timers and the parameter server.
package ros

import (
	"time"

	"github.com/pkg/errors"
)

// ErrNotOK is returned when a node is asked to do work after shutdown.
var ErrNotOK = errors.New("node is shut down")

type Node interface {
	NewPublisher(topic string, msgType MessageType) (Publisher, error)
	// callback should be a function which takes 0, 1, or 2 arguments.
	// If it takes 0 arguments, it will simply be called without the
	// message.  1-argument functions are the normal case, and the
	// argument should be of the generated message type.  If the
	// function takes 2 arguments, the first argument should be of the
	// generated message type and the second argument should be of
	// type MessageEvent.
	NewSubscriber(topic string, msgType MessageType, callback interface{}) (Subscriber, error)
	NewServiceClient(service string, srvType ServiceType) ServiceClient
	// handler must be a function taking a pointer to the service type
	// and returning error.
	NewServiceServer(service string, srvType ServiceType, handler interface{}) (ServiceServer, error)
	// The callback runs on the spinning goroutine like every other
	// callback of the node.
	NewTimer(period time.Duration, callback func(TimerEvent)) Timer

	OK() bool
	SpinOnce()
	Spin()
	Shutdown()

	Name() string
	ResolveName(name string) string

	GetParam(name string) (interface{}, error)
	SetParam(name string, value interface{}) error
	HasParam(name string) (bool, error)
	SearchParam(name string) (string, error)
	DeleteParam(name string) error

	Logger() Logger

	NonRosArgs() []string
}

// NewNode registers nothing with the master yet; it resolves the node's
// name and environment, starts the slave API server and sets private
// parameters given on the command line.
func NewNode(name string, args []string) (Node, error) {
	node, err := newDefaultNode(name, args)
	if err != nil {
		return nil, err
	}
	return node, nil
}

type Publisher interface {
	Publish(msg Message) error
	GetNumSubscribers() int
	Shutdown()
}

type Subscriber interface {
	GetNumPublishers() int
	Shutdown()
}

// Optional second argument to a Subscriber callback.
type MessageEvent struct {
	PublisherName    string
	ReceiptTime      time.Time
	ConnectionHeader map[string]string
}

type ServiceServer interface {
	Shutdown()
}

type ServiceClient interface {
	Call(srv Service) error
	Shutdown()
}

// TimerEvent is passed to timer callbacks.
type TimerEvent struct {
	// Expected is when the callback was scheduled to run.
	Expected time.Time
	// Real is when the callback actually ran.
	Real time.Time
	// LastDuration is the time between the previous two callbacks.
	LastDuration time.Duration
}

type Timer interface {
	Stop()
}
