package hardware

import (
	"github.com/mirte-robot/mirte-speed-control/msgs/mirte_msgs"
	"github.com/mirte-robot/mirte-speed-control/ros"
	"github.com/pkg/errors"
)

// Motor drives one wheel with a signed duty cycle in percent.
type Motor interface {
	SetSpeed(percent int32) error
}

// serviceMotor calls a mirte_msgs/SetMotorSpeed service and skips calls
// that would repeat the last accepted value.
type serviceMotor struct {
	service string
	client  ros.ServiceClient
	last    int32
	sent    bool
}

func newServiceMotor(node ros.Node, service string) *serviceMotor {
	return &serviceMotor{
		service: service,
		client:  node.NewServiceClient(service, mirte_msgs.SrvSetMotorSpeed),
	}
}

// SetSpeed sends percent unless it was the last value the service accepted.
// A call the service answers with status false is an error.
func (m *serviceMotor) SetSpeed(percent int32) error {
	if m.sent && m.last == percent {
		return nil
	}
	var srv mirte_msgs.SetMotorSpeed
	srv.Request.Speed = percent
	if err := m.client.Call(&srv); err != nil {
		return errors.Wrapf(err, "set speed %d on %s", percent, m.service)
	}
	if !srv.Response.Status {
		return errors.Errorf("%s rejected speed %d", m.service, percent)
	}
	m.last = percent
	m.sent = true
	return nil
}

// Shutdown releases the service client; later calls fail.
func (m *serviceMotor) Shutdown() {
	m.client.Shutdown()
}
