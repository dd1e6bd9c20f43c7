// Package hardware is the Mirte base hardware interface. It turns velocity
// commands into motor outputs through a per-wheel feed-forward and PID
// loop, reads wheel encoders back into joint state and publishes odometry.
//
// Every callback runs on the node's spinning goroutine, so RobotHW holds
// no locks.
package hardware

import (
	"math"
	"time"

	"github.com/mirte-robot/mirte-speed-control/config"
	"github.com/mirte-robot/mirte-speed-control/control"
	"github.com/mirte-robot/mirte-speed-control/metrics"
	"github.com/mirte-robot/mirte-speed-control/msgs/geometry_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgs/mirte_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgs/nav_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgs/sensor_msgs"
	"github.com/mirte-robot/mirte-speed-control/msgs/std_srvs"
	"github.com/mirte-robot/mirte-speed-control/ros"
	"github.com/pkg/errors"
)

const (
	Left = iota
	Right
)

var wheelNames = [2]string{"left", "right"}

// Option configures a RobotHW built by New.
type Option func(hw *RobotHW)

// WithMotors replaces the service-backed motors.
func WithMotors(left, right Motor) Option {
	return func(hw *RobotHW) {
		hw.motors = [2]Motor{left, right}
	}
}

// WithMetrics records the control loop on m instead of a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(hw *RobotHW) {
		hw.metrics = m
	}
}

// WithClock replaces time.Now as the source of command timestamps.
func WithClock(now func() time.Time) Option {
	return func(hw *RobotHW) {
		hw.now = now
	}
}

// RobotHW is the hardware interface of a Mirte base: two wheel joints,
// their motors and encoders, and the odometry derived from them.
type RobotHW struct {
	node    ros.Node
	cfg     *config.Config
	logger  ros.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	drive      control.DiffDrive
	odom       control.Odometry
	linear     control.SpeedLimiter
	angular    control.SpeedLimiter
	pids       [2]control.PID
	joints     [2]*Joint
	motors     [2]Motor
	radPerTick float64

	enabled    bool
	cmdLinear  float64
	cmdAngular float64
	lastCmd    time.Time
	timedOut   bool

	lastUpdate  time.Time
	lastPublish time.Time
	seq         uint32

	odomPub     ros.Publisher
	jointPub    ros.Publisher
	subscribers []ros.Subscriber
	servers     []ros.ServiceServer
	timer       ros.Timer
	closed      bool
}

// New wires the hardware interface to node: it advertises odometry and
// joint states, subscribes to velocity commands and encoders, offers the
// enable and reset services and starts the control timer.
func New(node ros.Node, cfg *config.Config, opts ...Option) (*RobotHW, error) {
	hw := &RobotHW{
		node:   node,
		cfg:    cfg,
		logger: node.Logger(),
		now:    time.Now,
		drive: control.DiffDrive{
			WheelRadius:     cfg.WheelRadius,
			WheelSeparation: cfg.WheelSeparation,
		},
		linear: control.SpeedLimiter{
			MaxVelocity:     cfg.Linear.MaxVelocity,
			MaxAcceleration: cfg.Linear.MaxAcceleration,
		},
		angular: control.SpeedLimiter{
			MaxVelocity:     cfg.Angular.MaxVelocity,
			MaxAcceleration: cfg.Angular.MaxAcceleration,
		},
		joints: [2]*Joint{
			{Name: cfg.LeftWheelJoint},
			{Name: cfg.RightWheelJoint},
		},
		radPerTick: 2 * math.Pi / float64(cfg.TicksPerRevolution),
		enabled:    true,
	}
	for i := range hw.pids {
		hw.pids[i] = control.PID{
			P:         cfg.PID.P,
			I:         cfg.PID.I,
			D:         cfg.PID.D,
			IClamp:    cfg.PID.IClamp,
			OutputMin: cfg.PID.OutputMin,
			OutputMax: cfg.PID.OutputMax,
		}
	}
	for _, opt := range opts {
		opt(hw)
	}
	if hw.metrics == nil {
		hw.metrics = metrics.New()
	}
	if hw.motors[Left] == nil || hw.motors[Right] == nil {
		hw.motors = [2]Motor{
			newServiceMotor(node, cfg.Names.LeftMotor),
			newServiceMotor(node, cfg.Names.RightMotor),
		}
	}

	if err := hw.connect(); err != nil {
		hw.shutdownTopics()
		return nil, err
	}

	period := time.Duration(cfg.Period() * float64(time.Second))
	hw.timer = node.NewTimer(period, hw.onTimer)
	hw.logger.Infof("base controller running at %g Hz (radius %g m, separation %g m, %d ticks/rev)",
		cfg.ControlRate, cfg.WheelRadius, cfg.WheelSeparation, cfg.TicksPerRevolution)
	return hw, nil
}

func (hw *RobotHW) connect() error {
	var err error
	if hw.odomPub, err = hw.node.NewPublisher(hw.cfg.Names.Odom, nav_msgs.MsgOdometry); err != nil {
		return errors.Wrap(err, "advertise odometry")
	}
	if hw.jointPub, err = hw.node.NewPublisher(hw.cfg.Names.JointStates, sensor_msgs.MsgJointState); err != nil {
		return errors.Wrap(err, "advertise joint states")
	}

	subscriptions := []struct {
		topic    string
		msgType  ros.MessageType
		callback interface{}
	}{
		{hw.cfg.Names.CmdVel, geometry_msgs.MsgTwist, hw.onCmdVel},
		{hw.cfg.Names.LeftEncoder, mirte_msgs.MsgEncoder, hw.encoderCallback(Left)},
		{hw.cfg.Names.RightEncoder, mirte_msgs.MsgEncoder, hw.encoderCallback(Right)},
	}
	for _, s := range subscriptions {
		sub, err := hw.node.NewSubscriber(s.topic, s.msgType, s.callback)
		if err != nil {
			return errors.Wrapf(err, "subscribe %s", s.topic)
		}
		hw.subscribers = append(hw.subscribers, sub)
	}

	services := []struct {
		name    string
		srvType ros.ServiceType
		handler interface{}
	}{
		{hw.cfg.Names.Enable, std_srvs.SrvSetBool, hw.onEnable},
		{hw.cfg.Names.ResetOdometry, std_srvs.SrvEmpty, hw.onResetOdometry},
	}
	for _, s := range services {
		server, err := hw.node.NewServiceServer(s.name, s.srvType, s.handler)
		if err != nil {
			return errors.Wrapf(err, "advertise service %s", s.name)
		}
		hw.servers = append(hw.servers, server)
	}
	return nil
}

// Joint returns the state of the Left or Right wheel.
func (hw *RobotHW) Joint(wheel int) *Joint {
	return hw.joints[wheel]
}

// Enabled reports whether velocity commands reach the motors.
func (hw *RobotHW) Enabled() bool {
	return hw.enabled
}

// Pose returns the integrated odometry pose.
func (hw *RobotHW) Pose() (x, y, heading float64) {
	return hw.odom.Pose()
}

func (hw *RobotHW) onCmdVel(msg *geometry_msgs.Twist) {
	if !hw.enabled {
		hw.logger.Debug("ignoring velocity command while disabled")
		return
	}
	hw.cmdLinear = msg.Linear.X
	hw.cmdAngular = msg.Angular.Z
	hw.lastCmd = hw.now()
	if hw.timedOut {
		hw.logger.Info("velocity commands resumed")
		hw.timedOut = false
	}
}

func (hw *RobotHW) encoderCallback(wheel int) func(*mirte_msgs.Encoder) {
	return func(msg *mirte_msgs.Encoder) {
		hw.joints[wheel].ApplyTicks(msg.Value)
	}
}

func (hw *RobotHW) onEnable(srv *std_srvs.SetBool) error {
	hw.setEnabled(srv.Request.Data)
	srv.Response.Success = true
	if hw.enabled {
		srv.Response.Message = "motors enabled"
	} else {
		srv.Response.Message = "motors disabled"
	}
	return nil
}

func (hw *RobotHW) onResetOdometry(srv *std_srvs.Empty) error {
	hw.odom.Reset()
	hw.logger.Info("odometry reset")
	return nil
}

func (hw *RobotHW) setEnabled(enabled bool) {
	if enabled == hw.enabled {
		return
	}
	hw.enabled = enabled
	hw.cmdLinear, hw.cmdAngular = 0, 0
	hw.lastCmd = time.Time{}
	hw.timedOut = false
	if enabled {
		hw.logger.Info("motors enabled")
		return
	}
	hw.logger.Info("motors disabled")
	hw.linear.Reset()
	hw.angular.Reset()
	for i, j := range hw.joints {
		j.Command = 0
		j.Output = 0
		hw.pids[i].Reset()
	}
	hw.write()
}

func (hw *RobotHW) onTimer(event ros.TimerEvent) {
	hw.update(event.Real)
}

// update runs one control cycle at time now.
func (hw *RobotHW) update(now time.Time) {
	if hw.closed {
		return
	}
	start := time.Now()
	var dt float64
	if !hw.lastUpdate.IsZero() {
		dt = now.Sub(hw.lastUpdate).Seconds()
	}
	hw.lastUpdate = now

	hw.read(dt)

	linear, angular := hw.command(now, dt)
	left, right := hw.drive.WheelSpeeds(linear, angular)
	hw.joints[Left].Command = left
	hw.joints[Right].Command = right
	for i := range hw.joints {
		hw.control(i, dt)
	}
	hw.write()

	measuredLinear, measuredAngular := hw.drive.BodyTwist(hw.joints[Left].Velocity, hw.joints[Right].Velocity)
	hw.odom.Integrate(measuredLinear, measuredAngular, dt)

	if hw.publishDue(now) {
		hw.publish(now)
	}
	hw.metrics.ObserveControlLoop(time.Since(start))
}

func (hw *RobotHW) read(dt float64) {
	for _, j := range hw.joints {
		j.read(dt, hw.radPerTick)
	}
}

// command returns the limited body velocity to drive at.
func (hw *RobotHW) command(now time.Time, dt float64) (float64, float64) {
	if !hw.enabled {
		return 0, 0
	}
	timeout := time.Duration(hw.cfg.CmdVelTimeout * float64(time.Second))
	if !hw.lastCmd.IsZero() && now.Sub(hw.lastCmd) > timeout {
		if !hw.timedOut {
			hw.logger.Warnf("no velocity command for %v, stopping", timeout)
			hw.metrics.CmdVelTimedOut()
			hw.timedOut = true
		}
		hw.cmdLinear, hw.cmdAngular = 0, 0
	}
	return hw.linear.Limit(hw.cmdLinear, dt), hw.angular.Limit(hw.cmdAngular, dt)
}

// control sets the motor output of one wheel: a feed-forward term scaled
// by the maximum wheel speed plus a PID correction on the velocity error.
func (hw *RobotHW) control(wheel int, dt float64) {
	j := hw.joints[wheel]
	pid := &hw.pids[wheel]
	hw.metrics.SetWheel(wheelNames[wheel], j.Command, j.Velocity)
	if j.Command == 0 {
		pid.Reset()
		j.Output = 0
		return
	}
	feedForward := j.Command / hw.cfg.MaxWheelSpeed * 100
	correction := pid.Update(j.Command-j.Velocity, dt)
	j.Output = percent(feedForward + correction)
}

func (hw *RobotHW) write() {
	for i, j := range hw.joints {
		if err := hw.motors[i].SetSpeed(j.Output); err != nil {
			hw.logger.Warnf("%s motor: %v", wheelNames[i], err)
			hw.metrics.MotorCallFailed(wheelNames[i])
			continue
		}
		hw.metrics.SetMotorCommand(wheelNames[i], j.Output)
	}
}

func (hw *RobotHW) publishDue(now time.Time) bool {
	if hw.lastPublish.IsZero() {
		return true
	}
	// Allow half a control period of timer jitter.
	interval := 1/hw.cfg.EffectivePublishRate() - hw.cfg.Period()/2
	return now.Sub(hw.lastPublish).Seconds() >= interval
}

func (hw *RobotHW) publish(now time.Time) {
	hw.lastPublish = now
	hw.seq++
	stamp := ros.TimeFromGo(now)
	if err := hw.odomPub.Publish(hw.odometryMessage(stamp)); err != nil {
		hw.logger.Warnf("publish odometry: %v", err)
	}
	if err := hw.jointPub.Publish(hw.jointStateMessage(stamp)); err != nil {
		hw.logger.Warnf("publish joint states: %v", err)
	}
}

// Close stops both motors and withdraws the interface's topics and
// services. The node itself is left running.
func (hw *RobotHW) Close() {
	if hw.closed {
		return
	}
	hw.closed = true
	if hw.timer != nil {
		hw.timer.Stop()
	}
	for i, j := range hw.joints {
		j.Command = 0
		j.Output = 0
		if err := hw.motors[i].SetSpeed(0); err != nil {
			hw.logger.Warnf("stop %s motor: %v", wheelNames[i], err)
		}
	}
	hw.shutdownTopics()
	for _, m := range hw.motors {
		if sm, ok := m.(*serviceMotor); ok {
			sm.Shutdown()
		}
	}
	hw.logger.Info("base controller stopped")
}

func (hw *RobotHW) shutdownTopics() {
	for _, s := range hw.subscribers {
		s.Shutdown()
	}
	hw.subscribers = nil
	for _, s := range hw.servers {
		s.Shutdown()
	}
	hw.servers = nil
	for _, p := range []ros.Publisher{hw.odomPub, hw.jointPub} {
		if p != nil {
			p.Shutdown()
		}
	}
	hw.odomPub, hw.jointPub = nil, nil
}
