package config

import (
	"github.com/pkg/errors"
)

// ParamSource is the part of ros.Node that configuration reads from.
type ParamSource interface {
	HasParam(name string) (bool, error)
	GetParam(name string) (interface{}, error)
}

// ApplyParams overrides fields with private parameters named like their
// YAML keys, nested keys joined with '/' (e.g. ~pid/p).
func (c *Config) ApplyParams(params ParamSource) error {
	floats := map[string]*float64{
		"~wheel_radius":             &c.WheelRadius,
		"~wheel_separation":         &c.WheelSeparation,
		"~control_rate":             &c.ControlRate,
		"~publish_rate":             &c.PublishRate,
		"~cmd_vel_timeout":          &c.CmdVelTimeout,
		"~max_wheel_speed":          &c.MaxWheelSpeed,
		"~linear/max_velocity":      &c.Linear.MaxVelocity,
		"~linear/max_acceleration":  &c.Linear.MaxAcceleration,
		"~angular/max_velocity":     &c.Angular.MaxVelocity,
		"~angular/max_acceleration": &c.Angular.MaxAcceleration,
		"~pid/p":                    &c.PID.P,
		"~pid/i":                    &c.PID.I,
		"~pid/d":                    &c.PID.D,
		"~pid/i_clamp":              &c.PID.IClamp,
		"~pid/output_min":           &c.PID.OutputMin,
		"~pid/output_max":           &c.PID.OutputMax,
	}
	for name, field := range floats {
		value, ok, err := floatParam(params, name)
		if err != nil {
			return err
		}
		if ok {
			*field = value
		}
	}

	ticks, ok, err := floatParam(params, "~ticks_per_revolution")
	if err != nil {
		return err
	}
	if ok {
		if ticks != float64(int(ticks)) {
			return errors.Errorf("~ticks_per_revolution must be an integer, got %v", ticks)
		}
		c.TicksPerRevolution = int(ticks)
	}

	strs := map[string]*string{
		"~odom_frame":           &c.OdomFrame,
		"~base_frame":           &c.BaseFrame,
		"~left_wheel_joint":     &c.LeftWheelJoint,
		"~right_wheel_joint":    &c.RightWheelJoint,
		"~names/cmd_vel":        &c.Names.CmdVel,
		"~names/odom":           &c.Names.Odom,
		"~names/joint_states":   &c.Names.JointStates,
		"~names/left_encoder":   &c.Names.LeftEncoder,
		"~names/right_encoder":  &c.Names.RightEncoder,
		"~names/left_motor":     &c.Names.LeftMotor,
		"~names/right_motor":    &c.Names.RightMotor,
		"~names/enable":         &c.Names.Enable,
		"~names/reset_odometry": &c.Names.ResetOdometry,
	}
	for name, field := range strs {
		value, ok, err := stringParam(params, name)
		if err != nil {
			return err
		}
		if ok {
			*field = value
		}
	}
	return nil
}

func lookupParam(params ParamSource, name string) (interface{}, bool, error) {
	if params == nil {
		return nil, false, nil
	}
	has, err := params.HasParam(name)
	if err != nil {
		return nil, false, errors.Wrapf(err, "hasParam %s", name)
	}
	if !has {
		return nil, false, nil
	}
	value, err := params.GetParam(name)
	if err != nil {
		return nil, false, errors.Wrapf(err, "getParam %s", name)
	}
	return value, true, nil
}

// floatParam accepts the int32 and float64 values the parameter server
// hands out for numbers.
func floatParam(params ParamSource, name string) (float64, bool, error) {
	value, ok, err := lookupParam(params, name)
	if !ok || err != nil {
		return 0, ok, err
	}
	switch v := value.(type) {
	case float64:
		return v, true, nil
	case int32:
		return float64(v), true, nil
	case int:
		return float64(v), true, nil
	}
	return 0, false, errors.Errorf("%s must be a number, got %T", name, value)
}

func stringParam(params ParamSource, name string) (string, bool, error) {
	value, ok, err := lookupParam(params, name)
	if !ok || err != nil {
		return "", ok, err
	}
	s, isString := value.(string)
	if !isString {
		return "", false, errors.Errorf("%s must be a string, got %T", name, value)
	}
	return s, true, nil
}
