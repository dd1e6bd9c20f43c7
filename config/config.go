// Package config holds the base controller settings. Values are layered:
// built-in defaults, then a YAML file, then private ROS parameters.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	yaml "go.yaml.in/yaml/v2"
)

// Limit bounds a velocity and its rate of change. Zero disables a bound.
type Limit struct {
	MaxVelocity     float64 `yaml:"max_velocity"`
	MaxAcceleration float64 `yaml:"max_acceleration"`
}

type PIDGains struct {
	P         float64 `yaml:"p"`
	I         float64 `yaml:"i"`
	D         float64 `yaml:"d"`
	IClamp    float64 `yaml:"i_clamp"`
	OutputMin float64 `yaml:"output_min"`
	OutputMax float64 `yaml:"output_max"`
}

// Names are resolved by the node, so relative and private names work.
type Names struct {
	CmdVel        string `yaml:"cmd_vel"`
	Odom          string `yaml:"odom"`
	JointStates   string `yaml:"joint_states"`
	LeftEncoder   string `yaml:"left_encoder"`
	RightEncoder  string `yaml:"right_encoder"`
	LeftMotor     string `yaml:"left_motor"`
	RightMotor    string `yaml:"right_motor"`
	Enable        string `yaml:"enable"`
	ResetOdometry string `yaml:"reset_odometry"`
}

// Config is the complete controller configuration.
type Config struct {
	WheelRadius        float64 `yaml:"wheel_radius"`
	WheelSeparation    float64 `yaml:"wheel_separation"`
	TicksPerRevolution int     `yaml:"ticks_per_revolution"`

	// Hz
	ControlRate float64 `yaml:"control_rate"`

	// Hz; zero publishes every control cycle.
	PublishRate float64 `yaml:"publish_rate"`

	// Seconds without a velocity command before it is zeroed.
	CmdVelTimeout float64 `yaml:"cmd_vel_timeout"`

	// rad/s at 100% motor output; scales the feed-forward term.
	MaxWheelSpeed float64 `yaml:"max_wheel_speed"`

	Linear  Limit    `yaml:"linear"`
	Angular Limit    `yaml:"angular"`
	PID     PIDGains `yaml:"pid"`
	Names   Names    `yaml:"names"`

	OdomFrame       string `yaml:"odom_frame"`
	BaseFrame       string `yaml:"base_frame"`
	LeftWheelJoint  string `yaml:"left_wheel_joint"`
	RightWheelJoint string `yaml:"right_wheel_joint"`

	// Diagonals of the 6x6 covariance matrices published with odometry.
	PoseCovariance  [6]float64 `yaml:"pose_covariance_diagonal,flow"`
	TwistCovariance [6]float64 `yaml:"twist_covariance_diagonal,flow"`
}

// Default returns the configuration of a stock Mirte robot.
func Default() *Config {
	return &Config{
		WheelRadius:        0.032,
		WheelSeparation:    0.145,
		TicksPerRevolution: 40,
		ControlRate:        20,
		CmdVelTimeout:      0.5,
		MaxWheelSpeed:      12,
		Linear:             Limit{MaxVelocity: 0.5, MaxAcceleration: 1.0},
		Angular:            Limit{MaxVelocity: 3.0, MaxAcceleration: 6.0},
		PID: PIDGains{
			P:         4.0,
			I:         8.0,
			IClamp:    50,
			OutputMin: -100,
			OutputMax: 100,
		},
		Names: Names{
			CmdVel:        "/cmd_vel",
			Odom:          "/odom",
			JointStates:   "/joint_states",
			LeftEncoder:   "/mirte/encoder/left",
			RightEncoder:  "/mirte/encoder/right",
			LeftMotor:     "/mirte/set_left_speed",
			RightMotor:    "/mirte/set_right_speed",
			Enable:        "~enable",
			ResetOdometry: "~reset_odometry",
		},
		OdomFrame:       "odom",
		BaseFrame:       "base_link",
		LeftWheelJoint:  "left_wheel_joint",
		RightWheelJoint: "right_wheel_joint",
		PoseCovariance:  [6]float64{0.001, 0.001, 1e6, 1e6, 1e6, 0.03},
		TwistCovariance: [6]float64{0.001, 0.001, 1e6, 1e6, 1e6, 0.03},
	}
}

// Environment is read from MIRTE_* variables.
type Environment struct {
	ConfigFile  string `env:"MIRTE_BASE_CONFIG"`
	MetricsAddr string `env:"MIRTE_METRICS_ADDR"`
	LogLevel    string `env:"MIRTE_LOG_LEVEL" envDefault:"info"`
}

func LoadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "parse environment")
	}
	return e, nil
}

// LoadFile overlays the YAML file at path onto c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file named by
// ~config_file or MIRTE_BASE_CONFIG, and private parameters, then
// validates it.
func Load(params ParamSource, e Environment) (*Config, error) {
	c := Default()

	path := e.ConfigFile
	if p, ok, err := stringParam(params, "~config_file"); err != nil {
		return nil, err
	} else if ok {
		path = p
	}
	if len(path) > 0 {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := c.ApplyParams(params); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Period returns the control cycle in seconds.
func (c *Config) Period() float64 {
	return 1 / c.ControlRate
}

// EffectivePublishRate is PublishRate, or ControlRate when unset.
func (c *Config) EffectivePublishRate() float64 {
	if c.PublishRate <= 0 || c.PublishRate > c.ControlRate {
		return c.ControlRate
	}
	return c.PublishRate
}

// Validate rejects configurations the controller cannot run with.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"wheel_radius", c.WheelRadius},
		{"wheel_separation", c.WheelSeparation},
		{"ticks_per_revolution", float64(c.TicksPerRevolution)},
		{"control_rate", c.ControlRate},
		{"cmd_vel_timeout", c.CmdVelTimeout},
		{"max_wheel_speed", c.MaxWheelSpeed},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return errors.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"publish_rate", c.PublishRate},
		{"linear.max_velocity", c.Linear.MaxVelocity},
		{"linear.max_acceleration", c.Linear.MaxAcceleration},
		{"angular.max_velocity", c.Angular.MaxVelocity},
		{"angular.max_acceleration", c.Angular.MaxAcceleration},
		{"pid.i_clamp", c.PID.IClamp},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return errors.Errorf("%s must not be negative, got %v", p.name, p.value)
		}
	}

	if c.PID.OutputMin >= c.PID.OutputMax {
		return errors.Errorf("pid.output_min (%v) must be below pid.output_max (%v)", c.PID.OutputMin, c.PID.OutputMax)
	}
	if c.PID.OutputMin < -100 || c.PID.OutputMax > 100 {
		return errors.Errorf("pid output limits must lie within [-100, 100]")
	}

	names := map[string]string{
		"names.cmd_vel":        c.Names.CmdVel,
		"names.odom":           c.Names.Odom,
		"names.joint_states":   c.Names.JointStates,
		"names.left_encoder":   c.Names.LeftEncoder,
		"names.right_encoder":  c.Names.RightEncoder,
		"names.left_motor":     c.Names.LeftMotor,
		"names.right_motor":    c.Names.RightMotor,
		"names.enable":         c.Names.Enable,
		"names.reset_odometry": c.Names.ResetOdometry,
		"odom_frame":           c.OdomFrame,
		"base_frame":           c.BaseFrame,
		"left_wheel_joint":     c.LeftWheelJoint,
		"right_wheel_joint":    c.RightWheelJoint,
	}
	for key, value := range names {
		if len(value) == 0 {
			return errors.Errorf("%s must not be empty", key)
		}
	}
	return nil
}
