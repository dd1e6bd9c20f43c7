// Command mirte_base runs the Mirte base controller node: it drives the
// wheel motors from /cmd_vel and publishes odometry until it is shut down.
package main

import (
	"context"
	"os"

	"github.com/mirte-robot/mirte-speed-control/config"
	"github.com/mirte-robot/mirte-speed-control/hardware"
	"github.com/mirte-robot/mirte-speed-control/metrics"
	"github.com/mirte-robot/mirte-speed-control/ros"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const nodeName = "my_robot_base_node"

func main() {
	if err := run(os.Args); err != nil {
		logrus.Errorf("%s: %v", nodeName, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	environment, err := config.LoadEnvironment()
	if err != nil {
		return err
	}
	if err := ros.SetLogLevel(environment.LogLevel); err != nil {
		return errors.Wrap(err, "MIRTE_LOG_LEVEL")
	}

	node, err := ros.NewNode(nodeName, args)
	if err != nil {
		return errors.Wrap(err, "init node")
	}
	defer node.Shutdown()
	logger := node.Logger()

	cfg, err := config.Load(node, environment)
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	m := metrics.New()
	if len(environment.MetricsAddr) > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := m.Serve(ctx, environment.MetricsAddr); err != nil {
				logger.Errorf("metrics: %v", err)
			}
		}()
		logger.Infof("serving metrics on %s", environment.MetricsAddr)
	}

	hw, err := hardware.New(node, cfg, hardware.WithMetrics(m))
	if err != nil {
		return err
	}
	defer hw.Close()

	node.Spin()
	return nil
}
