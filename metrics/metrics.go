// Package metrics exposes the base controller's Prometheus collectors.
//
// All collectors live on a private registry under the "mirte_base"
// namespace; wheel-scoped series carry a "wheel" label (left, right).
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mirte_base"

const shutdownTimeout = 5 * time.Second

// Metrics holds the controller collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	controlLoop    prometheus.Histogram
	wheelTarget    *prometheus.GaugeVec
	wheelMeasured  *prometheus.GaugeVec
	motorCommand   *prometheus.GaugeVec
	motorFailures  *prometheus.CounterVec
	cmdVelTimeouts prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{registry: registry}

	m.controlLoop = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "control_loop_seconds",
		Help:      "Duration of one control cycle",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
	m.wheelTarget = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wheel_target_rad_per_second",
		Help:      "Wheel velocity requested by the controller",
	}, []string{"wheel"})
	m.wheelMeasured = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wheel_measured_rad_per_second",
		Help:      "Wheel velocity derived from the encoder",
	}, []string{"wheel"})
	m.motorCommand = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "motor_command_percent",
		Help:      "Last motor output sent, in percent of full power",
	}, []string{"wheel"})
	m.motorFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "motor_call_failures_total",
		Help:      "Motor speed service calls that failed",
	}, []string{"wheel"})
	m.cmdVelTimeouts = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cmd_vel_timeouts_total",
		Help:      "Times the velocity command went stale and was zeroed",
	})
	return m
}

// Registry exposes the registry for gathering in tests or embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveControlLoop records how long one control cycle took.
func (m *Metrics) ObserveControlLoop(d time.Duration) {
	m.controlLoop.Observe(d.Seconds())
}

// SetWheel records the commanded and measured speed of a wheel in rad/s.
func (m *Metrics) SetWheel(wheel string, target, measured float64) {
	m.wheelTarget.WithLabelValues(wheel).Set(target)
	m.wheelMeasured.WithLabelValues(wheel).Set(measured)
}

// SetMotorCommand records the last percentage the motor accepted.
func (m *Metrics) SetMotorCommand(wheel string, percent int32) {
	m.motorCommand.WithLabelValues(wheel).Set(float64(percent))
}

// MotorCallFailed counts a motor command that did not reach the motor.
func (m *Metrics) MotorCallFailed(wheel string) {
	m.motorFailures.WithLabelValues(wheel).Inc()
}

// CmdVelTimedOut counts a stop caused by missing velocity commands.
func (m *Metrics) CmdVelTimedOut() {
	m.cmdVelTimeouts.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "metrics listen")
	}
	return m.serve(ctx, listener)
}

func (m *Metrics) serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	if err := server.Serve(listener); err != http.ErrServerClosed {
		return errors.Wrap(err, "metrics server")
	}
	return nil
}
