// Package metrics emits telemetry gauges and acquisition counters to a DogStatsD agent.
package metrics

import (
	"github.com/DataDog/datadog-go/statsd"

	"smartgarden/internal/logger"
)

// Metric names.
const (
	GaugeTemperature   = "garden.temperature_c"
	GaugeHumidity      = "garden.humidity_pct"
	GaugeSoilMoisture  = "garden.soil_moisture_raw"
	GaugePumpOn        = "garden.pump_on"
	CountAcquisitionOK = "garden.acquisition.ok"
	CountAcquisitionKO = "garden.acquisition.failed"
	CountActuatorOK    = "garden.actuator.committed"
	CountActuatorKO    = "garden.actuator.rolled_back"
)

// Config selects and configures the statsd sink.
type Config struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addr      string   `mapstructure:"addr"`
	Namespace string   `mapstructure:"namespace"`
	Tags      []string `mapstructure:"tags"`
}

// Recorder is what services report to.
type Recorder interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
}

// Statsd reports to DogStatsD. A nil client turns every call into a no-op.
type Statsd struct {
	client statsd.ClientInterface
	log    *logger.Logger
}

// New builds a Recorder from cfg. A disabled config or an unreachable agent yields
// a recorder that drops everything.
func New(cfg Config, log *logger.Logger) *Statsd {
	log = logger.OrNop(log)
	if !cfg.Enabled {
		return &Statsd{log: log}
	}
	c, err := statsd.New(cfg.Addr)
	if err != nil {
		log.Warnw("statsd_init_failed", "addr", cfg.Addr, "err", err)
		return &Statsd{log: log}
	}
	c.Namespace = cfg.Namespace
	c.Tags = cfg.Tags

	log.Infow("statsd_initialized", "addr", cfg.Addr, "namespace", cfg.Namespace, "tags", cfg.Tags)
	return &Statsd{client: c, log: log}
}

// NewWithClient wraps an existing client.
func NewWithClient(c statsd.ClientInterface, log *logger.Logger) *Statsd {
	return &Statsd{client: c, log: logger.OrNop(log)}
}

func (s *Statsd) Gauge(name string, value float64, tags ...string) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Gauge(name, value, tags, 1); err != nil {
		s.log.Debugw("statsd_gauge_failed", "metric", name, "err", err)
	}
}

func (s *Statsd) Incr(name string, tags ...string) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Incr(name, tags, 1); err != nil {
		s.log.Debugw("statsd_incr_failed", "metric", name, "err", err)
	}
}

// Close flushes and closes the underlying client.
func (s *Statsd) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Nop discards every metric.
type Nop struct{}

func (Nop) Gauge(string, float64, ...string) {}
func (Nop) Incr(string, ...string)           {}
