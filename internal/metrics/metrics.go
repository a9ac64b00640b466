// Package metrics exposes controller telemetry in Prometheus format.
// Collaborator decorators observe readings and actuator writes without the
// room package knowing about them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/smart-room/internal/room"
)

const namespace = "smartroom"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	temperature  prometheus.Gauge
	co2          prometheus.Gauge
	writes       *prometheus.CounterVec
	collabErrors *prometheus.CounterVec
	opErrors     *prometheus.CounterVec
	cycles       prometheus.Counter
	actuator     *prometheus.GaugeVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last temperature reading.",
		}),
		co2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "co2_ppm",
			Help:      "Last CO2 reading.",
		}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actuator_writes_total",
			Help:      "Actuator commands issued, by actuator.",
		}, []string{"actuator"}),
		collabErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "Failed sensor reads and actuator writes, by collaborator.",
		}, []string{"collaborator"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed management operations, by operation.",
		}, []string{"operation"}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed control cycles.",
		}),
		actuator: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actuator_on",
			Help:      "Last commanded actuator state (1 on/open, 0 off/closed).",
		}, []string{"actuator"}),
	}

	m.registry.MustRegister(
		m.temperature,
		m.co2,
		m.writes,
		m.collabErrors,
		m.opErrors,
		m.cycles,
		m.actuator,
	)

	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation counts a failed management operation. A nil err is ignored.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if err != nil {
		m.opErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveCycle records the state after a completed cycle.
func (m *Metrics) ObserveCycle(s room.State) {
	m.cycles.Inc()
	m.actuator.WithLabelValues("light").Set(gauge(s.LightOn))
	m.actuator.WithLabelValues("window").Set(gauge(s.WindowOpen))
	m.actuator.WithLabelValues("fan").Set(gauge(s.FanOn))
}

func gauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
