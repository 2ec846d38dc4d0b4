// Package metrics exposes calculator activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/louisbranch/tally/internal/core/calc"
	"github.com/louisbranch/tally/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tally"

// Calculator holds the collectors for one process. It implements
// session.Observer, so it can be attached to every session the process owns.
type Calculator struct {
	registry *prometheus.Registry

	actions        *prometheus.CounterVec
	folds          *prometheus.CounterVec
	divisionByZero prometheus.Counter
	sessions       prometheus.Gauge
}

// New registers the calculator collectors, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Calculator {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Calculator{
		registry: registry,
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculator_actions_total",
			Help:      "Calculator operations performed, by action.",
		}, []string{"action"}),
		folds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculator_folds_total",
			Help:      "Completed calculations, by operator.",
		}, []string{"operator"}),
		divisionByZero: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculator_division_by_zero_total",
			Help:      "Divisions by zero folded to 0.",
		}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calculator_sessions_active",
			Help:      "Calculator sessions currently open.",
		}),
	}
}

// ObserveAction counts one operation.
func (c *Calculator) ObserveAction(action session.Action) {
	c.actions.WithLabelValues(string(action)).Inc()
}

// ObserveFold counts one completed calculation.
func (c *Calculator) ObserveFold(fold calc.Fold) {
	c.folds.WithLabelValues(fold.Operator.String()).Inc()
	if fold.DivisionByZero() {
		c.divisionByZero.Inc()
	}
}

// SessionOpened increments the active session gauge.
func (c *Calculator) SessionOpened() {
	c.sessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (c *Calculator) SessionClosed() {
	c.sessions.Dec()
}

// Registry returns the registry the collectors live on.
func (c *Calculator) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Calculator) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

var _ session.Observer = (*Calculator)(nil)
