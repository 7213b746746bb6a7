// Package metric provides the prometheus instrumentation for compilation
// passes and binding dispatch. All collectors are namespaced under
// "dashwire" and registered explicitly; nothing touches the global default
// registry unless the caller passes it in.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all compiler- and dispatch-level collectors.
type Metrics struct {
	CompilePasses     prometheus.Counter
	BindingsInstalled *prometheus.CounterVec
	OutputConflicts   prometheus.Counter
	HandlerErrors     *prometheus.CounterVec
	DispatchDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors initialized.
func New() *Metrics {
	return &Metrics{
		CompilePasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashwire",
			Subsystem: "compiler",
			Name:      "passes_total",
			Help:      "Total number of compilation passes run",
		}),

		BindingsInstalled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashwire",
			Subsystem: "compiler",
			Name:      "bindings_installed_total",
			Help:      "Total number of bindings installed into the host runtime",
		}, []string{"path"}),

		OutputConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashwire",
			Subsystem: "compiler",
			Name:      "output_conflicts_total",
			Help:      "Total number of duplicate-output conflicts detected",
		}),

		HandlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashwire",
			Subsystem: "dispatch",
			Name:      "handler_errors_total",
			Help:      "Total number of handler failures recovered to fallback values",
		}, []string{"block"}),

		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashwire",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Compiled handler execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"block"}),
	}
}

// Register registers every collector with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.CompilePasses,
		m.BindingsInstalled,
		m.OutputConflicts,
		m.HandlerErrors,
		m.DispatchDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// The helpers below are nil-safe so instrumentation stays optional: library
// callers that never configured metrics pass a nil *Metrics through.

// ObserveCompilePass counts one compilation pass.
func (m *Metrics) ObserveCompilePass() {
	if m == nil {
		return
	}
	m.CompilePasses.Inc()
}

// ObserveBindingInstalled counts one installed binding for a compilation path
// ("grouped" or "block").
func (m *Metrics) ObserveBindingInstalled(path string) {
	if m == nil {
		return
	}
	m.BindingsInstalled.WithLabelValues(path).Inc()
}

// ObserveOutputConflict counts one duplicate-output conflict.
func (m *Metrics) ObserveOutputConflict() {
	if m == nil {
		return
	}
	m.OutputConflicts.Inc()
}

// ObserveHandlerError counts one recovered handler failure for a block.
func (m *Metrics) ObserveHandlerError(blockID string) {
	if m == nil {
		return
	}
	m.HandlerErrors.WithLabelValues(blockID).Inc()
}

// ObserveDispatch records one handler execution duration for a block.
func (m *Metrics) ObserveDispatch(blockID string, d time.Duration) {
	if m == nil {
		return
	}
	m.DispatchDuration.WithLabelValues(blockID).Observe(d.Seconds())
}
