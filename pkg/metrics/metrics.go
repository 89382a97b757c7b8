package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics of one switch matrix. A nil *Registry is valid
// and records nothing, so the router works without metrics.
type Registry struct {
	RegisterWritesTotal *prometheus.CounterVec
	LinksTotal          *prometheus.CounterVec
	BreakCyclesTotal    prometheus.Counter
	SettleSecondsTotal  prometheus.Counter
	ActiveSwitches      prometheus.Gauge
	ApplyDuration       prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all collectors registered on a fresh
// prometheus.Registry.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.RegisterWritesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relaymatrix_register_writes_total",
			Help: "Total number of expander output register writes",
		},
		[]string{"device"},
	)

	r.LinksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relaymatrix_links_total",
			Help: "Total number of link requests by result",
		},
		[]string{"result"},
	)

	r.BreakCyclesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "relaymatrix_break_cycles_total",
			Help: "Total number of break-before-make cycles",
		},
	)

	r.SettleSecondsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "relaymatrix_settle_seconds_total",
			Help: "Total time spent waiting for relays to settle",
		},
	)

	r.ActiveSwitches = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "relaymatrix_active_switches",
			Help: "Number of switch bits currently set",
		},
	)

	r.ApplyDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relaymatrix_apply_duration_seconds",
			Help:    "Duration of a bitmask apply including settle time",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.15, 0.25, 0.5, 1.0},
		},
	)

	return r
}

// Link results.
const (
	ResultOK        = "ok"
	ResultInvalid   = "invalid"
	ResultExclusive = "exclusive"
	ResultHardware  = "hardware"
)

// RecordRegisterWrite counts one output register write to addr.
func (r *Registry) RecordRegisterWrite(addr uint16) {
	if r == nil {
		return
	}
	r.RegisterWritesTotal.WithLabelValues(fmt.Sprintf("0x%02x", addr)).Inc()
}

// RecordLink counts one link request.
func (r *Registry) RecordLink(result string) {
	if r == nil {
		return
	}
	r.LinksTotal.WithLabelValues(result).Inc()
}

// RecordBreakCycle counts one break-before-make cycle.
func (r *Registry) RecordBreakCycle() {
	if r == nil {
		return
	}
	r.BreakCyclesTotal.Inc()
}

// RecordApply observes one hardware apply and the settle time it waited.
func (r *Registry) RecordApply(elapsed, settle time.Duration) {
	if r == nil {
		return
	}
	r.ApplyDuration.Observe(elapsed.Seconds())
	r.SettleSecondsTotal.Add(settle.Seconds())
}

// SetActiveSwitches records the number of switch bits currently set.
func (r *Registry) SetActiveSwitches(n int) {
	if r == nil {
		return
	}
	r.ActiveSwitches.Set(float64(n))
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
