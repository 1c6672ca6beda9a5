package reporting

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the simulator's per-year outcome counters and active
// worker gauge over a Prometheus-scrapeable HTTP endpoint.
type Metrics struct {
	registry *prometheus.Registry

	dueTotal    *prometheus.CounterVec
	sdcTotal    *prometheus.CounterVec
	retireTotal *prometheus.CounterVec
	activeRuns  prometheus.Gauge
}

// NewMetrics builds a fresh registry with the simulator's counters and
// gauge registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		dueTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dram_fault_sim_due_total",
			Help: "Cumulative DUE outcomes, labeled by simulated year.",
		}, []string{"year"}),
		sdcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dram_fault_sim_sdc_total",
			Help: "Cumulative SDC outcomes, labeled by simulated year.",
		}, []string{"year"}),
		retireTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dram_fault_sim_retire_total",
			Help: "Cumulative rank retirements, labeled by simulated year.",
		}, []string{"year"}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dram_fault_sim_active_runs",
			Help: "Number of Monte Carlo iterations currently in flight.",
		}),
	}

	registry.MustRegister(m.dueTotal, m.sdcTotal, m.retireTotal, m.activeRuns)
	return m
}

// Handler returns the HTTP handler to mount at the metrics scrape path.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDUE increments the DUE counter for the given simulated year.
func (m *Metrics) ObserveDUE(year int) {
	m.dueTotal.WithLabelValues(yearLabel(year)).Inc()
}

// ObserveSDC increments the SDC counter for the given simulated year.
func (m *Metrics) ObserveSDC(year int) {
	m.sdcTotal.WithLabelValues(yearLabel(year)).Inc()
}

// ObserveRetire increments the retirement counter for the given simulated year.
func (m *Metrics) ObserveRetire(year int) {
	m.retireTotal.WithLabelValues(yearLabel(year)).Inc()
}

// SetActiveRuns reports the current in-flight iteration count.
func (m *Metrics) SetActiveRuns(n int) {
	m.activeRuns.Set(float64(n))
}

func yearLabel(year int) string {
	return strconv.Itoa(year)
}
