package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/randcells/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so building a
// collector that is never exercised does not touch the registry.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	phaseTransitions  *prometheus.CounterVec
	phaseDuration     *prometheus.HistogramVec
	passes            *prometheus.CounterVec
	passDuration      *prometheus.HistogramVec
	diagnostics       *prometheus.CounterVec
	population        prometheus.Gauge
	sampleRequested   prometheus.Gauge
	sampleEffective   prometheus.Gauge
	sampleDraws       prometheus.Histogram
	sampleClamped     prometheus.Counter
	transportOps      *prometheus.CounterVec
	transportDuration *prometheus.HistogramVec
	payloadBytes      *prometheus.HistogramVec
	cellsCopied       prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "randcells" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "randcells"
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.phaseTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "protocol",
			Name:      "phase_transitions_total",
			Help:      "Total protocol phase transitions by source and target phase.",
		}, []string{"from", "to"})

		p.phaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "protocol",
			Name:      "phase_duration_seconds",
			Help:      "Time spent in a phase before leaving it, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms .. ~2min
		}, []string{"phase"})

		p.passes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "protocol",
			Name:      "passes_total",
			Help:      "Total sampling passes by role and outcome.",
		}, []string{"role", "success"})

		p.passDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "protocol",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a sampling pass in seconds by role.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"role"})

		p.diagnostics = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "protocol",
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted by severity (warning,error).",
		}, []string{"severity"})

		p.population = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "selection",
			Name:      "population_cells",
			Help:      "Global cell population of the last pass.",
		})

		p.sampleRequested = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "selection",
			Name:      "requested_cells",
			Help:      "Requested sample size of the last pass.",
		})

		p.sampleEffective = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "selection",
			Name:      "effective_cells",
			Help:      "Sample size actually drawn in the last pass.",
		})

		p.sampleDraws = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "selection",
			Name:      "draws_per_pass",
			Help:      "Random draws per pass, rejected draws included.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		})

		p.sampleClamped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "selection",
			Name:      "clamped_total",
			Help:      "Total passes whose sample size was reduced by the coverage limit.",
		})

		p.transportOps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "operations_total",
			Help:      "Total transport operations by kind (gather,send,recv) and outcome.",
		}, []string{"op", "success"})

		p.transportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "operation_duration_seconds",
			Help:      "Latency of transport operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"})

		p.payloadBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "payload_bytes",
			Help:      "Encoded payload sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		}, []string{"op"})

		p.cellsCopied = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "materialize",
			Name:      "cells_copied_total",
			Help:      "Total cells copied into output datasets.",
		})

		p.reg.MustRegister(p.phaseTransitions)
		p.reg.MustRegister(p.phaseDuration)
		p.reg.MustRegister(p.passes)
		p.reg.MustRegister(p.passDuration)
		p.reg.MustRegister(p.diagnostics)
		p.reg.MustRegister(p.population)
		p.reg.MustRegister(p.sampleRequested)
		p.reg.MustRegister(p.sampleEffective)
		p.reg.MustRegister(p.sampleDraws)
		p.reg.MustRegister(p.sampleClamped)
		p.reg.MustRegister(p.transportOps)
		p.reg.MustRegister(p.transportDuration)
		p.reg.MustRegister(p.payloadBytes)
		p.reg.MustRegister(p.cellsCopied)
	})
}

// ProtocolMetrics implementation

// RecordPhaseTransition counts the transition and observes time spent in from.
func (p *PrometheusCollector) RecordPhaseTransition(from, to types.Phase, duration float64) {
	p.ensureRegistered()
	p.phaseTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.phaseDuration.WithLabelValues(from.String()).Observe(duration)
}

// RecordPass records a completed pass.
func (p *PrometheusCollector) RecordPass(role string, success bool, duration float64) {
	p.ensureRegistered()
	p.passes.WithLabelValues(role, strconv.FormatBool(success)).Inc()
	p.passDuration.WithLabelValues(role).Observe(duration)
}

// RecordDiagnostic increments the diagnostic counter.
func (p *PrometheusCollector) RecordDiagnostic(severity types.Severity) {
	p.ensureRegistered()
	p.diagnostics.WithLabelValues(severity.String()).Inc()
}

// SelectionMetrics implementation

// RecordPopulation sets the population gauge.
func (p *PrometheusCollector) RecordPopulation(total uint64) {
	p.ensureRegistered()
	p.population.Set(float64(total))
}

// RecordSelection records requested and effective sizes and the draw count.
func (p *PrometheusCollector) RecordSelection(requested, effective int, draws uint64, clamped bool) {
	p.ensureRegistered()
	p.sampleRequested.Set(float64(requested))
	p.sampleEffective.Set(float64(effective))
	p.sampleDraws.Observe(float64(draws))
	if clamped {
		p.sampleClamped.Inc()
	}
}

// TransportMetrics implementation

// RecordTransportOperation records a transport call.
func (p *PrometheusCollector) RecordTransportOperation(operation string, duration float64, success bool) {
	p.ensureRegistered()
	p.transportOps.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
	p.transportDuration.WithLabelValues(operation).Observe(duration)
}

// RecordPayloadBytes observes an encoded payload size.
func (p *PrometheusCollector) RecordPayloadBytes(operation string, bytes int) {
	p.ensureRegistered()
	p.payloadBytes.WithLabelValues(operation).Observe(float64(bytes))
}

// MaterializeMetrics implementation

// RecordCellsCopied adds to the copied cells counter.
func (p *PrometheusCollector) RecordCellsCopied(count int) {
	p.ensureRegistered()
	p.cellsCopied.Add(float64(count))
}
