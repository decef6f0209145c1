package metrics

import "github.com/arloliu/randcells/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	m := metrics.NewNop()
//	s, err := randcells.NewSampler(&cfg, randcells.WithMetrics(m))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ProtocolMetrics implementation

// RecordPhaseTransition discards the phase transition metric.
func (n *NopMetrics) RecordPhaseTransition(_ /* from */, _ /* to */ types.Phase, _ /* duration */ float64) {
	// No-op
}

// RecordPass discards the pass outcome metric.
func (n *NopMetrics) RecordPass(_ /* role */ string, _ /* success */ bool, _ /* duration */ float64) {
	// No-op
}

// RecordDiagnostic discards the diagnostic counter.
func (n *NopMetrics) RecordDiagnostic(_ /* severity */ types.Severity) {
	// No-op
}

// SelectionMetrics implementation

// RecordPopulation discards the population gauge.
func (n *NopMetrics) RecordPopulation(_ /* total */ uint64) {
	// No-op
}

// RecordSelection discards the selection metrics.
func (n *NopMetrics) RecordSelection(_ /* requested */, _ /* effective */ int, _ /* draws */ uint64, _ /* clamped */ bool) {
	// No-op
}

// TransportMetrics implementation

// RecordTransportOperation discards the transport operation metric.
func (n *NopMetrics) RecordTransportOperation(_ /* operation */ string, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// RecordPayloadBytes discards the payload size metric.
func (n *NopMetrics) RecordPayloadBytes(_ /* operation */ string, _ /* bytes */ int) {
	// No-op
}

// MaterializeMetrics implementation

// RecordCellsCopied discards the copied cells counter.
func (n *NopMetrics) RecordCellsCopied(_ /* count */ int) {
	// No-op
}
