package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/randcells/types"
)

func TestNewNop(t *testing.T) {
	m := NewNop()
	require.NotNil(t, m)

	var _ types.MetricsCollector = m
}

func TestNopMetrics_DoesNotPanic(t *testing.T) {
	m := NewNop()

	require.NotPanics(t, func() {
		m.RecordPhaseTransition(types.PhaseIdle, types.PhaseCollectCounts, 0.5)
		m.RecordPass("coordinator", true, 1.0)
		m.RecordDiagnostic(types.SeverityWarning)
		m.RecordPopulation(100)
		m.RecordSelection(90, 75, 120, true)
		m.RecordTransportOperation("send", 0.01, false)
		m.RecordPayloadBytes("send", 128)
		m.RecordCellsCopied(10)
	})
}
