package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	ProtocolMetrics
	SelectionMetrics
	TransportMetrics
	MaterializeMetrics
}

// ProtocolMetrics defines metrics for distribution protocol passes.
type ProtocolMetrics interface {
	// RecordPhaseTransition records a protocol phase transition.
	//
	// Parameters:
	//   - from, to: Phases of the transition
	//   - duration: Seconds spent in the from phase
	RecordPhaseTransition(from, to Phase, duration float64)

	// RecordPass records the outcome and duration of a whole pass.
	//
	// Parameters:
	//   - role: "coordinator" or "worker"
	//   - success: true if the pass reached PhaseDone
	//   - duration: Pass duration in seconds
	RecordPass(role string, success bool, duration float64)

	// RecordDiagnostic records a surfaced diagnostic by severity.
	RecordDiagnostic(severity Severity)
}

// SelectionMetrics defines metrics for sample selection on the coordinator.
type SelectionMetrics interface {
	// RecordPopulation sets the total population of the last pass (gauge metric).
	RecordPopulation(total uint64)

	// RecordSelection records one selection.
	//
	// Parameters:
	//   - requested: Requested sample size
	//   - effective: Sample size after clamping
	//   - draws: Random draws including rejected duplicates
	//   - clamped: true if the sample size was reduced
	RecordSelection(requested, effective int, draws uint64, clamped bool)
}

// TransportMetrics defines metrics for process-group operations.
type TransportMetrics interface {
	// RecordTransportOperation records a transport call.
	//
	// Parameters:
	//   - operation: "gather", "send" or "recv"
	//   - duration: Time taken in seconds
	//   - success: true if the call returned without error
	RecordTransportOperation(operation string, duration float64, success bool)

	// RecordPayloadBytes records the encoded size of a transport payload.
	RecordPayloadBytes(operation string, bytes int)
}

// MaterializeMetrics defines metrics for copying cells to the output.
type MaterializeMetrics interface {
	// RecordCellsCopied records the number of cells copied by one rank in a pass.
	RecordCellsCopied(count int)
}
