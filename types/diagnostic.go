package types

import "fmt"

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityWarning marks a degraded-but-valid condition; the pass continues.
	SeverityWarning Severity = iota

	// SeverityError marks a configuration error; the pass was not started.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal report surfaced to the caller during a pass.
type Diagnostic struct {
	Severity Severity
	// Err is the sentinel error describing the condition (e.g. ErrSampleSizeReduced).
	Err error
	// Message is a human readable description with the concrete values.
	Message string
}

// Error implements error so a diagnostic can be wrapped or logged directly.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Unwrap returns the underlying sentinel error.
func (d Diagnostic) Unwrap() error {
	return d.Err
}
