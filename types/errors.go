package types

import (
	"errors"
)

// Sentinel errors for the randcells library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error classes:
//   - Configuration errors abort a pass before any transport call is made
//   - Degraded conditions are reported as warnings and the pass continues
//   - Internal consistency, transport and materialize failures are fatal to the pass

// Configuration errors.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSampleSize is returned when the requested sample size is below 1.
	ErrInvalidSampleSize = errors.New("sample size must be greater than 0")

	// ErrSourceRequired is returned when the source dataset is nil.
	ErrSourceRequired = errors.New("source dataset is required")

	// ErrOutputRequired is returned when the output dataset is nil.
	ErrOutputRequired = errors.New("output dataset is required")

	// ErrUnsupportedShape is returned when no cell copier exists for the dataset shape.
	ErrUnsupportedShape = errors.New("unsupported dataset shape")

	// ErrShapeMismatch is returned when the output dataset shape differs from the source.
	ErrShapeMismatch = errors.New("output dataset shape does not match source")

	// ErrMalformedSource is returned when the source dataset's cells, points
	// and attribute arrays do not agree in size.
	ErrMalformedSource = errors.New("malformed source dataset")

	// ErrInvalidRank is returned when a rank is outside [0, group size).
	ErrInvalidRank = errors.New("invalid rank")
)

// Degraded conditions. Reported as warnings; the pass continues.
var (
	// ErrSampleSizeReduced signals that the requested sample covered too much of
	// the population and was clamped.
	ErrSampleSizeReduced = errors.New("sample size reduced")

	// ErrEmptyPopulation signals that no rank owns any cell.
	ErrEmptyPopulation = errors.New("population is empty")
)

// Fatal pass errors.
var (
	// ErrInternalConsistency is returned when a global id has no owning rank.
	// It indicates an invalid partition table and must never be retried.
	ErrInternalConsistency = errors.New("internal consistency failure")

	// ErrTransport is returned when a gather, send or receive fails.
	ErrTransport = errors.New("transport failure")

	// ErrMaterialize is returned when a cell cannot be copied to the output.
	ErrMaterialize = errors.New("cell materialization failed")

	// ErrInvalidTransition is returned when the protocol attempts an illegal phase change.
	ErrInvalidTransition = errors.New("invalid phase transition")
)

// IsFatal reports whether err aborts a sampling pass without any defined recovery.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true for internal consistency, transport and materialize failures
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrInternalConsistency) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrMaterialize)
}

// IsConfigError reports whether err is a configuration error reported before
// any process-group communication took place.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidSampleSize) ||
		errors.Is(err, ErrSourceRequired) ||
		errors.Is(err, ErrOutputRequired) ||
		errors.Is(err, ErrUnsupportedShape) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrMalformedSource)
}
