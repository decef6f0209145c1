package randcells

import "github.com/arloliu/randcells/types"

// Sentinel errors re-exported from the types package so callers can use
// errors.Is against randcells.ErrX.
var (
	ErrInvalidConfig     = types.ErrInvalidConfig
	ErrInvalidSampleSize = types.ErrInvalidSampleSize
	ErrSourceRequired    = types.ErrSourceRequired
	ErrOutputRequired    = types.ErrOutputRequired
	ErrUnsupportedShape  = types.ErrUnsupportedShape
	ErrShapeMismatch     = types.ErrShapeMismatch
	ErrMalformedSource   = types.ErrMalformedSource
	ErrInvalidRank       = types.ErrInvalidRank

	ErrSampleSizeReduced = types.ErrSampleSizeReduced
	ErrEmptyPopulation   = types.ErrEmptyPopulation

	ErrInternalConsistency = types.ErrInternalConsistency
	ErrTransport           = types.ErrTransport
	ErrMaterialize         = types.ErrMaterialize
	ErrInvalidTransition   = types.ErrInvalidTransition
)

// IsFatal reports whether err aborted a pass with no defined result.
func IsFatal(err error) bool {
	return types.IsFatal(err)
}

// IsConfigError reports whether err was raised before any rank was contacted.
func IsConfigError(err error) bool {
	return types.IsConfigError(err)
}
