package types

import "context"

// Hooks defines callbacks for sampling pass events.
//
// All hooks are optional. Unlike background notifications, hooks run
// synchronously on the rank's protocol goroutine so the order of events is the
// order of the pass; keep them short.
//
// Example:
//
//	hooks := &randcells.Hooks{
//	    OnDiagnostic: func(ctx context.Context, d randcells.Diagnostic) error {
//	        if errors.Is(d, randcells.ErrSampleSizeReduced) {
//	            reduced.Add(1)
//	        }
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnPhaseChanged is called after each protocol phase transition.
	OnPhaseChanged func(ctx context.Context, from, to Phase) error

	// OnDiagnostic is called for configuration errors and degraded conditions.
	OnDiagnostic func(ctx context.Context, d Diagnostic) error

	// OnError is called when a pass aborts with a fatal error.
	OnError func(ctx context.Context, err error) error
}
