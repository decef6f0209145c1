package hooks

import (
	"context"

	"github.com/arloliu/randcells/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.Phase, types.Phase) error = (*NopHooks)(nil).OnPhaseChanged
	_ func(context.Context, types.Diagnostic) error         = (*NopHooks)(nil).OnDiagnostic
	_ func(context.Context, error) error                    = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - *types.Hooks: Hooks with no-op implementations
func NewNop() *types.Hooks {
	h := &NopHooks{}

	return &types.Hooks{
		OnPhaseChanged: h.OnPhaseChanged,
		OnDiagnostic:   h.OnDiagnostic,
		OnError:        h.OnError,
	}
}

// WithDefaults returns a copy of h whose nil callbacks are replaced by no-ops.
// A nil h yields NewNop().
func WithDefaults(h *types.Hooks) *types.Hooks {
	if h == nil {
		return NewNop()
	}

	nop := &NopHooks{}
	out := *h
	if out.OnPhaseChanged == nil {
		out.OnPhaseChanged = nop.OnPhaseChanged
	}
	if out.OnDiagnostic == nil {
		out.OnDiagnostic = nop.OnDiagnostic
	}
	if out.OnError == nil {
		out.OnError = nop.OnError
	}

	return &out
}

// OnPhaseChanged is a no-op implementation.
func (h *NopHooks) OnPhaseChanged(ctx context.Context, from, to types.Phase) error {
	return nil
}

// OnDiagnostic is a no-op implementation.
func (h *NopHooks) OnDiagnostic(ctx context.Context, d types.Diagnostic) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(ctx context.Context, err error) error {
	return nil
}
