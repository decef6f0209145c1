package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/randcells/types"
)

func TestNewNop(t *testing.T) {
	hooks := NewNop()

	require.NotNil(t, hooks.OnPhaseChanged)
	require.NotNil(t, hooks.OnDiagnostic)
	require.NotNil(t, hooks.OnError)
}

func TestNopHooks_Callbacks(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	require.NoError(t, hooks.OnPhaseChanged(ctx, types.PhaseIdle, types.PhaseCollectCounts))
	require.NoError(t, hooks.OnDiagnostic(ctx, types.Diagnostic{Severity: types.SeverityWarning, Message: "reduced"}))
	require.NoError(t, hooks.OnError(ctx, errors.New("boom")))
}

func TestWithDefaults(t *testing.T) {
	t.Run("nil hooks", func(t *testing.T) {
		h := WithDefaults(nil)
		require.NotNil(t, h.OnPhaseChanged)
		require.NotNil(t, h.OnDiagnostic)
		require.NotNil(t, h.OnError)
	})

	t.Run("partial hooks keep user callbacks", func(t *testing.T) {
		var got []types.Diagnostic
		user := &types.Hooks{
			OnDiagnostic: func(_ context.Context, d types.Diagnostic) error {
				got = append(got, d)
				return nil
			},
		}

		h := WithDefaults(user)
		require.Nil(t, user.OnError, "input must not be modified")
		require.NoError(t, h.OnError(context.Background(), errors.New("x")))
		require.NoError(t, h.OnDiagnostic(context.Background(), types.Diagnostic{Message: "m"}))
		require.Len(t, got, 1)
	})
}
