package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDBlock(t *testing.T) {
	t.Parallel()

	b := IDBlock{First: 10, Size: 5}
	require.Equal(t, uint64(15), b.Last())
	require.False(t, b.Empty())
	require.True(t, b.Contains(10))
	require.True(t, b.Contains(14))
	require.False(t, b.Contains(15))
	require.False(t, b.Contains(9))
	require.Equal(t, "[10, 15) size=5", b.String())
}

func TestIDBlock_Empty(t *testing.T) {
	t.Parallel()

	b := IDBlock{First: 7}
	require.True(t, b.Empty())
	require.Equal(t, uint64(7), b.Last())
	require.False(t, b.Contains(7), "empty block contains nothing")
}
