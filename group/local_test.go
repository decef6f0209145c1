package group

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/randcells/types"
)

func TestNewLocal_InvalidSize(t *testing.T) {
	t.Parallel()

	_, err := NewLocal(0)
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestLocal_Gather(t *testing.T) {
	t.Parallel()

	g, err := NewLocal(4)
	require.NoError(t, err)
	defer g.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results := make([][]uint64, g.Size())
	eg, ctx := errgroup.WithContext(ctx)
	for _, m := range g.Members() {
		eg.Go(func() error {
			out, err := m.Gather(ctx, 1, uint64(10*(m.Rank()+1)))
			results[m.Rank()] = out

			return err
		})
	}
	require.NoError(t, eg.Wait())

	require.Equal(t, []uint64{10, 20, 30, 40}, results[1])
	require.Nil(t, results[0])
	require.Nil(t, results[2])
}

func TestLocal_SendRecvOrderedPerTag(t *testing.T) {
	t.Parallel()

	g, err := NewLocal(2)
	require.NoError(t, err)
	defer g.Close()

	ctx := context.Background()
	a, b := g.Member(0), g.Member(1)

	require.NoError(t, a.Send(ctx, 1, types.TagIDs, []uint64{1, 2}))
	require.NoError(t, a.Send(ctx, 1, types.TagCount, []uint64{9}))
	require.NoError(t, a.Send(ctx, 1, types.TagIDs, []uint64{3}))

	// tags are independent channels
	got, err := b.Recv(ctx, 0, types.TagCount)
	require.NoError(t, err)
	require.Equal(t, []uint64{9}, got)

	got, err = b.Recv(ctx, 0, types.TagIDs)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, got)

	got, err = b.Recv(ctx, 0, types.TagIDs)
	require.NoError(t, err)
	require.Equal(t, []uint64{3}, got)
}

func TestLocal_SendCopiesPayload(t *testing.T) {
	t.Parallel()

	g, err := NewLocal(2)
	require.NoError(t, err)
	defer g.Close()

	ctx := context.Background()
	payload := []uint64{5, 6}
	require.NoError(t, g.Member(0).Send(ctx, 1, types.TagIDs, payload))
	payload[0] = 99

	got, err := g.Member(1).Recv(ctx, 0, types.TagIDs)
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 6}, got)
}

func TestLocal_EmptyPayloadIsNotNil(t *testing.T) {
	t.Parallel()

	g, err := NewLocal(2)
	require.NoError(t, err)
	defer g.Close()

	ctx := context.Background()
	require.NoError(t, g.Member(1).Send(ctx, 0, types.TagIDs, nil))

	got, err := g.Member(0).Recv(ctx, 1, types.TagIDs)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestLocal_Errors(t *testing.T) {
	t.Parallel()

	g, err := NewLocal(2)
	require.NoError(t, err)

	ctx := context.Background()
	m := g.Member(0)

	require.ErrorIs(t, m.Send(ctx, 0, types.TagIDs, nil), ErrSelfMessage)
	require.ErrorIs(t, m.Send(ctx, 2, types.TagIDs, nil), types.ErrInvalidRank)
	_, err = m.Recv(ctx, -1, types.TagIDs)
	require.ErrorIs(t, err, types.ErrInvalidRank)
	_, err = m.Gather(ctx, 5, 1)
	require.ErrorIs(t, err, types.ErrInvalidRank)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = m.Recv(short, 1, types.TagIDs)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	g.Close()
	g.Close()
	_, err = m.Recv(ctx, 1, types.TagIDs)
	require.ErrorIs(t, err, ErrClosed)
}
