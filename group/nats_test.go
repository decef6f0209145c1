package group

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	rctest "github.com/arloliu/randcells/testing"
	"github.com/arloliu/randcells/types"
)

func natsGroup(t *testing.T, js jetstream.JetStream, session string, size, rank int) *NATS {
	t.Helper()

	cfg := DefaultNATSConfig()
	cfg.Session = session
	cfg.Size = size
	cfg.Rank = rank
	cfg.MemoryStorage = true
	cfg.CompressThreshold = 64

	g, err := NewNATS(t.Context(), js, cfg, WithLogger(rctest.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close(context.Background()) })

	return g
}

func TestNATS_GatherAndMessages(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	const size = 3
	members := make([]*NATS, size)
	for rank := range size {
		members[rank] = natsGroup(t, js, "exchange", size, rank)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	big := make([]uint64, 500)
	for i := range big {
		big[i] = uint64(i * 7)
	}

	var gathered []uint64
	received := make([][]uint64, size)

	eg, ctx := errgroup.WithContext(ctx)
	for _, m := range members {
		eg.Go(func() error {
			out, err := m.Gather(ctx, 1, uint64(100+m.Rank()))
			if err != nil {
				return err
			}
			if m.Rank() == 1 {
				gathered = out
				if err := m.Send(ctx, 0, types.TagIDs, []uint64{1, 2, 3}); err != nil {
					return err
				}

				return m.Send(ctx, 2, types.TagIDs, big)
			}

			got, err := m.Recv(ctx, 1, types.TagIDs)
			received[m.Rank()] = got

			return err
		})
	}
	require.NoError(t, eg.Wait())

	require.Equal(t, []uint64{100, 101, 102}, gathered)
	require.Equal(t, []uint64{1, 2, 3}, received[0])
	require.Equal(t, big, received[2])
}

func TestNATS_RepeatedPassesUseFreshKeys(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	a := natsGroup(t, js, "repeat", 2, 0)
	b := natsGroup(t, js, "repeat", 2, 1)
	ctx := t.Context()

	for i := range uint64(3) {
		require.NoError(t, a.Send(ctx, 1, types.TagCount, []uint64{i}))
	}
	for i := range uint64(3) {
		got, err := b.Recv(ctx, 0, types.TagCount)
		require.NoError(t, err)
		require.Equal(t, []uint64{i}, got)
	}
}

func TestNATS_EmptyPayload(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	a := natsGroup(t, js, "empty", 2, 0)
	b := natsGroup(t, js, "empty", 2, 1)

	require.NoError(t, b.Send(t.Context(), 0, types.TagIDs, nil))
	got, err := a.Recv(t.Context(), 1, types.TagIDs)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestNATS_RecvHonoursContext(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	a := natsGroup(t, js, "timeout", 2, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := a.Recv(ctx, 1, types.TagIDs)
	require.ErrorIs(t, err, types.ErrTransport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNATS_ClaimsRanks(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	const size = 3
	ranks := make([]int, size)
	for i := range size {
		ranks[i] = natsGroup(t, js, "claimed", size, ClaimRank).Rank()
	}
	slices.Sort(ranks)
	require.Equal(t, []int{0, 1, 2}, ranks)

	cfg := DefaultNATSConfig()
	cfg.Session = "claimed"
	cfg.Size = size
	cfg.MemoryStorage = true
	_, err := NewNATS(t.Context(), js, cfg)
	require.ErrorIs(t, err, types.ErrInvalidRank)
}

func TestNATS_CloseReleasesRank(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	cfg := DefaultNATSConfig()
	cfg.Session = "release"
	cfg.MemoryStorage = true

	g, err := NewNATS(t.Context(), js, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, g.Rank())
	require.NoError(t, g.Close(t.Context()))

	_, err = g.Gather(t.Context(), 0, 1)
	require.ErrorIs(t, err, ErrClosed)

	again, err := NewNATS(t.Context(), js, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, again.Rank())
	require.NoError(t, again.Close(t.Context()))
}

func TestNATS_LostRankFailsFast(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	cfg := DefaultNATSConfig()
	cfg.Session = "lease"
	cfg.Size = 2
	cfg.MemoryStorage = true
	cfg.RankClaimTTL = time.Second

	g, err := NewNATS(t.Context(), js, cfg, WithLogger(rctest.NewTestLogger(t)))
	require.NoError(t, err)
	require.Equal(t, 0, g.Rank())

	leases, err := js.KeyValue(t.Context(), cfg.RankBucket)
	require.NoError(t, err)
	require.NoError(t, leases.Delete(t.Context(), g.cfg.prefix()+".rank.0"))

	require.Eventually(t, func() bool {
		err := g.Send(t.Context(), 1, types.TagCount, []uint64{1})
		return errors.Is(err, ErrRankLost)
	}, 5*time.Second, 50*time.Millisecond)

	_, err = g.Gather(t.Context(), 0, 1)
	require.ErrorIs(t, err, types.ErrTransport)
	require.ErrorIs(t, err, ErrRankLost)

	require.NoError(t, g.Close(t.Context()))
}

func TestNATS_SessionReuseIsDetected(t *testing.T) {
	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	first := natsGroup(t, js, "reused", 2, 0)
	require.NoError(t, first.Send(t.Context(), 1, types.TagCount, []uint64{1}))

	// a second member claiming the same rank and session collides on the key
	second := natsGroup(t, js, "reused", 2, 0)
	err := second.Send(t.Context(), 1, types.TagCount, []uint64{2})
	require.ErrorIs(t, err, types.ErrTransport)
}

func TestNewNATS_RequiresJetStream(t *testing.T) {
	_, err := NewNATS(context.Background(), nil, DefaultNATSConfig())
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}
