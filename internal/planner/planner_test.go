package planner

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/randcells/internal/partition"
	"github.com/arloliu/randcells/internal/selector"
	"github.com/arloliu/randcells/types"
)

func TestBuild_ReconstructsSample(t *testing.T) {
	t.Parallel()

	sel, err := selector.New()
	require.NoError(t, err)

	tests := []struct {
		name       string
		counts     []uint64
		sampleSize int
	}{
		{"uneven", []uint64{10, 20, 5, 15}, 20},
		{"empty ranks", []uint64{0, 10, 0, 5}, 8},
		{"single rank", []uint64{100}, 10},
		{"many ranks", []uint64{3, 0, 7, 1, 0, 0, 12, 4, 9}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := partition.NewIndex(tt.counts)
			s, err := sel.Select(tt.sampleSize, index.Total(), 17)
			require.NoError(t, err)

			plan, err := Build(s.IDs, index)
			require.NoError(t, err)
			require.Len(t, plan.Lists, len(tt.counts))
			require.Equal(t, len(s.IDs), plan.Size())

			var rebuilt []uint64
			for rank, list := range plan.Lists {
				require.Equal(t, uint64(len(list)), plan.Counts[rank])
				blk := index.Block(rank)
				for _, local := range list {
					require.Less(t, local, blk.Size)
					rebuilt = append(rebuilt, blk.First+local)
				}
			}

			want := slices.Clone(s.IDs)
			slices.Sort(want)
			slices.Sort(rebuilt)
			require.Equal(t, want, rebuilt)
		})
	}
}

func TestBuild_PreservesSampleOrderPerRank(t *testing.T) {
	t.Parallel()

	index := partition.NewIndex([]uint64{10, 10})
	plan, err := Build([]uint64{15, 3, 11, 0, 19}, index)
	require.NoError(t, err)

	require.Equal(t, []uint64{3, 0}, plan.Lists[0])
	require.Equal(t, []uint64{5, 1, 9}, plan.Lists[1])
	require.Equal(t, []uint64{2, 3}, plan.Counts)
}

func TestBuild_EmptyRanksGetEmptyLists(t *testing.T) {
	t.Parallel()

	plan, err := Build(nil, partition.NewIndex([]uint64{0, 4, 0}))
	require.NoError(t, err)
	for _, l := range plan.Lists {
		require.NotNil(t, l)
		require.Empty(t, l)
	}
}

func TestBuild_OutOfRangeAborts(t *testing.T) {
	t.Parallel()

	_, err := Build([]uint64{1, 99}, partition.NewIndex([]uint64{5, 5}))
	require.ErrorIs(t, err, types.ErrInternalConsistency)
}
