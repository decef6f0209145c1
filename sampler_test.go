package randcells

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/randcells/dataset"
	"github.com/arloliu/randcells/group"
	"github.com/arloliu/randcells/internal/logger"
	rctest "github.com/arloliu/randcells/testing"
	"github.com/arloliu/randcells/types"
)

func newTestSampler(t *testing.T, sampleSize int, opts ...Option) *Sampler {
	t.Helper()

	cfg := TestConfig()
	cfg.SampleSize = sampleSize

	s, err := NewSampler(&cfg, opts...)
	require.NoError(t, err)

	return s
}

// cellIDs returns the "cellId" attribute of every output cell.
func cellIDs(t *testing.T, d *dataset.PolyData) []int {
	t.Helper()

	arr := d.CellData.Get(dataset.AttrCellID)
	require.NotNil(t, arr)

	ids := make([]int, arr.NumTuples())
	for i := range ids {
		ids[i] = int(arr.Tuple(i)[0])
	}

	return ids
}

// requireSameCell checks that output cell i is a copy of source cell k.
func requireSameCell(t *testing.T, source, output *dataset.PolyData, k, i int) {
	t.Helper()

	src := source.Cells.Cell(k)
	out := output.Cells.Cell(i)
	require.Len(t, out, len(src))
	for n := range src {
		require.Equal(t, source.Points[src[n]], output.Points[out[n]])
		require.Equal(t,
			source.PointData.Get(dataset.AttrVelocity).Tuple(src[n]),
			output.PointData.Get(dataset.AttrVelocity).Tuple(out[n]))
	}
	require.Equal(t,
		source.CellData.Get(dataset.AttrPressure).Tuple(k),
		output.CellData.Get(dataset.AttrPressure).Tuple(i))
}

func TestSampler_SingleProcess(t *testing.T) {
	source := dataset.NewQuadGrid(10, 10, 0)
	output := dataset.NewPolyData()

	s := newTestSampler(t, 10, WithLogger(rctest.NewTestLogger(t)))
	require.Equal(t, 0, s.Coordinator())
	require.Equal(t, RoleCoordinator, s.Role())

	res, err := s.Run(t.Context(), source, output)
	require.NoError(t, err)
	require.Equal(t, PhaseDone, res.Phase)
	require.Equal(t, 10, res.Copied)
	require.Equal(t, uint64(100), res.Total)
	require.Equal(t, int64(42), res.Seed)
	require.Empty(t, res.Diagnostics)

	require.Equal(t, 10, output.NumberOfCells())
	require.NoError(t, output.Validate())

	seen := map[int]bool{}
	for i, k := range cellIDs(t, output) {
		require.False(t, seen[k], "cell %d sampled twice", k)
		seen[k] = true
		require.GreaterOrEqual(t, k, 0)
		require.Less(t, k, 100)
		require.Equal(t, uint64(k), res.Assigned[i])
		requireSameCell(t, source, output, k, i)
	}
}

func TestSampler_SameSeedSameSample(t *testing.T) {
	source := dataset.NewQuadGrid(20, 20, 0)

	first := dataset.NewPolyData()
	_, err := newTestSampler(t, 30).Run(t.Context(), source, first)
	require.NoError(t, err)

	second := dataset.NewPolyData()
	_, err = newTestSampler(t, 30).Run(t.Context(), source, second)
	require.NoError(t, err)

	require.Equal(t, cellIDs(t, first), cellIDs(t, second))
}

func TestSampler_InvalidSampleSizeEmptiesOutput(t *testing.T) {
	var (
		mu    sync.Mutex
		diags []Diagnostic
	)
	hooks := &Hooks{
		OnDiagnostic: func(_ context.Context, d Diagnostic) error {
			mu.Lock()
			defer mu.Unlock()
			diags = append(diags, d)

			return nil
		},
	}

	source := dataset.NewQuadGrid(10, 10, 0)
	output := dataset.NewQuadGrid(3, 3, 0)
	log := logger.NewRecorder()

	s := newTestSampler(t, 0, WithHooks(hooks), WithLogger(log))

	res, err := s.Run(t.Context(), source, output)
	require.ErrorIs(t, err, ErrInvalidSampleSize)
	require.True(t, IsConfigError(err))
	require.Equal(t, PhaseAborted, res.Phase)
	require.Zero(t, output.NumberOfCells())
	require.Zero(t, output.NumberOfPoints())

	require.Len(t, diags, 1)
	require.Equal(t, SeverityError, diags[0].Severity)
	require.ErrorIs(t, diags[0], ErrInvalidSampleSize)
	require.NotEmpty(t, log.Find("ERROR", "invalid sample size"))
}

func TestSampler_ReducesOversizedRequest(t *testing.T) {
	source := dataset.NewQuadGrid(10, 10, 0)
	output := dataset.NewPolyData()
	log := logger.NewRecorder()

	res, err := newTestSampler(t, 90, WithLogger(log)).Run(t.Context(), source, output)
	require.NoError(t, err)
	require.True(t, res.Clamped)
	require.Equal(t, 90, res.Requested)
	require.Equal(t, 75, res.Effective)
	require.Equal(t, 75, output.NumberOfCells())

	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, SeverityWarning, res.Diagnostics[0].Severity)
	require.ErrorIs(t, res.Diagnostics[0], ErrSampleSizeReduced)
	require.NotEmpty(t, log.Find("WARN", "sample size reduced"))
}

func TestSampler_UnstructuredGrid(t *testing.T) {
	source := dataset.NewMixedGrid(6, 6, 0)
	output := dataset.NewLike(source)

	res, err := newTestSampler(t, 20).Run(t.Context(), source, output)
	require.NoError(t, err)
	require.Equal(t, 20, res.Copied)

	grid, ok := output.(*dataset.UnstructuredGrid)
	require.True(t, ok)
	require.Equal(t, 20, grid.NumberOfCells())
	require.NoError(t, grid.Validate())
	for i := range grid.NumberOfCells() {
		k := int(grid.CellData.Get(dataset.AttrCellID).Tuple(i)[0])
		require.Equal(t, source.Types[k], grid.Types[i])
	}
}

type unknownDataset struct{}

func (unknownDataset) NumberOfCells() int { return 3 }
func (unknownDataset) Shape() Shape       { return types.ShapeUnknown }
func (unknownDataset) Reset()             {}

func TestSampler_ConfigurationErrors(t *testing.T) {
	s := newTestSampler(t, 5)
	ctx := t.Context()

	_, err := s.Run(ctx, nil, dataset.NewPolyData())
	require.ErrorIs(t, err, ErrSourceRequired)

	_, err = s.Run(ctx, dataset.NewQuadGrid(2, 2, 0), nil)
	require.ErrorIs(t, err, ErrOutputRequired)

	res, err := s.Run(ctx, unknownDataset{}, unknownDataset{})
	require.ErrorIs(t, err, ErrUnsupportedShape)
	require.Equal(t, PhaseAborted, res.Phase)
	require.Len(t, res.Diagnostics, 1)

	_, err = s.Run(ctx, dataset.NewQuadGrid(2, 2, 0), dataset.NewUnstructuredGrid())
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSampler_MalformedSourceRejectedBeforeTransport(t *testing.T) {
	source := dataset.NewQuadGrid(4, 1, 0)
	pressure := source.CellData.Get(dataset.AttrPressure)
	pressure.Values = pressure.Values[:2]

	g, err := group.NewLocal(2)
	require.NoError(t, err)
	defer g.Close()

	// the peer never runs, so any transport wait would hit the deadline
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	s := newTestSampler(t, 2, WithProcessGroup(g.Member(0)))
	output := dataset.NewPolyData()
	res, err := s.Run(ctx, source, output)

	require.ErrorIs(t, err, ErrMalformedSource)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, IsConfigError(err))
	require.False(t, IsFatal(err))
	require.Equal(t, PhaseAborted, res.Phase)
	require.Len(t, res.Diagnostics, 1)
	require.Zero(t, output.NumberOfCells())
}

// countingCopier wraps a real copier and counts copied cells.
type countingCopier struct {
	types.CellCopier
	copied int
}

func (c *countingCopier) Copy(id uint64) error {
	c.copied++
	return c.CellCopier.Copy(id)
}

func TestSampler_CustomCopierFactory(t *testing.T) {
	var cc *countingCopier
	factory := func(source Dataset) (CellCopier, error) {
		inner, err := dataset.NewCopier(source)
		if err != nil {
			return nil, err
		}
		cc = &countingCopier{CellCopier: inner}

		return cc, nil
	}

	_, err := newTestSampler(t, 7, WithCopierFactory(factory)).
		Run(t.Context(), dataset.NewQuadGrid(5, 5, 0), dataset.NewPolyData())
	require.NoError(t, err)
	require.Equal(t, 7, cc.copied)
}

func TestSampler_CopierFailureIsFatal(t *testing.T) {
	factory := func(Dataset) (CellCopier, error) {
		return failingCopier{}, nil
	}

	res, err := newTestSampler(t, 3, WithCopierFactory(factory)).
		Run(t.Context(), dataset.NewQuadGrid(5, 5, 0), dataset.NewPolyData())
	require.ErrorIs(t, err, ErrMaterialize)
	require.True(t, IsFatal(err))
	require.Equal(t, PhaseAborted, res.Phase)
}

type failingCopier struct{}

func (failingCopier) Initialize(_, _ Dataset) error { return nil }
func (failingCopier) Copy(uint64) error             { return errors.New("output closed") }

func TestSampler_PrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestSampler(t, 5, WithMetrics(NewPrometheusMetrics(reg, "")))

	_, err := s.Run(t.Context(), dataset.NewQuadGrid(5, 5, 0), dataset.NewPolyData())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["randcells_protocol_passes_total"])
	require.True(t, names["randcells_materialize_cells_copied_total"])
}

func TestNewSampler_Validation(t *testing.T) {
	_, err := NewSampler(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg := TestConfig()
	cfg.CoverageLimit = 1.5
	_, err = NewSampler(&cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg = TestConfig()
	cfg.CoordinatorRank = 3
	_, err = NewSampler(&cfg)
	require.ErrorIs(t, err, ErrInvalidRank)
}

// partitionedGrids splits a population into one strip of quads per rank,
// numbering cells globally.
func partitionedGrids(counts []int) []*dataset.PolyData {
	out := make([]*dataset.PolyData, len(counts))
	first := 0
	for rank, n := range counts {
		out[rank] = dataset.NewQuadGrid(n, 1, first)
		first += n
	}

	return out
}

// checkPartitionedSample verifies that every rank copied only cells it owns
// and that the union is duplicate-free with the expected size.
func checkPartitionedSample(t *testing.T, counts []int, outputs []*dataset.PolyData, want int) {
	t.Helper()

	seen := map[int]bool{}
	first := 0
	for rank, n := range counts {
		for _, id := range cellIDs(t, outputs[rank]) {
			require.GreaterOrEqual(t, id, first, "rank %d copied a cell it does not own", rank)
			require.Less(t, id, first+n, "rank %d copied a cell it does not own", rank)
			require.False(t, seen[id], "cell %d sampled twice", id)
			seen[id] = true
		}
		require.NoError(t, outputs[rank].Validate())
		first += n
	}
	require.Len(t, seen, want)
}

func TestSampler_LocalGroup(t *testing.T) {
	counts := []int{10, 20, 5, 15}
	sources := partitionedGrids(counts)
	outputs := make([]*dataset.PolyData, len(counts))

	g, err := group.NewLocal(len(counts))
	require.NoError(t, err)
	defer g.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := make([]Result, len(counts))
	eg, ctx := errgroup.WithContext(ctx)
	for rank, m := range g.Members() {
		s := newTestSampler(t, 20, WithProcessGroup(m))
		outputs[rank] = dataset.NewPolyData()
		eg.Go(func() error {
			res, err := s.Run(ctx, sources[rank], outputs[rank])
			results[rank] = res

			return err
		})
	}
	require.NoError(t, eg.Wait())

	require.Equal(t, RoleCoordinator, results[1].Role)
	require.Equal(t, uint64(50), results[1].Total)
	checkPartitionedSample(t, counts, outputs, 20)
}

func TestSampler_NATSGroup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping NATS test in short mode")
	}

	_, nc := rctest.StartEmbeddedNATS(t)
	js := rctest.NewJetStream(t, nc)

	counts := []int{10, 20, 5, 15}
	sources := partitionedGrids(counts)
	outputs := make([]*dataset.PolyData, len(counts))
	samplers := make([]*Sampler, len(counts))

	for rank := range counts {
		cfg := TestConfig()
		cfg.SampleSize = 20
		cfg.Transport.Session = "sampler-test"
		cfg.Transport.Size = len(counts)
		cfg.Transport.Rank = rank
		cfg.Transport.CompressThreshold = 16

		g, err := group.NewNATS(t.Context(), js, cfg.Transport, group.WithLogger(rctest.NewTestLogger(t)))
		require.NoError(t, err)
		t.Cleanup(func() { _ = g.Close(context.Background()) })

		samplers[rank], err = NewSampler(&cfg, WithProcessGroup(g))
		require.NoError(t, err)
		outputs[rank] = dataset.NewPolyData()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// two passes back to back on the same session
	for pass := range 2 {
		eg, ctx := errgroup.WithContext(ctx)
		for rank, s := range samplers {
			eg.Go(func() error {
				if _, err := s.Run(ctx, sources[rank], outputs[rank]); err != nil {
					return fmt.Errorf("pass %d rank %d: %w", pass, rank, err)
				}

				return nil
			})
		}
		require.NoError(t, eg.Wait())
		checkPartitionedSample(t, counts, outputs, 20)
	}
}
