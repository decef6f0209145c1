package randcells

import (
	"context"
	"fmt"

	"github.com/arloliu/randcells/dataset"
	"github.com/arloliu/randcells/group"
	"github.com/arloliu/randcells/internal/logger"
	"github.com/arloliu/randcells/internal/metrics"
	"github.com/arloliu/randcells/internal/protocol"
	"github.com/arloliu/randcells/internal/selector"
)

// Sampler draws a random subset of the cells of a dataset partitioned across
// the ranks of a process group, and copies each rank's share of the subset
// into that rank's output dataset.
//
// Every rank of the group creates its own Sampler with the same Config and
// calls Run at the same time. Passes on one group must not overlap; a Sampler
// may run any number of passes one after the other.
type Sampler struct {
	cfg       Config
	group     ProcessGroup
	runner    *protocol.Runner
	newCopier CopierFactory
	logger    Logger
}

// NewSampler creates a Sampler for this rank.
//
// Parameters:
//   - cfg: Configuration (defaults applied to a copy; cfg is not modified)
//   - opts: Optional process group, copier factory, logger, metrics and hooks
//
// Returns:
//   - *Sampler: Sampler ready to run passes
//   - error: Configuration error
//
// Example:
//
//	cfg := randcells.DefaultConfig()
//	cfg.SampleSize = 1000
//	s, err := randcells.NewSampler(&cfg)
//	if err != nil {
//	    return err
//	}
//	output := dataset.NewLike(source)
//	res, err := s.Run(ctx, source, output)
func NewSampler(cfg *Config, opts ...Option) (*Sampler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", ErrInvalidConfig)
	}

	c := *cfg
	SetDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := samplerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.group == nil {
		o.group = group.NewSingle()
	}
	if o.newCopier == nil {
		o.newCopier = dataset.NewCopier
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	c.ValidateWithWarnings(o.logger)

	sel, err := selector.New(
		selector.WithCoverageLimit(c.CoverageLimit),
		selector.WithDenseSetLimit(c.DenseSetLimit),
	)
	if err != nil {
		return nil, err
	}

	runner, err := protocol.New(o.group, sel,
		protocol.WithCoordinator(c.CoordinatorRank),
		protocol.WithOperationTimeout(c.OperationTimeout),
		protocol.WithLogger(o.logger),
		protocol.WithMetrics(o.metrics),
		protocol.WithHooks(o.hooks),
	)
	if err != nil {
		return nil, err
	}

	return &Sampler{
		cfg:       c,
		group:     o.group,
		runner:    runner,
		newCopier: o.newCopier,
		logger:    o.logger,
	}, nil
}

// Config returns the effective configuration, defaults applied.
func (s *Sampler) Config() Config {
	return s.cfg
}

// Rank returns this rank.
func (s *Sampler) Rank() int {
	return s.group.Rank()
}

// Coordinator returns the rank that selects and distributes the sample.
func (s *Sampler) Coordinator() int {
	return s.runner.Coordinator()
}

// Role returns the role this rank plays in every pass.
func (s *Sampler) Role() Role {
	return s.runner.Role()
}

// Run executes one sampling pass on this rank.
//
// The source is read and never modified. The output is reset, given the
// source's attribute schema and filled with this rank's share of the sample
// in assignment order. Configuration errors are reported through the logger
// and OnDiagnostic before anything is sent; an invalid sample size leaves the
// output empty.
//
// Parameters:
//   - ctx: Context bounding every transport call of the pass
//   - source: This rank's partition of the dataset
//   - output: Dataset of the same shape receiving the sampled cells
//
// Returns:
//   - Result: Outcome of the pass for this rank, including diagnostics
//   - error: Configuration error, or a fatal pass error (see IsFatal)
func (s *Sampler) Run(ctx context.Context, source, output Dataset) (Result, error) {
	if source == nil {
		return s.reject(ctx, ErrSourceRequired, "missing source dataset")
	}
	if output == nil {
		return s.reject(ctx, ErrOutputRequired, "missing output dataset")
	}

	if s.cfg.SampleSize < 1 {
		output.Reset()
	}

	copier, err := s.newCopier(source)
	if err != nil {
		return s.reject(ctx, err, "no cell copier for dataset")
	}
	if err := copier.Initialize(source, output); err != nil {
		return s.reject(ctx, err, "failed to prepare output dataset")
	}

	req := protocol.Request{
		LocalCount: uint64(source.NumberOfCells()), //nolint:gosec // cell counts are never negative
		SampleSize: s.cfg.SampleSize,
		Seed:       s.cfg.Seed,
	}

	return s.runner.Run(ctx, req, copier)
}

// reject reports a configuration error found before the pass started.
func (s *Sampler) reject(ctx context.Context, err error, msg string) (Result, error) {
	d := Diagnostic{Severity: SeverityError, Err: err, Message: msg}
	s.runner.Report(ctx, d)

	return Result{
		Role:        s.runner.Role(),
		Rank:        s.group.Rank(),
		Coordinator: s.runner.Coordinator(),
		Phase:       PhaseAborted,
		Diagnostics: []Diagnostic{d},
	}, err
}
