package protocol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/randcells/internal/hooks"
	"github.com/arloliu/randcells/internal/logger"
	"github.com/arloliu/randcells/internal/metrics"
	"github.com/arloliu/randcells/internal/partition"
	"github.com/arloliu/randcells/internal/planner"
	"github.com/arloliu/randcells/internal/selector"
	"github.com/arloliu/randcells/types"
)

// Role of a rank within a pass.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleWorker      Role = "worker"
)

// Request carries the per-pass inputs of one rank.
type Request struct {
	// LocalCount is the number of cells this rank owns.
	LocalCount uint64

	// SampleSize is the requested global sample size. Only the coordinator
	// uses it, but every rank validates it.
	SampleSize int

	// Seed seeds the generator; negative means time-derived.
	Seed int64
}

// Result describes a finished (or aborted) pass as seen by one rank.
type Result struct {
	Role        Role
	Rank        int
	Coordinator int

	// Phase is the terminal phase: PhaseDone or PhaseAborted.
	Phase types.Phase

	// Assigned holds the local ids this rank was asked to copy, in order.
	Assigned []uint64

	// Copied counts cells handed to the copier without error.
	Copied int

	// Fields below are only populated on the coordinator.
	Total     uint64
	Requested int
	Effective int
	Clamped   bool
	Draws     uint64
	Seed      int64

	// Diagnostics lists the warnings and errors emitted during the pass.
	Diagnostics []types.Diagnostic
}

// Runner executes sampling passes for one rank of a process group.
//
// A Runner holds no per-pass state and may run passes back to back. Passes
// on the same group must not overlap.
type Runner struct {
	group       types.ProcessGroup
	selector    *selector.Selector
	rank        int
	size        int
	coordinator int
	timeout     time.Duration
	logger      types.Logger
	metrics     types.MetricsCollector
	hooks       *types.Hooks
}

// New creates a Runner bound to group.
//
// Parameters:
//   - group: Process group this rank belongs to
//   - sel: Sample selector used when this rank coordinates
//   - opts: Optional configuration (coordinator, timeout, logger, metrics, hooks)
//
// Returns:
//   - *Runner: Runner ready to execute passes
//   - error: Configuration error (nil group or selector, invalid coordinator rank)
func New(group types.ProcessGroup, sel *selector.Selector, opts ...Option) (*Runner, error) {
	if group == nil {
		return nil, fmt.Errorf("%w: process group is required", types.ErrInvalidConfig)
	}
	if sel == nil {
		return nil, fmt.Errorf("%w: selector is required", types.ErrInvalidConfig)
	}

	o := runnerOptions{coordinator: AutoCoordinator}
	for _, opt := range opts {
		opt(&o)
	}

	size := group.Size()
	rank := group.Rank()
	if rank < 0 || rank >= size {
		return nil, fmt.Errorf("%w: rank %d outside group of size %d", types.ErrInvalidRank, rank, size)
	}

	coordinator, err := ResolveCoordinator(o.coordinator, size)
	if err != nil {
		return nil, err
	}

	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return &Runner{
		group:       group,
		selector:    sel,
		rank:        rank,
		size:        size,
		coordinator: coordinator,
		timeout:     o.timeout,
		logger:      o.logger,
		metrics:     o.metrics,
		hooks:       hooks.WithDefaults(o.hooks),
	}, nil
}

// Coordinator returns the resolved coordinator rank.
func (r *Runner) Coordinator() int {
	return r.coordinator
}

// Role returns the role this rank plays in every pass.
func (r *Runner) Role() Role {
	if r.rank == r.coordinator {
		return RoleCoordinator
	}

	return RoleWorker
}

// Report emits a diagnostic outside of a pass, through the same logger,
// metrics and hooks a pass uses.
func (r *Runner) Report(ctx context.Context, d types.Diagnostic) {
	r.report(ctx, d)
}

func (r *Runner) report(ctx context.Context, d types.Diagnostic) {
	r.metrics.RecordDiagnostic(d.Severity)

	kv := []any{"rank", r.rank, "error", d.Err}
	switch d.Severity {
	case types.SeverityWarning:
		r.logger.Warn(d.Message, kv...)
	default:
		r.logger.Error(d.Message, kv...)
	}

	if err := r.hooks.OnDiagnostic(ctx, d); err != nil {
		r.logger.Warn("diagnostic hook error", "rank", r.rank, "error", err)
	}
}

// pass holds the state of one Run call.
type pass struct {
	r          *Runner
	ctx        context.Context
	phase      types.Phase
	phaseStart time.Time
	result     Result
}

// Run executes one sampling pass for this rank.
//
// The request is validated before any transport call; a sample size below 1
// is reported as a configuration error and no rank is contacted. Single
// process groups never touch the transport.
//
// Parameters:
//   - ctx: Context bounding every blocking transport call
//   - req: This rank's inputs
//   - copier: Initialized copier receiving this rank's assigned local ids
//
// Returns:
//   - Result: Outcome of the pass for this rank
//   - error: Configuration, transport, internal-consistency or materialize failure
func (r *Runner) Run(ctx context.Context, req Request, copier types.CellCopier) (Result, error) {
	start := time.Now()
	p := &pass{
		r:          r,
		ctx:        ctx,
		phase:      types.PhaseIdle,
		phaseStart: start,
		result: Result{
			Role:        r.Role(),
			Rank:        r.rank,
			Coordinator: r.coordinator,
		},
	}

	err := p.run(req, copier)
	if err != nil {
		p.abort(err)
	} else if err = p.transition(types.PhaseDone); err != nil {
		p.abort(err)
	}

	p.result.Phase = p.phase
	r.metrics.RecordPass(string(p.result.Role), err == nil, time.Since(start).Seconds())

	if err == nil {
		r.logger.Info("sampling pass complete",
			"rank", r.rank,
			"role", string(p.result.Role),
			"cells_copied", p.result.Copied,
			"duration", time.Since(start),
		)
	}

	return p.result, err
}

func (p *pass) run(req Request, copier types.CellCopier) error {
	if req.SampleSize < 1 {
		err := fmt.Errorf("%w: got %d", types.ErrInvalidSampleSize, req.SampleSize)
		p.diagnose(types.SeverityError, err, "invalid sample size")

		return err
	}
	if copier == nil {
		err := fmt.Errorf("%w: cell copier is required", types.ErrInvalidConfig)
		p.diagnose(types.SeverityError, err, "missing cell copier")

		return err
	}

	if err := p.transition(types.PhaseCollectCounts); err != nil {
		return err
	}

	var (
		assigned []uint64
		err      error
	)
	if p.r.rank == p.r.coordinator {
		assigned, err = p.coordinate(req)
	} else {
		assigned, err = p.work(req)
	}
	if err != nil {
		return err
	}

	p.result.Assigned = assigned

	if err := p.transition(types.PhaseMaterialize); err != nil {
		return err
	}

	return p.materialize(copier, assigned)
}

// coordinate runs the coordinator side and returns its own assignment list.
func (p *pass) coordinate(req Request) ([]uint64, error) {
	counts := []uint64{req.LocalCount}
	if p.r.size > 1 {
		var err error
		counts, err = p.gather(req.LocalCount)
		if err != nil {
			return nil, err
		}
		if len(counts) != p.r.size {
			return nil, fmt.Errorf("%w: gathered %d counts from a group of %d", types.ErrTransport, len(counts), p.r.size)
		}
	}

	if err := p.transition(types.PhaseBuildIndex); err != nil {
		return nil, err
	}

	index := partition.NewIndex(counts)
	p.result.Total = index.Total()
	p.r.metrics.RecordPopulation(index.Total())

	p.r.logger.Debug("partition table built",
		"rank", p.r.rank,
		"ranks", index.Len(),
		"total_cells", index.Total(),
	)

	if err := p.transition(types.PhaseSelectPlan); err != nil {
		return nil, err
	}

	sel, err := p.r.selector.Select(req.SampleSize, index.Total(), req.Seed)
	if err != nil {
		p.diagnose(types.SeverityError, err, "invalid sample size")
		return nil, err
	}

	p.result.Requested = sel.Requested
	p.result.Effective = sel.Effective
	p.result.Clamped = sel.Clamped
	p.result.Draws = sel.Draws
	p.result.Seed = sel.Seed
	p.r.metrics.RecordSelection(sel.Requested, sel.Effective, sel.Draws, sel.Clamped)

	if sel.Warning != nil {
		msg := "sample size reduced"
		if errors.Is(sel.Warning, types.ErrEmptyPopulation) {
			msg = "nothing to sample"
		}
		p.diagnose(types.SeverityWarning, sel.Warning, msg)
	}

	plan, err := planner.Build(sel.IDs, index)
	if err != nil {
		p.r.logger.Error("cell id was not found on any rank",
			"rank", p.r.rank,
			"error", err,
			"blocks", index.Dump(),
		)

		return nil, err
	}

	p.r.logger.Debug("sample planned",
		"rank", p.r.rank,
		"requested", sel.Requested,
		"effective", sel.Effective,
		"draws", sel.Draws,
		"seed", sel.Seed,
	)

	if err := p.transition(types.PhaseDistribute); err != nil {
		return nil, err
	}

	for dest := range p.r.size {
		if dest == p.r.coordinator {
			continue
		}
		if err := p.send(dest, types.TagCount, []uint64{plan.Counts[dest]}); err != nil {
			return nil, err
		}
		if err := p.send(dest, types.TagIDs, plan.Lists[dest]); err != nil {
			return nil, err
		}
	}

	return plan.Lists[p.r.coordinator], nil
}

// work runs the worker side and returns the received assignment list.
func (p *pass) work(req Request) ([]uint64, error) {
	if _, err := p.gather(req.LocalCount); err != nil {
		return nil, err
	}

	if err := p.transition(types.PhaseDistribute); err != nil {
		return nil, err
	}

	countMsg, err := p.recv(types.TagCount)
	if err != nil {
		return nil, err
	}
	if len(countMsg) != 1 {
		return nil, fmt.Errorf("%w: count message carries %d values", types.ErrTransport, len(countMsg))
	}

	ids, err := p.recv(types.TagIDs)
	if err != nil {
		return nil, err
	}
	if uint64(len(ids)) != countMsg[0] {
		return nil, fmt.Errorf("%w: announced %d ids, received %d", types.ErrTransport, countMsg[0], len(ids))
	}

	return ids, nil
}

func (p *pass) materialize(copier types.CellCopier, ids []uint64) error {
	for i, id := range ids {
		if err := copier.Copy(id); err != nil {
			p.r.metrics.RecordCellsCopied(p.result.Copied)
			return fmt.Errorf("%w: local cell %d (%d of %d): %w", types.ErrMaterialize, id, i+1, len(ids), err)
		}
		p.result.Copied++
	}
	p.r.metrics.RecordCellsCopied(p.result.Copied)

	return nil
}

func (p *pass) gather(value uint64) ([]uint64, error) {
	var out []uint64
	err := p.call("gather", func(ctx context.Context) error {
		var err error
		out, err = p.r.group.Gather(ctx, p.r.coordinator, value)

		return err
	})

	return out, err
}

func (p *pass) send(dest int, tag types.Tag, payload []uint64) error {
	return p.call("send", func(ctx context.Context) error {
		return p.r.group.Send(ctx, dest, tag, payload)
	})
}

func (p *pass) recv(tag types.Tag) ([]uint64, error) {
	var out []uint64
	err := p.call("recv", func(ctx context.Context) error {
		var err error
		out, err = p.r.group.Recv(ctx, p.r.coordinator, tag)

		return err
	})

	return out, err
}

// call runs one transport operation under the configured timeout.
func (p *pass) call(op string, fn func(ctx context.Context) error) error {
	ctx := p.ctx
	if p.r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.r.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	p.r.metrics.RecordTransportOperation(op, time.Since(start).Seconds(), err == nil)
	if err != nil {
		if errors.Is(err, types.ErrTransport) {
			return fmt.Errorf("%s failed: %w", op, err)
		}

		return fmt.Errorf("%w: %s failed: %w", types.ErrTransport, op, err)
	}

	return nil
}

func (p *pass) diagnose(severity types.Severity, err error, msg string) {
	d := types.Diagnostic{Severity: severity, Err: err, Message: msg}
	p.result.Diagnostics = append(p.result.Diagnostics, d)
	p.r.report(p.ctx, d)
}

// abort moves the pass to PhaseAborted and reports err.
func (p *pass) abort(err error) {
	if !p.phase.IsTerminal() {
		_ = p.transition(types.PhaseAborted)
	}

	// configuration errors already produced their diagnostic
	if !types.IsConfigError(err) {
		p.diagnose(types.SeverityError, err, "sampling pass aborted")
	}

	if hookErr := p.r.hooks.OnError(p.ctx, err); hookErr != nil {
		p.r.logger.Warn("error hook failed", "rank", p.r.rank, "error", hookErr)
	}
}
