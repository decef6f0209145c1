package protocol

import (
	"fmt"
	"time"

	"github.com/arloliu/randcells/types"
)

// AutoCoordinator selects the coordinator rank from the group size:
// rank 0 for a single process, rank 1 otherwise.
const AutoCoordinator = -1

type runnerOptions struct {
	coordinator int
	timeout     time.Duration
	logger      types.Logger
	metrics     types.MetricsCollector
	hooks       *types.Hooks
}

// Option configures a Runner.
type Option func(*runnerOptions)

// WithCoordinator sets the coordinator rank (AutoCoordinator by default).
func WithCoordinator(rank int) Option {
	return func(o *runnerOptions) {
		o.coordinator = rank
	}
}

// WithOperationTimeout bounds every Gather, Send and Recv call. Zero blocks
// until the context is done.
func WithOperationTimeout(d time.Duration) Option {
	return func(o *runnerOptions) {
		o.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(o *runnerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *runnerOptions) {
		o.metrics = m
	}
}

// WithHooks sets the pass callbacks.
func WithHooks(h *types.Hooks) Option {
	return func(o *runnerOptions) {
		o.hooks = h
	}
}

// ResolveCoordinator turns a configured coordinator rank into a concrete rank
// of a group of the given size.
//
// Returns:
//   - int: Coordinator rank in [0, size)
//   - error: Wraps types.ErrInvalidRank when the rank is out of range
func ResolveCoordinator(configured, size int) (int, error) {
	if size < 1 {
		return -1, fmt.Errorf("%w: group size %d", types.ErrInvalidRank, size)
	}

	if configured == AutoCoordinator {
		if size == 1 {
			return 0, nil
		}

		return 1, nil
	}

	if configured < 0 || configured >= size {
		return -1, fmt.Errorf("%w: coordinator rank %d outside group of size %d", types.ErrInvalidRank, configured, size)
	}

	return configured, nil
}
