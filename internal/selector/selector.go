// Package selector draws a duplicate-free random sample of global cell ids.
//
// Sampling is rejection based: ids are drawn uniformly from [0, total) and
// rejected when already taken. The requested sample is clamped to a coverage
// limit so the number of rejected draws stays bounded.
package selector

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/arloliu/randcells/types"
)

const (
	// DefaultCoverageLimit is the largest sampled fraction of the population.
	DefaultCoverageLimit = 0.75

	// DefaultDenseSetLimit is the largest population tracked with a dense bitset.
	DefaultDenseSetLimit uint64 = 1 << 26
)

// pcgStream is the PCG stream selector paired with a user seed.
const pcgStream uint64 = 0x9e3779b97f4a7c15

// Selection is the outcome of one Select call.
type Selection struct {
	// IDs holds the selected global ids in draw order.
	IDs []uint64

	// Requested is the sample size asked for.
	Requested int

	// Effective is the sample size actually drawn.
	Effective int

	// Clamped reports whether Effective was reduced by the coverage limit.
	Clamped bool

	// Draws counts every draw, rejected ones included.
	Draws uint64

	// Seed is the seed used; replaying it reproduces IDs.
	Seed int64

	// Warning is non-nil when the selection was degraded. It wraps
	// types.ErrSampleSizeReduced or types.ErrEmptyPopulation.
	Warning error
}

// Selector draws samples. It is stateless between calls and safe for
// concurrent use.
type Selector struct {
	coverageLimit float64
	denseSetLimit uint64
	now           func() time.Time
}

// Option configures a Selector.
type Option func(*Selector)

// WithCoverageLimit sets the largest fraction of the population that may be sampled.
func WithCoverageLimit(limit float64) Option {
	return func(s *Selector) {
		s.coverageLimit = limit
	}
}

// WithDenseSetLimit sets the population size above which a compressed
// bitmap replaces the dense bitset for membership tracking.
func WithDenseSetLimit(limit uint64) Option {
	return func(s *Selector) {
		s.denseSetLimit = limit
	}
}

// WithClock overrides the time source used to derive seeds.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		s.now = now
	}
}

// New creates a Selector.
//
// Parameters:
//   - opts: Optional overrides (coverage limit, dense set limit, clock)
//
// Returns:
//   - *Selector: Selector ready for use
//   - error: Wraps types.ErrInvalidConfig when the coverage limit is outside (0, 1]
func New(opts ...Option) (*Selector, error) {
	s := &Selector{
		coverageLimit: DefaultCoverageLimit,
		denseSetLimit: DefaultDenseSetLimit,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !(s.coverageLimit > 0 && s.coverageLimit <= 1) {
		return nil, fmt.Errorf("%w: coverage limit must be in (0, 1], got %v", types.ErrInvalidConfig, s.coverageLimit)
	}

	return s, nil
}

// EffectiveSize returns the sample size that will actually be drawn from a
// population of total cells, and whether it was clamped.
func (s *Selector) EffectiveSize(sampleSize int, total uint64) (int, bool) {
	if total == 0 {
		return 0, false
	}

	coverage := float64(sampleSize) / float64(total)
	if coverage <= s.coverageLimit {
		return sampleSize, false
	}

	n := int(math.Floor(s.coverageLimit * float64(total)))

	return max(1, n), true
}

// Select draws a duplicate-free sample from the population [0, total).
//
// A negative seed is replaced by one derived from the current time; the seed
// used is reported in Selection.Seed.
//
// Parameters:
//   - sampleSize: Requested number of ids (must be >= 1)
//   - total: Population size
//   - seed: Generator seed, or negative for a time-derived seed
//
// Returns:
//   - Selection: Selected ids and bookkeeping
//   - error: Wraps types.ErrInvalidSampleSize when sampleSize < 1
func (s *Selector) Select(sampleSize int, total uint64, seed int64) (Selection, error) {
	if sampleSize < 1 {
		return Selection{Requested: sampleSize}, fmt.Errorf("%w: got %d", types.ErrInvalidSampleSize, sampleSize)
	}

	if seed < 0 {
		seed = s.now().UnixNano() & math.MaxInt64
	}

	sel := Selection{Requested: sampleSize, Seed: seed}

	if total == 0 {
		sel.IDs = []uint64{}
		sel.Warning = fmt.Errorf("%w: requested %d cells from an empty population", types.ErrEmptyPopulation, sampleSize)

		return sel, nil
	}

	sel.Effective, sel.Clamped = s.EffectiveSize(sampleSize, total)
	if sel.Clamped {
		sel.Warning = fmt.Errorf("%w: requested %d of %d cells exceeds %.0f%% coverage, sampling %d",
			types.ErrSampleSizeReduced, sampleSize, total, s.coverageLimit*100, sel.Effective)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), pcgStream))
	taken := s.newMemberSet(total)

	sel.IDs = make([]uint64, 0, sel.Effective)
	for len(sel.IDs) < sel.Effective {
		id := rng.Uint64N(total)
		sel.Draws++

		if taken.testAndSet(id) {
			continue
		}
		sel.IDs = append(sel.IDs, id)
	}

	return sel, nil
}

func (s *Selector) newMemberSet(total uint64) memberSet {
	if total <= s.denseSetLimit {
		return newDenseSet(total)
	}

	return newSparseSet()
}
