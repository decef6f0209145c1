// Package rankclaim hands out process-group ranks through NATS KV leases.
//
// Processes that do not know their rank race to create the lease key of each
// rank in ascending order; the first successful create wins that rank. The
// lease is renewed in the background until Release. A lease that can no
// longer be renewed is reported through Lost.
package rankclaim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/randcells/internal/logger"
	"github.com/arloliu/randcells/internal/natsutil"
	"github.com/arloliu/randcells/types"
)

// Common errors returned by the claimer.
var (
	ErrNoAvailableRank = errors.New("no available rank in group")
	ErrNotClaimed      = errors.New("rank not claimed")
	ErrRankLost        = errors.New("rank lease lost")
)

// Claimer claims one rank of a process group and keeps the lease alive.
type Claimer struct {
	kv     jetstream.KeyValue
	prefix string
	size   int
	ttl    time.Duration
	logger types.Logger

	mu       sync.Mutex
	rank     int
	revision uint64
	stopCh   chan struct{}
	doneCh   chan struct{}

	lostCh   chan struct{}
	lostOnce sync.Once
}

// NewClaimer creates a rank claimer.
//
// Parameters:
//   - kv: Bucket holding rank leases; its TTL should match ttl
//   - prefix: Key prefix identifying the group and session (e.g., "sampling.run-7")
//   - size: Group size; ranks [0, size) are claimable
//   - ttl: Lease TTL; renewal happens every ttl/3
//   - logger: Logger (nop when nil)
//
// Returns:
//   - *Claimer: New claimer instance
//
// Example:
//
//	c := rankclaim.NewClaimer(kv, "sampling.run-7", 4, 30*time.Second, logger)
//	rank, err := c.Claim(ctx)
func NewClaimer(kv jetstream.KeyValue, prefix string, size int, ttl time.Duration, log types.Logger) *Claimer {
	if log == nil {
		log = logger.NewNop()
	}

	return &Claimer{
		kv:     kv,
		prefix: prefix,
		size:   size,
		ttl:    ttl,
		logger: log,
		rank:   -1,
		lostCh: make(chan struct{}),
	}
}

// Claim takes the lowest free rank.
//
// Returns:
//   - int: Claimed rank
//   - error: ErrNoAvailableRank if all ranks are leased, context error, or NATS error
func (c *Claimer) Claim(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rank >= 0 {
		return c.rank, nil
	}

	owner := leaseOwner()
	for rank := range c.size {
		if err := ctx.Err(); err != nil {
			return -1, err
		}

		key := c.keyFor(rank)
		rev, err := c.kv.Create(ctx, key, []byte(owner))
		if err == nil {
			c.rank = rank
			c.revision = rev
			c.logger.Info("rank claimed", "rank", rank, "key", key, "owner", owner)

			return rank, nil
		}

		if !errors.Is(err, jetstream.ErrKeyExists) {
			c.logger.Error("rank claim failed", "rank", rank, "error", err)
			return -1, fmt.Errorf("failed to claim rank %d: %w", rank, err)
		}

		c.logger.Debug("rank already leased, trying next", "rank", rank)
	}

	c.logger.Error("no available rank", "prefix", c.prefix, "size", c.size)

	return -1, fmt.Errorf("%w: all %d ranks of %s are leased", ErrNoAvailableRank, c.size, c.prefix)
}

// StartRenewal renews the lease every ttl/3 until Release or ctx is done.
func (c *Claimer) StartRenewal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rank < 0 {
		return ErrNotClaimed
	}
	if c.stopCh != nil {
		return nil
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.renewalLoop(ctx, c.stopCh, c.doneCh)

	return nil
}

func (c *Claimer) renewalLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(max(c.ttl/3, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			err := c.renew(ctx)
			switch {
			case err == nil:
			case natsutil.IsConnectivityError(err):
				c.logger.Warn("rank lease renewal failed, retrying", "rank", c.Rank(), "error", err)
			default:
				// the lease expired and was taken, or was deleted
				c.logger.Error("rank lease lost", "rank", c.Rank(), "error", err)
				c.lostOnce.Do(func() { close(c.lostCh) })

				return
			}
		}
	}
}

func (c *Claimer) renew(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rank < 0 {
		return ErrNotClaimed
	}

	// Update on our own revision so a lease taken over after expiry is not clobbered.
	rev, err := c.kv.Update(ctx, c.keyFor(c.rank), []byte(leaseOwner()), c.revision)
	if err != nil {
		return fmt.Errorf("failed to renew rank %d: %w", c.rank, err)
	}
	c.revision = rev

	return nil
}

// Release stops renewal and deletes the lease so the rank can be reused.
func (c *Claimer) Release(ctx context.Context) error {
	c.mu.Lock()
	stopCh, doneCh := c.stopCh, c.doneCh
	c.stopCh, c.doneCh = nil, nil
	rank := c.rank
	c.mu.Unlock()

	if rank < 0 {
		return ErrNotClaimed
	}

	if stopCh != nil {
		close(stopCh)
		select {
		case <-doneCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// a lost lease may already belong to another process
	if !c.IsLost() {
		if err := c.kv.Delete(ctx, c.keyFor(rank)); err != nil {
			return fmt.Errorf("failed to release rank %d: %w", rank, err)
		}
	}

	c.mu.Lock()
	c.rank = -1
	c.revision = 0
	c.mu.Unlock()

	c.logger.Debug("rank released", "rank", rank)

	return nil
}

// Rank returns the claimed rank, or -1.
func (c *Claimer) Rank() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rank
}

// Lost returns a channel closed once renewal finds the lease gone. After
// that the rank may be held by another process.
func (c *Claimer) Lost() <-chan struct{} {
	return c.lostCh
}

// IsLost reports whether the lease was lost.
func (c *Claimer) IsLost() bool {
	select {
	case <-c.lostCh:
		return true
	default:
		return false
	}
}

func (c *Claimer) keyFor(rank int) string {
	return fmt.Sprintf("%s.rank.%d", c.prefix, rank)
}

func leaseOwner() string {
	host, _ := os.Hostname()

	return fmt.Sprintf("%s/%d@%s", host, os.Getpid(), time.Now().UTC().Format(time.RFC3339))
}
