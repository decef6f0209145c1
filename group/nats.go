package group

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/randcells/internal/kvutil"
	"github.com/arloliu/randcells/internal/logger"
	"github.com/arloliu/randcells/internal/logging"
	"github.com/arloliu/randcells/internal/metrics"
	"github.com/arloliu/randcells/internal/natsutil"
	"github.com/arloliu/randcells/internal/rankclaim"
	"github.com/arloliu/randcells/internal/wire"
	"github.com/arloliu/randcells/types"
)

// NATS is a process group whose ranks exchange messages through a JetStream
// KV bucket.
//
// Every message is one KV entry. Gather contributions are keyed
//
//	<group>.<session>.g.<seq>.<rank>
//
// and point-to-point messages
//
//	<group>.<session>.m.<src>.<dst>.<tag>.<seq>
//
// where seq counts operations on that channel from 1. Both sides advance
// the same counters, so a key is written exactly once per session. The
// receiver watches for its key, decodes it and deletes it; entries nobody
// consumes expire after PayloadTTL.
type NATS struct {
	cfg     NATSConfig
	kv      jetstream.KeyValue
	rank    int
	seqs    *xsync.Map[string, *atomic.Uint64]
	logger  types.Logger
	metrics types.MetricsCollector

	claimer     *rankclaim.Claimer
	stopRenewal context.CancelFunc

	closeOnce sync.Once
	closed    atomic.Bool
}

var _ types.ProcessGroup = (*NATS)(nil)

type natsOptions struct {
	logger  types.Logger
	metrics types.MetricsCollector
}

// Option configures a NATS group.
type Option func(*natsOptions)

// WithLogger sets the logger of a NATS group.
func WithLogger(l types.Logger) Option {
	return func(o *natsOptions) {
		o.logger = l
	}
}

// WithMetrics sets the metrics collector of a NATS group.
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *natsOptions) {
		o.metrics = m
	}
}

// NewNATS joins a NATS-backed process group.
//
// The message bucket is created if missing. When cfg.Rank is ClaimRank the
// lowest free rank is leased from cfg.RankBucket and renewed until Close.
//
// Parameters:
//   - ctx: Context for bucket setup and rank claiming
//   - js: JetStream context
//   - cfg: Group configuration (defaults applied to zero fields)
//   - opts: Optional logger and metrics
//
// Returns:
//   - *NATS: Group member ready for use; call Close when done
//   - error: Configuration, bucket or rank claim failure
//
// Example:
//
//	cfg := group.DefaultNATSConfig()
//	cfg.Size = 4
//	g, err := group.NewNATS(ctx, js, cfg)
//	if err != nil {
//	    return err
//	}
//	defer g.Close(context.Background())
func NewNATS(ctx context.Context, js jetstream.JetStream, cfg NATSConfig, opts ...Option) (*NATS, error) {
	if js == nil {
		return nil, fmt.Errorf("%w: jetstream context is required", types.ErrInvalidConfig)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := natsOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	kv, err := kvutil.EnsureBucket(ctx, js, kvutil.BucketSpec{
		Name:   cfg.Bucket,
		TTL:    cfg.PayloadTTL,
		Memory: cfg.MemoryStorage,
	}, 0)
	if err != nil {
		return nil, natsutil.Wrap("open message bucket", err)
	}

	n := &NATS{
		cfg:     cfg,
		kv:      kv,
		rank:    cfg.Rank,
		seqs:    xsync.NewMap[string, *atomic.Uint64](),
		logger:  o.logger,
		metrics: o.metrics,
	}

	if cfg.Rank == ClaimRank {
		if err := n.claimRank(ctx, js); err != nil {
			return nil, err
		}
	}

	// every later entry of this member carries its session and rank
	n.logger = logging.With(n.logger, "session", cfg.Session, "rank", n.rank)
	n.logger.Info("joined NATS process group",
		"group", cfg.Group,
		"size", cfg.Size,
		"bucket", cfg.Bucket,
	)

	return n, nil
}

func (n *NATS) claimRank(ctx context.Context, js jetstream.JetStream) error {
	leases, err := kvutil.EnsureBucket(ctx, js, kvutil.BucketSpec{
		Name:   n.cfg.RankBucket,
		TTL:    n.cfg.RankClaimTTL,
		Memory: n.cfg.MemoryStorage,
	}, 0)
	if err != nil {
		return natsutil.Wrap("open rank bucket", err)
	}

	claimer := rankclaim.NewClaimer(leases, n.cfg.prefix(), n.cfg.Size, n.cfg.RankClaimTTL, n.logger)
	rank, err := claimer.Claim(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidRank, err)
	}

	renewCtx, cancel := context.WithCancel(context.Background())
	if err := claimer.StartRenewal(renewCtx); err != nil {
		cancel()
		return err
	}

	n.rank = rank
	n.claimer = claimer
	n.stopRenewal = cancel

	return nil
}

// Size returns the number of ranks.
func (n *NATS) Size() int {
	return n.cfg.Size
}

// Rank returns this member's rank.
func (n *NATS) Rank() int {
	return n.rank
}

// Session returns the session name messages are scoped to.
func (n *NATS) Session() string {
	return n.cfg.Session
}

// Close leaves the group and releases a claimed rank.
func (n *NATS) Close(ctx context.Context) error {
	var err error
	n.closeOnce.Do(func() {
		n.closed.Store(true)
		if n.claimer != nil {
			err = n.claimer.Release(ctx)
			n.stopRenewal()
		}
	})

	return err
}

// Gather collects one value per rank at root, indexed by rank. Non-root
// ranks get a nil slice.
func (n *NATS) Gather(ctx context.Context, root int, value uint64) ([]uint64, error) {
	if err := n.check(root); err != nil {
		return nil, err
	}

	seq := n.next("g")
	base := fmt.Sprintf("%s.g.%d", n.cfg.prefix(), seq)

	if n.rank != root {
		return nil, n.put(ctx, "gather", fmt.Sprintf("%s.%d", base, n.rank), []uint64{value})
	}

	out := make([]uint64, n.cfg.Size)
	out[root] = value
	if n.cfg.Size == 1 {
		return out, nil
	}

	got, err := n.collect(ctx, base+".*", n.cfg.Size-1)
	if err != nil {
		return nil, natsutil.Wrap("gather", err)
	}

	for key, frame := range got {
		src, err := strconv.Atoi(key[strings.LastIndexByte(key, '.')+1:])
		if err != nil || src < 0 || src >= n.cfg.Size || src == root {
			return nil, fmt.Errorf("%w: unexpected gather key %q", types.ErrTransport, key)
		}

		vals, err := n.decode("gather", frame)
		if err != nil {
			return nil, err
		}
		if len(vals) != 1 {
			return nil, fmt.Errorf("%w: gather message from rank %d carries %d values", types.ErrTransport, src, len(vals))
		}
		out[src] = vals[0]
	}

	return out, nil
}

// Send stores payload for dest.
func (n *NATS) Send(ctx context.Context, dest int, tag types.Tag, payload []uint64) error {
	if err := n.check(dest); err != nil {
		return err
	}
	if dest == n.rank {
		return fmt.Errorf("%w: rank %d", ErrSelfMessage, dest)
	}

	key := n.messageKey(n.rank, dest, tag)

	return n.put(ctx, "send", key, payload)
}

// Recv waits for the next message from src with the given tag and consumes it.
func (n *NATS) Recv(ctx context.Context, src int, tag types.Tag) ([]uint64, error) {
	if err := n.check(src); err != nil {
		return nil, err
	}
	if src == n.rank {
		return nil, fmt.Errorf("%w: rank %d", ErrSelfMessage, src)
	}

	key := n.messageKey(src, n.rank, tag)
	got, err := n.collect(ctx, key, 1)
	if err != nil {
		return nil, natsutil.Wrap("recv", err)
	}

	return n.decode("recv", got[key])
}

func (n *NATS) check(rank int) error {
	if n.closed.Load() {
		return ErrClosed
	}
	if n.claimer != nil && n.claimer.IsLost() {
		return fmt.Errorf("%w: rank %d: %w", types.ErrTransport, n.rank, ErrRankLost)
	}
	if rank < 0 || rank >= n.cfg.Size {
		return fmt.Errorf("%w: rank %d outside group of size %d", types.ErrInvalidRank, rank, n.cfg.Size)
	}

	return nil
}

// next advances the sequence counter of a channel.
func (n *NATS) next(channel string) uint64 {
	ctr, ok := n.seqs.Load(channel)
	if !ok {
		ctr, _ = n.seqs.LoadOrStore(channel, new(atomic.Uint64))
	}

	return ctr.Add(1)
}

func (n *NATS) messageKey(src, dst int, tag types.Tag) string {
	channel := fmt.Sprintf("m.%d.%d.%d", src, dst, tag)

	return fmt.Sprintf("%s.%s.%d", n.cfg.prefix(), channel, n.next(channel))
}

func (n *NATS) put(ctx context.Context, op, key string, payload []uint64) error {
	frame, err := wire.Encode(payload, n.cfg.CompressThreshold)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", op, err)
	}
	n.metrics.RecordPayloadBytes(op, len(frame))

	// Create rather than Put: a key that already holds a value means two
	// runs share a session.
	if _, err := n.kv.Create(ctx, key, frame); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return fmt.Errorf("%w: %s key %s already exists; is another run using session %q?",
				types.ErrTransport, op, key, n.cfg.Session)
		}

		return natsutil.Wrap(op, err)
	}

	n.logger.Debug("message stored", "op", op, "key", key, "values", len(payload), "bytes", len(frame))

	return nil
}

func (n *NATS) decode(op string, frame []byte) ([]uint64, error) {
	n.metrics.RecordPayloadBytes(op, len(frame))

	vals, err := wire.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrTransport, op, err)
	}

	return vals, nil
}

// collect watches pattern until want distinct keys hold a value, then
// deletes them and returns their values by key.
func (n *NATS) collect(ctx context.Context, pattern string, want int) (map[string][]byte, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher, err := n.kv.Watch(watchCtx, pattern, jetstream.IgnoreDeletes())
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", pattern, err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			n.logger.Debug("failed to stop watcher", "pattern", pattern, "error", err)
		}
	}()

	got := make(map[string][]byte, want)
	for len(got) < want {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil, fmt.Errorf("watcher for %s closed", pattern)
			}
			if entry == nil {
				// end of initial values replay
				continue
			}
			if entry.Operation() != jetstream.KeyValuePut {
				continue
			}
			got[entry.Key()] = entry.Value()
		}
	}

	// Consumed keys are deleted best effort; PayloadTTL removes leftovers.
	delCtx, delCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer delCancel()
	for key := range got {
		if err := n.kv.Delete(delCtx, key); err != nil {
			n.logger.Warn("failed to delete consumed message", "key", key, "error", err)
		}
	}

	return got, nil
}
