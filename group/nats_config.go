package group

import (
	"fmt"
	"time"

	"github.com/arloliu/randcells/internal/kvutil"
	"github.com/arloliu/randcells/internal/wire"
	"github.com/arloliu/randcells/types"
)

// ClaimRank asks the NATS group to claim a free rank from the lease bucket.
const ClaimRank = -1

// NATSConfig configures a NATS-backed process group.
//
// All ranks of one group must agree on Group, Session, Size and both bucket
// names. Duration fields accept Go duration strings such as "30s" or "5m".
type NATSConfig struct {
	// Group names the process group. Used as the first key component.
	Group string `yaml:"group"`

	// Session separates runs of the same group so a restarted run never reads
	// messages left over from an earlier one.
	Session string `yaml:"session"`

	// Size is the number of ranks.
	Size int `yaml:"size"`

	// Rank is this process's rank, or ClaimRank to lease one from RankBucket.
	Rank int `yaml:"rank"`

	// Bucket is the KV bucket carrying messages.
	Bucket string `yaml:"bucket"`

	// RankBucket is the KV bucket holding rank leases.
	RankBucket string `yaml:"rankBucket"`

	// PayloadTTL expires messages that were never consumed.
	PayloadTTL time.Duration `yaml:"payloadTtl"`

	// RankClaimTTL is the lease TTL of a claimed rank; it is renewed every third of it.
	RankClaimTTL time.Duration `yaml:"rankClaimTtl"`

	// CompressThreshold is the encoded size in bytes from which payloads are
	// zstd compressed. Zero or negative disables compression.
	CompressThreshold int `yaml:"compressThreshold"`

	// MemoryStorage keeps both buckets in memory instead of on disk.
	MemoryStorage bool `yaml:"memoryStorage"`
}

// DefaultNATSConfig returns the default NATS group configuration for a
// group of one rank claimed from KV. Size must usually be overridden.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		Group:             "randcells",
		Session:           "default",
		Size:              1,
		Rank:              ClaimRank,
		Bucket:            "randcells-messages",
		RankBucket:        "randcells-ranks",
		PayloadTTL:        5 * time.Minute,
		RankClaimTTL:      30 * time.Second,
		CompressThreshold: wire.DefaultCompressThreshold,
	}
}

// SetDefaults fills zero-valued fields with DefaultNATSConfig values.
// Rank and CompressThreshold are left alone: zero is meaningful for both.
func (c *NATSConfig) SetDefaults() {
	d := DefaultNATSConfig()

	if c.Group == "" {
		c.Group = d.Group
	}
	if c.Session == "" {
		c.Session = d.Session
	}
	if c.Size == 0 {
		c.Size = d.Size
	}
	if c.Bucket == "" {
		c.Bucket = d.Bucket
	}
	if c.RankBucket == "" {
		c.RankBucket = d.RankBucket
	}
	if c.PayloadTTL == 0 {
		c.PayloadTTL = d.PayloadTTL
	}
	if c.RankClaimTTL == 0 {
		c.RankClaimTTL = d.RankClaimTTL
	}
}

// Validate checks the configuration.
func (c *NATSConfig) Validate() error {
	for name, v := range map[string]string{
		"group":      c.Group,
		"session":    c.Session,
		"bucket":     c.Bucket,
		"rankBucket": c.RankBucket,
	} {
		if !kvutil.ValidToken(v) {
			return fmt.Errorf("%w: %s %q must match [A-Za-z0-9_-]+", types.ErrInvalidConfig, name, v)
		}
	}

	if c.Size < 1 {
		return fmt.Errorf("%w: size must be >= 1, got %d", types.ErrInvalidConfig, c.Size)
	}
	if c.Rank != ClaimRank && (c.Rank < 0 || c.Rank >= c.Size) {
		return fmt.Errorf("%w: rank %d outside group of size %d", types.ErrInvalidRank, c.Rank, c.Size)
	}
	if c.PayloadTTL < 0 {
		return fmt.Errorf("%w: payloadTtl must not be negative", types.ErrInvalidConfig)
	}
	if c.Rank == ClaimRank && c.RankClaimTTL < time.Second {
		return fmt.Errorf("%w: rankClaimTtl must be >= 1s when claiming a rank, got %v", types.ErrInvalidConfig, c.RankClaimTTL)
	}
	if c.Bucket == c.RankBucket {
		return fmt.Errorf("%w: bucket and rankBucket must differ", types.ErrInvalidConfig)
	}

	return nil
}

func (c *NATSConfig) prefix() string {
	return c.Group + "." + c.Session
}
