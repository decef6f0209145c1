package group

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/randcells/internal/wire"
	"github.com/arloliu/randcells/types"
)

func TestNATSConfig_SetDefaults(t *testing.T) {
	var cfg NATSConfig
	cfg.SetDefaults()

	require.Equal(t, "randcells", cfg.Group)
	require.Equal(t, "default", cfg.Session)
	require.Equal(t, 1, cfg.Size)
	require.Equal(t, 0, cfg.Rank, "zero rank is a valid explicit rank")
	require.Equal(t, "randcells-messages", cfg.Bucket)
	require.Equal(t, "randcells-ranks", cfg.RankBucket)
	require.Equal(t, 5*time.Minute, cfg.PayloadTTL)
	require.Equal(t, 30*time.Second, cfg.RankClaimTTL)
	require.Equal(t, 0, cfg.CompressThreshold)

	d := DefaultNATSConfig()
	require.Equal(t, ClaimRank, d.Rank)
	require.Equal(t, wire.DefaultCompressThreshold, d.CompressThreshold)
}

func TestNATSConfig_Validate(t *testing.T) {
	valid := func() NATSConfig {
		c := DefaultNATSConfig()
		c.Size = 4

		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *NATSConfig)
		wantErr error
	}{
		{"default", func(c *NATSConfig) {}, nil},
		{"explicit rank", func(c *NATSConfig) { c.Rank = 3 }, nil},
		{"rank too large", func(c *NATSConfig) { c.Rank = 4 }, types.ErrInvalidRank},
		{"negative rank", func(c *NATSConfig) { c.Rank = -2 }, types.ErrInvalidRank},
		{"zero size", func(c *NATSConfig) { c.Size = 0 }, types.ErrInvalidConfig},
		{"dotted session", func(c *NATSConfig) { c.Session = "a.b" }, types.ErrInvalidConfig},
		{"wildcard group", func(c *NATSConfig) { c.Group = "g*" }, types.ErrInvalidConfig},
		{"same buckets", func(c *NATSConfig) { c.RankBucket = c.Bucket }, types.ErrInvalidConfig},
		{"short claim ttl", func(c *NATSConfig) { c.RankClaimTTL = 100 * time.Millisecond }, types.ErrInvalidConfig},
		{"short claim ttl with explicit rank", func(c *NATSConfig) {
			c.Rank = 0
			c.RankClaimTTL = 100 * time.Millisecond
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
