package randcells

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/randcells/group"
	"github.com/arloliu/randcells/internal/protocol"
	"github.com/arloliu/randcells/internal/selector"
)

// Config controls one sampling pass and the transport it runs over.
//
// Start from DefaultConfig: the zero value of Seed and CoordinatorRank are
// valid explicit choices (seed 0, coordinator rank 0), so SetDefaults cannot
// tell them apart from unset fields.
type Config struct {
	// SampleSize is the requested number of distinct cells across all ranks.
	// Values below 1 are a configuration error reported when the pass runs;
	// the output is reset to empty and no rank is contacted.
	SampleSize int `yaml:"sampleSize"`

	// Seed seeds the pseudo-random generator. Negative values derive the
	// seed from the current time; the seed actually used is reported in
	// Result.Seed so a run can be replayed.
	//
	// Default: -1
	Seed int64 `yaml:"seed"`

	// CoordinatorRank is the rank that selects and distributes the sample.
	// -1 picks rank 0 for single-process runs and rank 1 otherwise.
	//
	// Default: -1
	CoordinatorRank int `yaml:"coordinatorRank"`

	// CoverageLimit is the largest sampled fraction of the population. A
	// request above it is reduced to floor(CoverageLimit * total) cells and
	// reported as a warning.
	//
	// Default: 0.75
	CoverageLimit float64 `yaml:"coverageLimit"`

	// DenseSetLimit is the largest population tracked with a dense bitset
	// during rejection sampling; larger populations use a compressed bitmap.
	//
	// Default: 1<<26
	DenseSetLimit uint64 `yaml:"denseSetLimit"`

	// OperationTimeout bounds each gather, send and receive. Zero blocks
	// until the operation completes or the context is done.
	//
	// Default: 0
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// Transport configures the NATS process group. It is only used when the
	// caller joins a NATS group; single-process and in-memory groups ignore it.
	Transport group.NATSConfig `yaml:"transport"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values and SampleSize 1
func DefaultConfig() Config {
	return Config{
		SampleSize:       1,
		Seed:             -1,
		CoordinatorRank:  protocol.AutoCoordinator,
		CoverageLimit:    selector.DefaultCoverageLimit,
		DenseSetLimit:    selector.DefaultDenseSetLimit,
		OperationTimeout: 0,
		Transport:        group.DefaultNATSConfig(),
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// SampleSize, Seed, CoordinatorRank and OperationTimeout are left alone:
// their zero values are meaningful.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.CoverageLimit == 0 {
		cfg.CoverageLimit = defaults.CoverageLimit
	}
	if cfg.DenseSetLimit == 0 {
		cfg.DenseSetLimit = defaults.DenseSetLimit
	}
	cfg.Transport.SetDefaults()
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - 0 < CoverageLimit <= 1
//   - CoordinatorRank >= -1
//   - OperationTimeout >= 0
//   - Transport is valid
//
// SampleSize is deliberately not validated here. An invalid sample size is
// reported per pass through the diagnostic channel.
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if math.IsNaN(cfg.CoverageLimit) || cfg.CoverageLimit <= 0 || cfg.CoverageLimit > 1 {
		return fmt.Errorf("%w: CoverageLimit (%v) must be in (0, 1]", ErrInvalidConfig, cfg.CoverageLimit)
	}

	if cfg.CoordinatorRank < protocol.AutoCoordinator {
		return fmt.Errorf("%w: CoordinatorRank (%d) must be >= -1", ErrInvalidConfig, cfg.CoordinatorRank)
	}

	if cfg.OperationTimeout < 0 {
		return fmt.Errorf("%w: OperationTimeout (%v) must be >= 0", ErrInvalidConfig, cfg.OperationTimeout)
	}

	if err := cfg.Transport.Validate(); err != nil {
		return fmt.Errorf("transport: %w", err)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewSampler() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.SampleSize < 1 {
		logger.Warn(
			"sample size is below 1, every pass will fail with a configuration error",
			"sample_size", cfg.SampleSize,
		)
	}

	if cfg.CoverageLimit > selector.DefaultCoverageLimit {
		logger.Warn(
			"coverage limit above default, rejection sampling slows down near full coverage",
			"coverage_limit", cfg.CoverageLimit,
			"recommended", selector.DefaultCoverageLimit,
		)
	}

	if cfg.DenseSetLimit > 1<<32 {
		logger.Warn(
			"dense set limit is very large, a dense membership set may need gigabytes",
			"dense_set_limit", cfg.DenseSetLimit,
		)
	}
}

// TestConfig returns a configuration suited to tests.
//
// The seed is fixed so passes are reproducible, transport calls time out
// after a few seconds instead of blocking forever, and NATS buckets use
// memory storage.
//
// Returns:
//   - Config: Configuration for tests
//
// Example:
//
//	cfg := randcells.TestConfig()
//	cfg.SampleSize = 10
//	s, err := randcells.NewSampler(&cfg)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Seed = 42
	cfg.OperationTimeout = 5 * time.Second
	cfg.Transport.PayloadTTL = 30 * time.Second
	cfg.Transport.RankClaimTTL = 3 * time.Second
	cfg.Transport.MemoryStorage = true

	return cfg
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
//
// Fields absent from the file keep their default values. Unknown fields are
// rejected.
//
// Parameters:
//   - path: Path of the YAML file
//
// Returns:
//   - Config: Loaded configuration with defaults applied
//   - error: Read, parse or validation error
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// ParseConfig decodes YAML configuration on top of DefaultConfig, applies
// defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
