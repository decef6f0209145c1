package randcells

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/randcells/internal/logging"
	"github.com/arloliu/randcells/internal/metrics"
)

// Option configures a Sampler with optional dependencies.
type Option func(*samplerOptions)

// samplerOptions holds optional Sampler configuration.
type samplerOptions struct {
	group     ProcessGroup
	newCopier CopierFactory
	hooks     *Hooks
	metrics   MetricsCollector
	logger    Logger
}

// WithProcessGroup sets the process group the sampler runs on.
//
// Without this option the sampler runs as a single process.
//
// Parameters:
//   - g: ProcessGroup implementation (group.Local member, group.NATS, ...)
//
// Returns:
//   - Option: Functional option for NewSampler
//
// Example:
//
//	g, _ := group.NewNATS(ctx, js, cfg.Transport)
//	s, err := randcells.NewSampler(&cfg, randcells.WithProcessGroup(g))
func WithProcessGroup(g ProcessGroup) Option {
	return func(o *samplerOptions) {
		o.group = g
	}
}

// WithCopierFactory sets how cell copiers are created for a source dataset.
//
// The default is dataset.NewCopier, which supports PolyData and
// UnstructuredGrid. Supporting another dataset shape only needs a factory.
//
// Parameters:
//   - factory: CopierFactory returning a copier for the source shape
//
// Returns:
//   - Option: Functional option for NewSampler
func WithCopierFactory(factory CopierFactory) Option {
	return func(o *samplerOptions) {
		o.newCopier = factory
	}
}

// WithHooks sets pass event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewSampler
//
// Example:
//
//	hooks := &randcells.Hooks{
//	    OnDiagnostic: func(ctx context.Context, d randcells.Diagnostic) error {
//	        log.Printf("%s", d)
//	        return nil
//	    },
//	}
//	s, err := randcells.NewSampler(&cfg, randcells.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *samplerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewSampler
//
// Example:
//
//	m := randcells.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")
//	s, err := randcells.NewSampler(&cfg, randcells.WithMetrics(m))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *samplerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for NewSampler
//
// Example:
//
//	s, err := randcells.NewSampler(&cfg, randcells.WithLogger(randcells.NewSlogLogger(slog.Default())))
func WithLogger(logger Logger) Option {
	return func(o *samplerOptions) {
		o.logger = logger
	}
}

// NewPrometheusMetrics creates a Prometheus-backed MetricsCollector.
//
// Metrics are registered lazily on first use. An empty namespace defaults to
// "randcells".
//
// Parameters:
//   - reg: Registerer to register metrics with
//   - namespace: Metric namespace prefix
//
// Returns:
//   - MetricsCollector: Collector ready to pass to WithMetrics
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}

// NewSlogLogger adapts a *slog.Logger to the Logger interface. A nil logger
// uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	return logging.NewSlog(l)
}
