// Package randcells draws a uniformly random, duplicate-free subset of the
// cells of a dataset that is partitioned across cooperating processes, and
// has every process copy only the sampled cells it owns.
//
// Each process (a "rank") owns a contiguous block of the global cell id
// space. One rank, the coordinator, gathers the local cell counts, selects
// the sample, maps every sampled id back to its owning rank and local offset
// and sends each rank its list. Every rank then appends its cells, with their
// points and attributes, to its own output dataset.
//
// # Quick Start
//
// Single process:
//
//	import (
//	    "github.com/arloliu/randcells"
//	    "github.com/arloliu/randcells/dataset"
//	)
//
//	cfg := randcells.DefaultConfig()
//	cfg.SampleSize = 100
//	cfg.Seed = 7
//
//	s, err := randcells.NewSampler(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	source := dataset.NewQuadGrid(100, 100, 0)
//	output := dataset.NewLike(source)
//	res, err := s.Run(ctx, source, output)
//
// # Process Groups
//
// Ranks communicate through a ProcessGroup:
//
//   - group.Single: one process, no transport (the default)
//   - group.Local: N ranks as goroutines of one process
//   - group.NATS: ranks in separate processes exchanging messages through
//     a JetStream KV bucket; a rank can be leased from KV instead of configured
//
// # Pass Phases
//
// The coordinator progresses through:
//
//	Idle → CollectCounts → BuildIndex → SelectPlan → Distribute → Materialize → Done
//
// Workers skip index building and planning. Any failure moves the pass to
// Aborted; a pass is never partially retried.
//
// # Errors and Diagnostics
//
// Configuration errors (ErrInvalidSampleSize, ErrUnsupportedShape, ...) are
// raised before any rank is contacted. A request covering more than 75% of
// the population is reduced and reported as a warning diagnostic
// (ErrSampleSizeReduced). Transport, internal consistency and copy failures
// abort the pass (see IsFatal). Diagnostics go to the Logger and to
// Hooks.OnDiagnostic and are listed in Result.Diagnostics.
//
// See the examples/ directory for complete working examples.
package randcells
