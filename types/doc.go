// Package types provides core type definitions and interfaces for the randcells library.
//
// This package contains shared types that are used across multiple packages in the
// library. By keeping these types in a separate package, we avoid import cycles
// between the main randcells package and its internal implementations.
//
// Key types:
//   - IDBlock: One rank's contiguous slice of the global cell-id space
//   - Phase: Distribution protocol phase
//   - Dataset, CellCopier: Dataset and cell-copy capability interfaces
//   - ProcessGroup: Collective and point-to-point transport between ranks
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
