// Package group provides process groups for randcells sampling passes.
//
// A process group is a fixed set of ranks that can gather one value per rank
// at a root and exchange tagged point-to-point messages of uint64 values.
// Messages between a pair of ranks with the same tag arrive in send order.
//
// Implementations:
//   - Single: one process, no transport
//   - Local: N ranks inside one process, backed by channels
//   - NATS: ranks in separate processes, backed by a JetStream KV bucket
package group
