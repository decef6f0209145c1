// Package protocol runs one distributed sampling pass over a process group.
//
// Every rank reports its local cell count to the coordinator. The coordinator
// builds the partition table, draws the sample, buckets it per owning rank and
// sends each rank its list of local ids (count first, then the list). Every
// rank, the coordinator included, then copies its assigned cells.
//
// A pass moves through the phases of types.Phase. Transitions are validated;
// workers skip BuildIndex and SelectPlan. Any failure moves the pass to
// PhaseAborted and is returned to the caller; nothing is retried.
package protocol
