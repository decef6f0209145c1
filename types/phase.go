package types

// Phase represents a distribution protocol phase.
//
// The coordinator progresses through:
//
//	PhaseIdle → PhaseCollectCounts → PhaseBuildIndex → PhaseSelectPlan → PhaseDistribute → PhaseMaterialize → PhaseDone
//
// Workers skip index building and planning:
//
//	PhaseIdle → PhaseCollectCounts → PhaseDistribute → PhaseMaterialize → PhaseDone
//
// Any phase other than PhaseDone may move to PhaseAborted. Done and Aborted are terminal.
type Phase int

const (
	// PhaseIdle is the state before a pass begins.
	PhaseIdle Phase = iota

	// PhaseCollectCounts gathers local cell counts on the coordinator.
	PhaseCollectCounts

	// PhaseBuildIndex builds the partition index on the coordinator.
	PhaseBuildIndex

	// PhaseSelectPlan selects global ids and buckets them per owning rank.
	PhaseSelectPlan

	// PhaseDistribute sends (coordinator) or receives (worker) assignment lists.
	PhaseDistribute

	// PhaseMaterialize copies assigned cells into the output dataset.
	PhaseMaterialize

	// PhaseDone indicates the pass completed.
	PhaseDone

	// PhaseAborted indicates the pass failed and produced no defined result.
	PhaseAborted
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseCollectCounts:
		return "CollectCounts"
	case PhaseBuildIndex:
		return "BuildIndex"
	case PhaseSelectPlan:
		return "SelectPlan"
	case PhaseDistribute:
		return "Distribute"
	case PhaseMaterialize:
		return "Materialize"
	case PhaseDone:
		return "Done"
	case PhaseAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition is allowed from p.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseAborted
}
