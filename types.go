package randcells

import (
	"github.com/arloliu/randcells/internal/protocol"
	"github.com/arloliu/randcells/types"
)

// Re-export types from the types package.
//
// Internal packages depend on types rather than on the root package; these
// aliases give users randcells.Dataset, randcells.Logger and so on without an
// extra import.
type (
	IDBlock    = types.IDBlock
	Phase      = types.Phase
	Severity   = types.Severity
	Diagnostic = types.Diagnostic
	Shape      = types.Shape
	Tag        = types.Tag
)

// Re-export interfaces from the types package for convenience.
type (
	Dataset          = types.Dataset
	CellCopier       = types.CellCopier
	CopierFactory    = types.CopierFactory
	ProcessGroup     = types.ProcessGroup
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Result describes a finished or aborted pass as seen by one rank.
type Result = protocol.Result

// Role of a rank within a pass.
type Role = protocol.Role

// Re-export role constants.
const (
	RoleCoordinator = protocol.RoleCoordinator
	RoleWorker      = protocol.RoleWorker
)

// Re-export Phase constants from the types package.
const (
	PhaseIdle          = types.PhaseIdle
	PhaseCollectCounts = types.PhaseCollectCounts
	PhaseBuildIndex    = types.PhaseBuildIndex
	PhaseSelectPlan    = types.PhaseSelectPlan
	PhaseDistribute    = types.PhaseDistribute
	PhaseMaterialize   = types.PhaseMaterialize
	PhaseDone          = types.PhaseDone
	PhaseAborted       = types.PhaseAborted
)

// Re-export Severity and Shape constants.
const (
	SeverityWarning = types.SeverityWarning
	SeverityError   = types.SeverityError

	ShapePolyData         = types.ShapePolyData
	ShapeUnstructuredGrid = types.ShapeUnstructuredGrid
)
