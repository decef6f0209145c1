package protocol

import (
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/randcells/types"
)

var validTransitions = map[types.Phase][]types.Phase{
	types.PhaseIdle:          {types.PhaseCollectCounts, types.PhaseAborted},
	types.PhaseCollectCounts: {types.PhaseBuildIndex, types.PhaseDistribute, types.PhaseAborted},
	types.PhaseBuildIndex:    {types.PhaseSelectPlan, types.PhaseAborted},
	types.PhaseSelectPlan:    {types.PhaseDistribute, types.PhaseAborted},
	types.PhaseDistribute:    {types.PhaseMaterialize, types.PhaseAborted},
	types.PhaseMaterialize:   {types.PhaseDone, types.PhaseAborted},
	types.PhaseDone:          {},
	types.PhaseAborted:       {},
}

// isValidTransition reports whether a pass may move from one phase to another.
func isValidTransition(from, to types.Phase) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	return slices.Contains(allowed, to)
}

// transition moves the pass to phase to, recording metrics and notifying hooks.
func (p *pass) transition(to types.Phase) error {
	from := p.phase
	if !isValidTransition(from, to) {
		p.r.logger.Error("invalid phase transition attempted",
			"from", from.String(),
			"to", to.String(),
			"rank", p.r.rank,
		)

		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, from, to)
	}

	now := time.Now()
	p.r.metrics.RecordPhaseTransition(from, to, now.Sub(p.phaseStart).Seconds())
	p.phase = to
	p.phaseStart = now

	p.r.logger.Debug("phase transition",
		"from", from.String(),
		"to", to.String(),
		"rank", p.r.rank,
	)

	// Hooks run synchronously; a failing hook never aborts the pass.
	if err := p.r.hooks.OnPhaseChanged(p.ctx, from, to); err != nil {
		p.r.logger.Warn("phase change hook error", "from", from.String(), "to", to.String(), "error", err)
	}

	return nil
}
