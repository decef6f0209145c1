package types

import "testing"

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhaseCollectCounts, "CollectCounts"},
		{PhaseBuildIndex, "BuildIndex"},
		{PhaseSelectPlan, "SelectPlan"},
		{PhaseDistribute, "Distribute"},
		{PhaseMaterialize, "Materialize"},
		{PhaseDone, "Done"},
		{PhaseAborted, "Aborted"},
		{Phase(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.want {
				t.Errorf("Phase.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhaseIsTerminal(t *testing.T) {
	if !PhaseDone.IsTerminal() || !PhaseAborted.IsTerminal() {
		t.Fatal("Done and Aborted must be terminal")
	}
	if PhaseMaterialize.IsTerminal() {
		t.Fatal("Materialize must not be terminal")
	}
}

func TestShapeString(t *testing.T) {
	if ShapePolyData.String() != "PolyData" || ShapeUnstructuredGrid.String() != "UnstructuredGrid" {
		t.Fatal("unexpected shape names")
	}
	if ShapeUnknown.String() != "Unknown" {
		t.Fatal("zero shape must be Unknown")
	}
}
