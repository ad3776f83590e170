package ui

import (
	"strings"
	"testing"

	appmodel "edusolver/model"
	"edusolver/provider/testutil"
)

func TestStepStatusFor(t *testing.T) {
	tests := []struct {
		current appmodel.Stage
		step    appmodel.Stage
		want    stepStatus
	}{
		{appmodel.StageIdle, appmodel.StageAnalyzing, stepIdle},
		{appmodel.StageAnalyzing, appmodel.StageAnalyzing, stepActive},
		{appmodel.StageAnalyzing, appmodel.StageSolving, stepPending},
		{appmodel.StageSolving, appmodel.StageAnalyzing, stepCompleted},
		{appmodel.StageSolving, appmodel.StageSolving, stepActive},
		{appmodel.StageSolving, appmodel.StageValidating, stepPending},
		{appmodel.StageValidating, appmodel.StageSolving, stepCompleted},
		{appmodel.StageComplete, appmodel.StageValidating, stepCompleted},
		{appmodel.StageError, appmodel.StageAnalyzing, stepFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.current)+"/"+string(tt.step), func(t *testing.T) {
			if got := stepStatusFor(tt.current, tt.step); got != tt.want {
				t.Errorf("stepStatusFor(%s, %s) = %v, want %v", tt.current, tt.step, got, tt.want)
			}
		})
	}
}

func TestRenderPipelineLabels(t *testing.T) {
	got := stripANSI(renderPipeline(appmodel.StageSolving, appmodel.ModeDeep, "*"))

	for _, label := range []string{"✓ Understanding", "* Solving", "○ Validating"} {
		if !strings.Contains(got, label) {
			t.Errorf("pipeline %q missing %q", got, label)
		}
	}
}

func TestRenderPipelineQuickModeSkipsValidation(t *testing.T) {
	got := stripANSI(renderPipeline(appmodel.StageComplete, appmodel.ModeQuick, "*"))
	if strings.Contains(got, "Validating") {
		t.Errorf("quick pipeline %q shows a validation step", got)
	}
	if !strings.Contains(got, "✓ Solving") {
		t.Errorf("quick pipeline %q missing completed solve step", got)
	}
}

func TestSolverPageQuickSolution(t *testing.T) {
	a := newTestView(t)
	a.dataModel.Apply(appmodel.RecordOpened{
		Prompt:   "2+2",
		Mode:     appmodel.ModeQuick,
		Solution: testutil.TestSolution(),
	})

	page := stripANSI(a.renderSolverPage())
	if strings.Contains(page, "Validating") {
		t.Errorf("completed quick solve renders a Validating step:\n%s", page)
	}
	if !strings.Contains(page, "✓ Understanding") {
		t.Errorf("pipeline row missing:\n%s", page)
	}
}

func TestRenderSolutionTabs(t *testing.T) {
	a := newTestView(t)
	a.dataModel.Apply(appmodel.RecordOpened{
		Prompt:   "solve",
		Mode:     appmodel.ModeDeep,
		Solution: testutil.TestSolution(),
	})
	sol := testutil.TestSolution()

	primary := stripANSI(a.renderSolution(80))
	if !strings.Contains(primary, sol.PrimarySolution.MethodName) {
		t.Errorf("primary view missing method name %q", sol.PrimarySolution.MethodName)
	}
	if !strings.Contains(primary, "Alternative Method") {
		t.Error("alternative tab not offered")
	}
	if !strings.Contains(primary, "Validation Agent") {
		t.Error("validation section missing")
	}

	a.showAlternative = true
	alt := stripANSI(a.renderSolution(80))
	if !strings.Contains(alt, sol.AlternativeSolution.MethodName) {
		t.Errorf("alternative view missing method name %q", sol.AlternativeSolution.MethodName)
	}
}
