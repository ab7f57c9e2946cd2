package timesheet

import "testing"

func TestStageTransitionsFormAChain(t *testing.T) {
	expect := StatusSubmitted
	for _, stage := range Stages {
		from, to, err := StageTransition(stage)
		if err != nil {
			t.Fatalf("StageTransition(%s): %v", stage, err)
		}
		if from != expect {
			t.Fatalf("stage %s requires %s, want %s", stage, from, expect)
		}
		expect = to
	}
	if expect != StatusManagerApproved {
		t.Fatalf("chain ends at %s, want %s", expect, StatusManagerApproved)
	}
}

func TestStageTransitionUnknownStage(t *testing.T) {
	if _, _, err := StageTransition("supervisor"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSubmitted, StatusForemanApproved, StatusInchargeApproved, StatusCheckingApproved} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusManagerApproved, StatusRejected} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
