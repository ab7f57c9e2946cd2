package timesheet

import "fmt"

// Status is the timesheet's position in the approval pipeline. The pipeline
// is a total order with no branching and no skipping; rejected is a sink
// reachable from every non-terminal state.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusForemanApproved  Status = "foreman_approved"
	StatusInchargeApproved Status = "incharge_approved"
	StatusCheckingApproved Status = "checking_approved"
	StatusManagerApproved  Status = "manager_approved"
	StatusRejected         Status = "rejected"
)

func (s Status) Terminal() bool {
	return s == StatusManagerApproved || s == StatusRejected
}

// Stage is one step of the four-actor sign-off chain.
type Stage string

const (
	StageForeman  Stage = "foreman"
	StageIncharge Stage = "incharge"
	StageChecking Stage = "checking"
	StageManager  Stage = "manager"
)

// Stages lists the pipeline stages in approval order.
var Stages = []Stage{StageForeman, StageIncharge, StageChecking, StageManager}

type transition struct {
	from Status
	to   Status
}

var stageTransitions = map[Stage]transition{
	StageForeman:  {StatusSubmitted, StatusForemanApproved},
	StageIncharge: {StatusForemanApproved, StatusInchargeApproved},
	StageChecking: {StatusInchargeApproved, StatusCheckingApproved},
	StageManager:  {StatusCheckingApproved, StatusManagerApproved},
}

// StageTransition returns the required current status and the resulting
// status for approving at the given stage.
func StageTransition(stage Stage) (from, to Status, err error) {
	t, ok := stageTransitions[stage]
	if !ok {
		return "", "", fmt.Errorf("unknown approval stage %q", stage)
	}
	return t.from, t.to, nil
}
