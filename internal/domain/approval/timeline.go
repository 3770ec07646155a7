package approval

import (
	"fmt"
	"strings"
	"time"

	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/workflow"
)

type StepStatus string

const (
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
	StepPending  StepStatus = "pending"
	StepSkipped  StepStatus = "skipped"
)

// TimelineStep is a display-only view of one stage. Never feed it back into
// the engine.
type TimelineStep struct {
	Label     string             `json:"label"`
	Role      string             `json:"role"`
	StepIndex int                `json:"step_index"`
	Status    StepStatus         `json:"status"`
	Approver  string             `json:"approver,omitempty"`
	ActedAt   *time.Time         `json:"acted_at,omitempty"`
	Comment   string             `json:"comment,omitempty"`
	Approvals []expense.Approval `json:"approvals,omitempty"`
}

// BuildTimeline lists the manager pre-step (when enabled) followed by each
// workflow step. Steps that were never reached show as skipped once the
// expense is rejected.
func BuildTimeline(e *expense.Expense, wf *workflow.Workflow) []TimelineStep {
	var out []TimelineStep
	if e.IsManagerApprover {
		out = append(out, singleStep(e, "Manager", expense.LabelManager, expense.ManagerStepIndex))
	}
	if wf == nil {
		return out
	}
	for _, s := range wf.Steps {
		switch st := s.(type) {
		case workflow.RoleStep:
			out = append(out, singleStep(e, titleCase(st.ApproverRole), st.ApproverRole, st.StepIndex))
		case workflow.UserStep:
			out = append(out, memberStep(e, st))
		}
	}
	return out
}

func singleStep(e *expense.Expense, label, roleName string, idx int) TimelineStep {
	ts := TimelineStep{Label: label, Role: roleName, StepIndex: idx, Status: unreached(e)}
	for _, a := range e.Approvals {
		if a.StepIndex != idx {
			continue
		}
		acted := a.ActedAt
		ts.Status = StepStatus(a.Decision)
		ts.Approver = a.ApproverID
		ts.ActedAt = &acted
		ts.Comment = a.Comment
		break
	}
	return ts
}

func memberStep(e *expense.Expense, st workflow.UserStep) TimelineStep {
	ts := TimelineStep{
		Label:     fmt.Sprintf("Members (%d)", len(st.ApproverUsers)),
		Role:      expense.LabelUsers,
		StepIndex: st.StepIndex,
		Status:    unreached(e),
	}
	rejected := false
	for _, a := range e.Approvals {
		if a.StepIndex == st.StepIndex && st.IsMember(a.ApproverID) {
			ts.Approvals = append(ts.Approvals, a)
			if a.Decision == expense.DecisionRejected {
				rejected = true
			}
		}
	}
	switch {
	case rejected:
		ts.Status = StepRejected
	case StepSatisfied(e, st):
		ts.Status = StepApproved
	}
	return ts
}

// unreached steps are skipped only after a rejection; an expense closed early
// by a completion rule still shows them as pending.
func unreached(e *expense.Expense) StepStatus {
	if e.Status == expense.StatusRejected {
		return StepSkipped
	}
	return StepPending
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
