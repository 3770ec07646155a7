package approval

import (
	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/workflow"
)

type RequirementKind int

const (
	RequireManager RequirementKind = iota + 1
	RequireRole
	RequireUsers
)

// Requirement describes who must act next on an expense.
type Requirement struct {
	Kind RequirementKind
	// Role is "manager", the RoleStep's role name, or "users".
	Role string
	// StepIndex is expense.ManagerStepIndex for the manager pre-step.
	StepIndex int
	// Step is nil for the manager pre-step.
	Step workflow.Step
}

// RequiredRole resolves the currently required actor, or nil when nothing more
// is required. It has no side effects.
func RequiredRole(e *expense.Expense, wf *workflow.Workflow) *Requirement {
	if e == nil || e.Status != expense.StatusPending {
		return nil
	}
	if e.IsManagerApprover && !e.ManagerApproved() {
		return &Requirement{Kind: RequireManager, Role: expense.LabelManager, StepIndex: expense.ManagerStepIndex}
	}
	if wf == nil {
		return nil
	}
	switch st := wf.StepAt(e.CurrentStep).(type) {
	case workflow.RoleStep:
		return &Requirement{Kind: RequireRole, Role: st.ApproverRole, StepIndex: st.StepIndex, Step: st}
	case workflow.UserStep:
		return &Requirement{Kind: RequireUsers, Role: expense.LabelUsers, StepIndex: st.StepIndex, Step: st}
	}
	return nil
}

// StepSatisfied applies the ANY/ALL test to approvals recorded against the step.
func StepSatisfied(e *expense.Expense, st workflow.UserStep) bool {
	approved := make(map[string]struct{}, len(st.ApproverUsers))
	for _, a := range e.Approvals {
		if a.StepIndex == st.StepIndex && a.Decision == expense.DecisionApproved && st.IsMember(a.ApproverID) {
			approved[a.ApproverID] = struct{}{}
		}
	}
	if st.Mode == workflow.ModeAll {
		return len(approved) == len(st.ApproverUsers)
	}
	return len(approved) > 0
}
