package approval

import (
	"fmt"

	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/workflow"
)

// EvaluateRule checks the workflow's completion rule against the whole
// approval history. It is a pure function of (expense, workflow).
func EvaluateRule(e *expense.Expense, wf *workflow.Workflow) (bool, string) {
	if wf == nil {
		return false, ""
	}
	switch r := wf.Rules.(type) {
	case workflow.PercentageRule:
		if percentageMet(e, wf, r.Threshold) {
			return true, fmt.Sprintf("percentage_%d", r.Threshold)
		}
	case workflow.SpecificApproverRule:
		if hasApprovedRole(e, r.Role) {
			return true, "special_" + r.Role
		}
	case workflow.HybridRule:
		if percentageMet(e, wf, r.Threshold) {
			return true, fmt.Sprintf("percentage_%d", r.Threshold)
		}
		if hasApprovedRole(e, r.Role) {
			return true, "special_" + r.Role
		}
	}
	return false, ""
}

// approved/total*100 >= threshold, kept in integers.
func percentageMet(e *expense.Expense, wf *workflow.Workflow, threshold int) bool {
	total := len(wf.Steps)
	if e.IsManagerApprover {
		total++
	}
	if total == 0 {
		return false
	}
	return e.ApprovedCount()*100 >= threshold*total
}

func hasApprovedRole(e *expense.Expense, roleName string) bool {
	for _, a := range e.Approvals {
		if a.Role == roleName && a.Decision == expense.DecisionApproved {
			return true
		}
	}
	return false
}
