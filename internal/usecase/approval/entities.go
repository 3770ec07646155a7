package approval

import (
	"time"

	"expense-approval/internal/domain/approval"
	expenseuc "expense-approval/internal/usecase/expense"
)

type DecisionInput struct {
	ExpenseID string
	Comment   string
}

type DecisionDTO struct {
	Expense  expenseuc.ExpenseDTO  `json:"expense"`
	Approval expenseuc.ApprovalDTO `json:"approval"`
}

// RequiredDTO describes who must act next; nil once nothing is required.
type RequiredDTO struct {
	Kind      string `json:"kind"` // manager, role or users
	Role      string `json:"role"`
	StepIndex int    `json:"step_index"`
}

type AuditEntryDTO struct {
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type TimelineDTO struct {
	Expense  expenseuc.ExpenseDTO    `json:"expense"`
	Required *RequiredDTO            `json:"required,omitempty"`
	Steps    []approval.TimelineStep `json:"steps"`
	Audit    []AuditEntryDTO         `json:"audit"`
}

func toRequiredDTO(r *approval.Requirement) *RequiredDTO {
	if r == nil {
		return nil
	}
	kind := "role"
	switch r.Kind {
	case approval.RequireManager:
		kind = "manager"
	case approval.RequireUsers:
		kind = "users"
	}
	return &RequiredDTO{Kind: kind, Role: r.Role, StepIndex: r.StepIndex}
}
