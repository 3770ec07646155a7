package expense

import (
	"time"

	domain "expense-approval/internal/domain/expense"

	"github.com/shopspring/decimal"
)

type SubmitInput struct {
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
	Date        time.Time
	WorkflowID  string // optional
	// IsManagerApprover defaults to true when nil.
	IsManagerApprover *bool
}

type ListInput struct {
	Status domain.Status
	From   *time.Time
	To     *time.Time
}

type ApprovalDTO struct {
	ApproverID string    `json:"approver_id"`
	Role       string    `json:"role"`
	StepIndex  int       `json:"step_index"`
	Decision   string    `json:"decision"`
	Comment    string    `json:"comment,omitempty"`
	ActedAt    time.Time `json:"acted_at"`
}

type ExpenseDTO struct {
	ExpenseID         string          `json:"expense_id"`
	CompanyID         string          `json:"company_id"`
	SubmittedBy       string          `json:"submitted_by"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Category          string          `json:"category"`
	Description       string          `json:"description"`
	Date              string          `json:"date"` // YYYY-MM-DD
	Status            string          `json:"status"`
	WorkflowID        string          `json:"workflow_id,omitempty"`
	CurrentStep       int             `json:"current_step"`
	IsManagerApprover bool            `json:"is_manager_approver"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	ReviewedAt        *time.Time      `json:"reviewed_at,omitempty"`
	Approvals         []ApprovalDTO   `json:"approvals"`
	CreatedAt         time.Time       `json:"created_at"`
}

type StatsDTO struct {
	Pending        int64           `json:"pending"`
	Approved       int64           `json:"approved"`
	Rejected       int64           `json:"rejected"`
	Total          int64           `json:"total"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
}

// ToDTO maps the aggregate for the outside world.
func ToDTO(e *domain.Expense) ExpenseDTO {
	dto := ExpenseDTO{
		ExpenseID:         e.ExpenseID,
		CompanyID:         e.CompanyID,
		SubmittedBy:       e.SubmittedBy,
		Amount:            e.Amount,
		Currency:          e.Currency,
		Category:          e.Category,
		Description:       e.Description,
		Date:              e.Date.Format(time.DateOnly),
		Status:            string(e.Status),
		CurrentStep:       e.CurrentStep,
		IsManagerApprover: e.IsManagerApprover,
		RejectionReason:   e.RejectionReason,
		ReviewedAt:        e.ReviewedAt,
		Approvals:         make([]ApprovalDTO, 0, len(e.Approvals)),
		CreatedAt:         e.CreatedAt,
	}
	if e.WorkflowID != nil {
		dto.WorkflowID = *e.WorkflowID
	}
	for _, a := range e.Approvals {
		dto.Approvals = append(dto.Approvals, ApprovalDTO{
			ApproverID: a.ApproverID,
			Role:       a.Role,
			StepIndex:  a.StepIndex,
			Decision:   string(a.Decision),
			Comment:    a.Comment,
			ActedAt:    a.ActedAt,
		})
	}
	return dto
}

func toDTOs(in []domain.Expense) []ExpenseDTO {
	out := make([]ExpenseDTO, 0, len(in))
	for i := range in {
		out = append(out, ToDTO(&in[i]))
	}
	return out
}
