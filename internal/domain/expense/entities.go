package expense

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("expense not found")
	ErrConcurrentUpdate = errors.New("expense was modified concurrently")
	ErrInvalid          = errors.New("invalid expense")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal statuses never change again.
func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

func (s Status) Valid() bool { return s == StatusPending || s.Terminal() }

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Valid() bool { return d == DecisionApproved || d == DecisionRejected }

// Role labels recorded on approvals besides concrete role names.
const (
	LabelManager = "manager"
	LabelUsers   = "users"
)

// DefaultCurrency applies when a submission names none.
const DefaultCurrency = "USD"

// ManagerStepIndex marks approvals recorded for the manager pre-step.
const ManagerStepIndex = -1

var Categories = []string{
	"Travel",
	"Food",
	"Accommodation",
	"Transportation",
	"Office Supplies",
	"Equipment",
	"Software",
	"Client Entertainment",
	"Training",
	"Other",
}

// Table: expense_approvals
//
// One row per (expense, approver); the unique index backs the at-most-once rule.
type Approval struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ExpenseID  uint64    `gorm:"column:expense_id;not null;uniqueIndex:ux_approvals_expense_approver" json:"-"`
	ApproverID string    `gorm:"column:approver_id;type:char(32);not null;uniqueIndex:ux_approvals_expense_approver" json:"approver_id"`
	Role       string    `gorm:"column:role;size:64;not null" json:"role"`
	StepIndex  int       `gorm:"column:step_index;not null" json:"step_index"`
	Decision   Decision  `gorm:"column:decision;size:16;not null" json:"decision"`
	Comment    string    `gorm:"column:comment;type:text" json:"comment"`
	ActedAt    time.Time `gorm:"column:acted_at;not null" json:"acted_at"`
}

func (Approval) TableName() string { return "expense_approvals" }

// Table: expenses
//
// Status, CurrentStep, Approvals and RejectionReason are written by the
// approval engine only.
type Expense struct {
	ID                uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ExpenseID         string          `gorm:"column:expense_id;type:char(32);not null;uniqueIndex" json:"expense_id"`
	CompanyID         string          `gorm:"column:company_id;type:char(32);not null;index:idx_expenses_company_status" json:"company_id"`
	SubmittedBy       string          `gorm:"column:submitted_by;type:char(32);not null;index:idx_expenses_submitter_status" json:"submitted_by"`
	Amount            decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Currency          string          `gorm:"column:currency;size:3;not null" json:"currency"`
	Category          string          `gorm:"column:category;size:64;not null" json:"category"`
	Description       string          `gorm:"column:description;type:text;not null" json:"description"`
	Date              time.Time       `gorm:"column:expense_date;type:date;not null" json:"date"`
	Status            Status          `gorm:"column:status;size:16;not null;index:idx_expenses_company_status;index:idx_expenses_submitter_status" json:"status"`
	WorkflowID        *string         `gorm:"column:workflow_id;type:char(32)" json:"workflow_id,omitempty"`
	CurrentStep       int             `gorm:"column:current_step;not null" json:"current_step"`
	IsManagerApprover bool            `gorm:"column:is_manager_approver;not null" json:"is_manager_approver"`
	RejectionReason   string          `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ReviewedAt        *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	Version           uint64          `gorm:"column:version;not null" json:"-"`
	Approvals         []Approval      `gorm:"foreignKey:ExpenseID;references:ID" json:"approvals"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Expense) TableName() string { return "expenses" }

// HasActed reports whether userID already has an approval entry.
func (e *Expense) HasActed(userID string) bool {
	for _, a := range e.Approvals {
		if a.ApproverID == userID {
			return true
		}
	}
	return false
}

// ManagerApproved reports whether the manager pre-step has an approval.
func (e *Expense) ManagerApproved() bool {
	for _, a := range e.Approvals {
		if a.Role == LabelManager && a.Decision == DecisionApproved {
			return true
		}
	}
	return false
}

// LastApproval returns the most recently appended entry, or nil.
func (e *Expense) LastApproval() *Approval {
	if len(e.Approvals) == 0 {
		return nil
	}
	return &e.Approvals[len(e.Approvals)-1]
}

func (e *Expense) ApprovedCount() int {
	n := 0
	for _, a := range e.Approvals {
		if a.Decision == DecisionApproved {
			n++
		}
	}
	return n
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
