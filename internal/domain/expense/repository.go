package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Filter narrows list and stats queries. Empty fields are ignored.
type Filter struct {
	CompanyID   string
	Status      Status
	SubmittedBy []string
	From        *time.Time
	To          *time.Time
}

type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByExpenseID(ctx context.Context, expenseID string) (*Expense, error)
	// GetByExpenseIDForUpdate row-locks the expense; only meaningful inside a tx.
	GetByExpenseIDForUpdate(ctx context.Context, expenseID string) (*Expense, error)
	// Save persists the expense columns (not its approvals) and bumps Version.
	// It returns ErrConcurrentUpdate when the stored version moved underneath.
	Save(ctx context.Context, e *Expense) error
	List(ctx context.Context, f Filter) ([]Expense, error)
	CountByStatus(ctx context.Context, f Filter) (map[Status]int64, error)
	SumAmount(ctx context.Context, f Filter) (decimal.Decimal, error)
}

type ApprovalRepository interface {
	// Create inserts one approval; the (expense, approver) unique index rejects repeats.
	Create(ctx context.Context, a *Approval) error
	ListByExpenseID(ctx context.Context, expenseNumericID uint64) ([]Approval, error)
}
