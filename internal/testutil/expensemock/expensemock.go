package expensemock

import (
	"context"

	domain "expense-approval/internal/domain/expense"

	"github.com/shopspring/decimal"
)

var (
	_ domain.Repository         = (*Repo)(nil)
	_ domain.ApprovalRepository = (*ApprovalRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-op; reads default to context.Canceled.
type Repo struct {
	CreateFn                  func(ctx context.Context, e *domain.Expense) error
	GetByExpenseIDFn          func(ctx context.Context, expenseID string) (*domain.Expense, error)
	GetByExpenseIDForUpdateFn func(ctx context.Context, expenseID string) (*domain.Expense, error)
	SaveFn                    func(ctx context.Context, e *domain.Expense) error
	ListFn                    func(ctx context.Context, f domain.Filter) ([]domain.Expense, error)
	CountByStatusFn           func(ctx context.Context, f domain.Filter) (map[domain.Status]int64, error)
	SumAmountFn               func(ctx context.Context, f domain.Filter) (decimal.Decimal, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Expense) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) GetByExpenseID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	if m.GetByExpenseIDFn != nil {
		return m.GetByExpenseIDFn(ctx, expenseID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByExpenseIDForUpdate(ctx context.Context, expenseID string) (*domain.Expense, error) {
	if m.GetByExpenseIDForUpdateFn != nil {
		return m.GetByExpenseIDForUpdateFn(ctx, expenseID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, e *domain.Expense) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, e)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Expense, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) CountByStatus(ctx context.Context, f domain.Filter) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) SumAmount(ctx context.Context, f domain.Filter) (decimal.Decimal, error) {
	if m.SumAmountFn != nil {
		return m.SumAmountFn(ctx, f)
	}
	return decimal.Zero, context.Canceled
}

type ApprovalRepo struct {
	CreateFn          func(ctx context.Context, a *domain.Approval) error
	ListByExpenseIDFn func(ctx context.Context, expenseNumericID uint64) ([]domain.Approval, error)
}

func (m *ApprovalRepo) Create(ctx context.Context, a *domain.Approval) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *ApprovalRepo) ListByExpenseID(ctx context.Context, expenseNumericID uint64) ([]domain.Approval, error) {
	if m.ListByExpenseIDFn != nil {
		return m.ListByExpenseIDFn(ctx, expenseNumericID)
	}
	return nil, context.Canceled
}
