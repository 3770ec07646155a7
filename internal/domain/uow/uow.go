package uow

import (
	"context"

	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/user"
	"expense-approval/internal/domain/workflow"
)

// Repos are bound to the same transaction.
type Repos struct {
	Expenses  expense.Repository
	Approvals expense.ApprovalRepository
	Workflows workflow.Repository
	Users     user.Repository
	Roles     role.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the expense row first, then pass it in; decisions on one expense are serialized here
	WithinExpenseTx(ctx context.Context, expenseID string, fn func(r Repos, e *expense.Expense) error) error
}
