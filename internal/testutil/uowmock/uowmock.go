package uowmock

import (
	"context"
	"errors"

	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn        func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinExpenseTxFn func(ctx context.Context, expenseID string, fn func(r uow.Repos, e *expense.Expense) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinExpenseTx(fn func(context.Context, string, func(uow.Repos, *expense.Expense) error) error) *UoW {
	m.WithinExpenseTxFn = fn
	return m
}

// WithRepos wires both methods to run fn directly against r, loading the
// expense through r.Expenses like the real implementation does.
func (m *UoW) WithRepos(r uow.Repos) *UoW {
	m.WithinTxFn = func(_ context.Context, fn func(uow.Repos) error) error { return fn(r) }
	m.WithinExpenseTxFn = func(ctx context.Context, id string, fn func(uow.Repos, *expense.Expense) error) error {
		e, err := r.Expenses.GetByExpenseIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return fn(r, e)
	}
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinExpenseTx(ctx context.Context, expenseID string, fn func(r uow.Repos, e *expense.Expense) error) error {
	if m.WithinExpenseTxFn != nil {
		return m.WithinExpenseTxFn(ctx, expenseID, fn)
	}
	return errUnimplemented
}
