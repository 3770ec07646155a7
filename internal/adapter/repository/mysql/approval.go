package mysql

import (
	"context"
	"errors"

	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/expense"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, a *expense.Approval) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return approval.ErrDuplicateAction
	}
	return err
}

func (r *ApprovalRepository) ListByExpenseID(ctx context.Context, expenseNumericID uint64) ([]expense.Approval, error) {
	var out []expense.Approval
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseNumericID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
