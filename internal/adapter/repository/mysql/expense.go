package mysql

import (
	"context"
	"errors"
	"time"

	"expense-approval/internal/domain/expense"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseRepository struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository { return &ExpenseRepository{db: db} }

// Create inserts the expense row only; approvals are written one by one
// through ApprovalRepository.
func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

func (r *ExpenseRepository) GetByExpenseID(ctx context.Context, expenseID string) (*expense.Expense, error) {
	return r.get(r.db.WithContext(ctx), expenseID)
}

func (r *ExpenseRepository) GetByExpenseIDForUpdate(ctx context.Context, expenseID string) (*expense.Expense, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), expenseID)
}

func (r *ExpenseRepository) get(q *gorm.DB, expenseID string) (*expense.Expense, error) {
	var out expense.Expense
	err := q.Preload("Approvals", orderByID).Where("expense_id = ?", expenseID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, expense.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	res := r.db.WithContext(ctx).
		Model(&expense.Expense{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Updates(map[string]any{
			"status":              e.Status,
			"current_step":        e.CurrentStep,
			"rejection_reason":    e.RejectionReason,
			"reviewed_at":         e.ReviewedAt,
			"is_manager_approver": e.IsManagerApprover,
			"version":             e.Version + 1,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expense.ErrConcurrentUpdate
	}
	e.Version++
	return nil
}

func (r *ExpenseRepository) List(ctx context.Context, f expense.Filter) ([]expense.Expense, error) {
	var out []expense.Expense
	err := applyFilter(r.db.WithContext(ctx), f).
		Preload("Approvals", orderByID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *ExpenseRepository) CountByStatus(ctx context.Context, f expense.Filter) (map[expense.Status]int64, error) {
	var rows []struct {
		Status expense.Status
		N      int64
	}
	err := applyFilter(r.db.WithContext(ctx).Model(&expense.Expense{}), f).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[expense.Status]int64{
		expense.StatusPending:  0,
		expense.StatusApproved: 0,
		expense.StatusRejected: 0,
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *ExpenseRepository) SumAmount(ctx context.Context, f expense.Filter) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := applyFilter(r.db.WithContext(ctx).Model(&expense.Expense{}), f).
		Select("SUM(amount)").
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func applyFilter(q *gorm.DB, f expense.Filter) *gorm.DB {
	if f.CompanyID != "" {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SubmittedBy != nil {
		// an empty, non-nil slice means "nobody"
		if len(f.SubmittedBy) == 0 {
			return q.Where("1 = 0")
		}
		q = q.Where("submitted_by IN ?", f.SubmittedBy)
	}
	if f.From != nil {
		q = q.Where("expense_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("expense_date <= ?", *f.To)
	}
	return q
}

func orderByID(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }
