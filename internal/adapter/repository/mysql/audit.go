package mysql

import (
	"context"
	"time"

	"expense-approval/internal/domain/audit"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Append(ctx context.Context, expenseID, action, actorID, comment string, at time.Time) error {
	return r.db.WithContext(ctx).Create(&audit.Log{
		ExpenseID: expenseID,
		Action:    action,
		ActorID:   actorID,
		Comment:   comment,
		Timestamp: at.UTC(),
	}).Error
}

func (r *AuditRepository) ListByExpenseID(ctx context.Context, expenseID string) ([]audit.Log, error) {
	var out []audit.Log
	err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	return out, err
}
