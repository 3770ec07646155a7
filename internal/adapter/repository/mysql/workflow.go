package mysql

import (
	"context"
	"errors"

	"expense-approval/internal/domain/workflow"

	"gorm.io/gorm"
)

type WorkflowRepository struct{ db *gorm.DB }

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository { return &WorkflowRepository{db: db} }

func (r *WorkflowRepository) Create(ctx context.Context, w *workflow.Workflow) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WorkflowRepository) GetByWorkflowID(ctx context.Context, workflowID string) (*workflow.Workflow, error) {
	var out workflow.Workflow
	err := r.db.WithContext(ctx).Where("workflow_id = ?", workflowID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, workflow.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *WorkflowRepository) ListByCompany(ctx context.Context, companyID string) ([]workflow.Workflow, error) {
	var out []workflow.Workflow
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// CountReferencingRole decodes the step lists in Go; JSON path queries differ
// between MySQL and the SQLite used in tests.
func (r *WorkflowRepository) CountReferencingRole(ctx context.Context, companyID, role string) (int64, error) {
	all, err := r.ListByCompany(ctx, companyID)
	if err != nil {
		return 0, err
	}
	var n int64
	for i := range all {
		if all[i].ReferencesRole(role) {
			n++
		}
	}
	return n, nil
}
