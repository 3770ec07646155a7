package workflowmock

import (
	"context"

	domain "expense-approval/internal/domain/workflow"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, w *domain.Workflow) error
	GetByWorkflowIDFn      func(ctx context.Context, workflowID string) (*domain.Workflow, error)
	ListByCompanyFn        func(ctx context.Context, companyID string) ([]domain.Workflow, error)
	CountReferencingRoleFn func(ctx context.Context, companyID, role string) (int64, error)
}

func (m *Repo) Create(ctx context.Context, w *domain.Workflow) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, w)
	}
	return nil
}

func (m *Repo) GetByWorkflowID(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	if m.GetByWorkflowIDFn != nil {
		return m.GetByWorkflowIDFn(ctx, workflowID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByCompany(ctx context.Context, companyID string) ([]domain.Workflow, error) {
	if m.ListByCompanyFn != nil {
		return m.ListByCompanyFn(ctx, companyID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountReferencingRole(ctx context.Context, companyID, role string) (int64, error) {
	if m.CountReferencingRoleFn != nil {
		return m.CountReferencingRoleFn(ctx, companyID, role)
	}
	return 0, context.Canceled
}
