package workflow

import "context"

type Repository interface {
	Create(ctx context.Context, w *Workflow) error
	GetByWorkflowID(ctx context.Context, workflowID string) (*Workflow, error)
	ListByCompany(ctx context.Context, companyID string) ([]Workflow, error)

	// CountReferencingRole counts the company's workflows with a RoleStep on role.
	CountReferencingRole(ctx context.Context, companyID, role string) (int64, error)
}
