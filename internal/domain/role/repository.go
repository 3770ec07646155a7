package role

import "context"

type Repository interface {
	Create(ctx context.Context, r *Role) error
	Save(ctx context.Context, r *Role) error
	Delete(ctx context.Context, r *Role) error

	// GetByName looks a role up by its normalised name within a company.
	GetByName(ctx context.Context, companyID, name string) (*Role, error)
	GetByRoleID(ctx context.Context, companyID, roleID string) (*Role, error)
	ListByCompany(ctx context.Context, companyID string) ([]Role, error)
}
