package rolemock

import (
	"context"

	domain "expense-approval/internal/domain/role"
)

var (
	_ domain.Repository       = (*Repo)(nil)
	_ domain.ApproverResolver = (*Resolver)(nil)
	_ domain.Invalidator      = (*Invalidator)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn        func(ctx context.Context, r *domain.Role) error
	SaveFn          func(ctx context.Context, r *domain.Role) error
	DeleteFn        func(ctx context.Context, r *domain.Role) error
	GetByNameFn     func(ctx context.Context, companyID, name string) (*domain.Role, error)
	GetByRoleIDFn   func(ctx context.Context, companyID, roleID string) (*domain.Role, error)
	ListByCompanyFn func(ctx context.Context, companyID string) ([]domain.Role, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Role) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, r *domain.Role) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, r *domain.Role) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByName(ctx context.Context, companyID, name string) (*domain.Role, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, companyID, name)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByRoleID(ctx context.Context, companyID, roleID string) (*domain.Role, error) {
	if m.GetByRoleIDFn != nil {
		return m.GetByRoleIDFn(ctx, companyID, roleID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByCompany(ctx context.Context, companyID string) ([]domain.Role, error) {
	if m.ListByCompanyFn != nil {
		return m.ListByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

// Resolver answers from a fixed set of approver role names.
type Resolver struct {
	Approvers map[string]bool
}

func (m *Resolver) IsApprover(_ context.Context, _ string, roleName string) bool {
	return m.Approvers[domain.Normalize(roleName)]
}

// Invalidator records every invalidated (company, role) pair.
type Invalidator struct {
	Calls []string
	Err   error
}

func (m *Invalidator) Invalidate(_ context.Context, companyID, roleName string) error {
	m.Calls = append(m.Calls, companyID+":"+roleName)
	return m.Err
}
