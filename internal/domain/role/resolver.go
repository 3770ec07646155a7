package role

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApproverResolver answers whether a role may act as an approver for a company.
// Implementations fail closed: anything unknown is not an approver.
type ApproverResolver interface {
	IsApprover(ctx context.Context, companyID, roleName string) bool
}

// builtinApprovers predate company-defined roles and are always eligible.
var builtinApprovers = map[string]struct{}{
	"manager":  {},
	"finance":  {},
	"director": {},
	"admin":    {},
}

// BuiltinResolver only knows the hard-coded fallback list.
type BuiltinResolver struct{}

func (BuiltinResolver) IsApprover(_ context.Context, _ string, roleName string) bool {
	_, ok := builtinApprovers[Normalize(roleName)]
	return ok
}

// RegistryResolver checks the fallback list first, then the company's role records.
type RegistryResolver struct {
	roles Repository
	log   *zap.Logger
}

func NewRegistryResolver(roles Repository, log *zap.Logger) *RegistryResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistryResolver{roles: roles, log: log}
}

func (r *RegistryResolver) IsApprover(ctx context.Context, companyID, roleName string) bool {
	name := Normalize(roleName)
	if name == "" || name == Employee {
		return false
	}
	if (BuiltinResolver{}).IsApprover(ctx, companyID, name) {
		return true
	}
	rec, err := r.roles.GetByName(ctx, companyID, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, ErrNotFound) {
			r.log.Warn("role lookup failed; treating as non-approver",
				zap.String("company_id", companyID), zap.String("role", name), zap.Error(err))
		}
		return false
	}
	return rec.IsApprover
}

// Invalidator drops any cached capability answer after a role changes.
type Invalidator interface {
	Invalidate(ctx context.Context, companyID, roleName string) error
}
