package role

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"expense-approval/internal/domain/approval"
	domain "expense-approval/internal/domain/role"
	"expense-approval/internal/domain/uow"
	"expense-approval/internal/domain/user"
	"expense-approval/pkg/id"

	"go.uber.org/zap"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,63}$`)

type Usecase struct {
	repo        domain.Repository
	uow         uow.UnitOfWork
	invalidator domain.Invalidator
	log         *zap.Logger
}

// NewUsecase wires role administration. invalidator may be nil when no
// capability cache sits in front of the registry.
func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, invalidator domain.Invalidator, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, uow: tx, invalidator: invalidator, log: log}
}

// List returns the implicit system roles followed by the company's own.
func (u *Usecase) List(ctx context.Context, actor approval.Actor) ([]RoleDTO, error) {
	stored, err := u.repo.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	out := []RoleDTO{
		{Name: domain.Admin, DisplayName: "Admin", IsApprover: true, IsSystem: true},
		{Name: domain.Employee, DisplayName: "Employee", IsSystem: true},
	}
	for i := range stored {
		out = append(out, toDTO(&stored[i]))
	}
	return out, nil
}

func (u *Usecase) Create(ctx context.Context, actor approval.Actor, in CreateInput) (*RoleDTO, error) {
	if !actor.Holds(domain.Admin) {
		return nil, fmt.Errorf("%w: only admins manage roles", user.ErrForbidden)
	}
	name := domain.Normalize(in.Name)
	if !namePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: name %q", domain.ErrInvalid, in.Name)
	}
	if domain.IsSystemName(name) {
		return nil, domain.ErrSystemRole
	}

	rec := &domain.Role{
		RoleID:      id.NewID32(),
		CompanyID:   actor.CompanyID,
		Name:        name,
		DisplayName: strings.TrimSpace(in.DisplayName),
		IsApprover:  in.IsApprover,
	}
	if rec.DisplayName == "" {
		rec.DisplayName = name
	}
	if err := u.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	u.invalidate(ctx, actor.CompanyID, name)

	u.log.Info("role created",
		zap.String("company_id", actor.CompanyID),
		zap.String("role", name),
		zap.Bool("is_approver", rec.IsApprover))
	dto := toDTO(rec)
	return &dto, nil
}

func (u *Usecase) Update(ctx context.Context, actor approval.Actor, roleID string, in UpdateInput) (*RoleDTO, error) {
	if !actor.Holds(domain.Admin) {
		return nil, fmt.Errorf("%w: only admins manage roles", user.ErrForbidden)
	}
	rec, err := u.repo.GetByRoleID(ctx, actor.CompanyID, roleID)
	if err != nil {
		return nil, err
	}
	if rec.IsSystem || domain.IsSystemName(rec.Name) {
		return nil, domain.ErrSystemRole
	}

	if in.DisplayName != nil {
		rec.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.IsApprover != nil {
		rec.IsApprover = *in.IsApprover
	}
	if err := u.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	u.invalidate(ctx, rec.CompanyID, rec.Name)

	dto := toDTO(rec)
	return &dto, nil
}

// Delete refuses while any user holds the role or any workflow step requires
// it; the error carries both counts.
func (u *Usecase) Delete(ctx context.Context, actor approval.Actor, roleID string) error {
	if !actor.Holds(domain.Admin) {
		return fmt.Errorf("%w: only admins manage roles", user.ErrForbidden)
	}

	var name string
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rec, err := r.Roles.GetByRoleID(ctx, actor.CompanyID, roleID)
		if err != nil {
			return err
		}
		if rec.IsSystem || domain.IsSystemName(rec.Name) {
			return domain.ErrSystemRole
		}

		users, err := r.Users.CountByRole(ctx, rec.CompanyID, rec.Name)
		if err != nil {
			return err
		}
		workflows, err := r.Workflows.CountReferencingRole(ctx, rec.CompanyID, rec.Name)
		if err != nil {
			return err
		}
		if users > 0 || workflows > 0 {
			return &domain.InUseError{Users: users, Workflows: workflows}
		}

		name = rec.Name
		return r.Roles.Delete(ctx, rec)
	})
	if err != nil {
		var inUse *domain.InUseError
		if errors.As(err, &inUse) {
			u.log.Info("role delete refused",
				zap.String("role_id", roleID),
				zap.Int64("users", inUse.Users),
				zap.Int64("workflows", inUse.Workflows))
		}
		return err
	}
	u.invalidate(ctx, actor.CompanyID, name)
	return nil
}

func (u *Usecase) invalidate(ctx context.Context, companyID, name string) {
	if u.invalidator == nil {
		return
	}
	if err := u.invalidator.Invalidate(ctx, companyID, name); err != nil {
		u.log.Warn("role capability invalidation failed",
			zap.String("company_id", companyID),
			zap.String("role", name),
			zap.Error(err))
	}
}

func toDTO(r *domain.Role) RoleDTO {
	return RoleDTO{
		RoleID:      r.RoleID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		IsApprover:  r.IsApprover,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
	}
}
