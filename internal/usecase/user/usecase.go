package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/uow"
	domain "expense-approval/internal/domain/user"
	"expense-approval/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	repo domain.Repository
	uow  uow.UnitOfWork
	log  *zap.Logger
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, uow: tx, log: log}
}

func requireAdmin(actor approval.Actor) error {
	if !actor.Holds(role.Admin) {
		return fmt.Errorf("%w: only admins manage users", domain.ErrForbidden)
	}
	return nil
}

func (u *Usecase) List(ctx context.Context, actor approval.Actor) ([]UserDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	list, err := u.repo.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, toDTO(&list[i]))
	}
	return out, nil
}

// Create adds a non-admin user to the admin's company. The manager, when
// given, must be a manager or admin of the same company.
func (u *Usecase) Create(ctx context.Context, actor approval.Actor, in CreateInput) (*UserDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	rec := &domain.User{
		UserID:    id.NewID32(),
		CompanyID: actor.CompanyID,
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
	}
	if rec.Name == "" || rec.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalid)
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		name, err := assignableRole(ctx, r.Roles, actor.CompanyID, in.Role)
		if err != nil {
			return err
		}
		rec.Role = name
		if m := strings.TrimSpace(in.ManagerID); m != "" {
			if err := checkManager(ctx, r.Users, actor.CompanyID, rec.UserID, m); err != nil {
				return err
			}
			rec.ManagerID = &m
		}
		return r.Users.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("user created",
		zap.String("company_id", rec.CompanyID),
		zap.String("user_id", rec.UserID),
		zap.String("role", rec.Role))
	dto := toDTO(rec)
	return &dto, nil
}

func (u *Usecase) Update(ctx context.Context, actor approval.Actor, userID string, in UpdateInput) (*UserDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var rec *domain.User
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		rec, err = loadEditable(ctx, r.Users, actor.CompanyID, userID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			if rec.Name = strings.TrimSpace(*in.Name); rec.Name == "" {
				return fmt.Errorf("%w: name cannot be blank", domain.ErrInvalid)
			}
		}
		if in.Email != nil {
			if rec.Email = normalizeEmail(*in.Email); rec.Email == "" {
				return fmt.Errorf("%w: email cannot be blank", domain.ErrInvalid)
			}
		}
		if in.Role != nil {
			if rec.Role, err = assignableRole(ctx, r.Roles, actor.CompanyID, *in.Role); err != nil {
				return err
			}
		}
		if in.ManagerID != nil {
			m := strings.TrimSpace(*in.ManagerID)
			if m == "" {
				rec.ManagerID = nil
			} else {
				if err := checkManager(ctx, r.Users, actor.CompanyID, rec.UserID, m); err != nil {
					return err
				}
				rec.ManagerID = &m
			}
		}
		return r.Users.Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(rec)
	return &dto, nil
}

// Delete soft-deletes a user. Their expenses stay, and anyone they managed is
// detached so new submissions are not gated on an account that cannot log in.
func (u *Usecase) Delete(ctx context.Context, actor approval.Actor, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	detached := 0
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rec, err := loadEditable(ctx, r.Users, actor.CompanyID, userID)
		if err != nil {
			return err
		}
		reports, err := r.Users.ListReports(ctx, rec.CompanyID, rec.UserID)
		if err != nil {
			return err
		}
		for i := range reports {
			reports[i].ManagerID = nil
			if err := r.Users.Save(ctx, &reports[i]); err != nil {
				return err
			}
		}
		detached = len(reports)
		return r.Users.Delete(ctx, rec)
	})
	if err != nil {
		return err
	}

	u.log.Info("user deleted",
		zap.String("company_id", actor.CompanyID),
		zap.String("user_id", userID),
		zap.Int("reports_detached", detached))
	return nil
}

func loadEditable(ctx context.Context, users domain.Repository, companyID, userID string) (*domain.User, error) {
	rec, err := users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if role.Normalize(rec.Role) == role.Admin {
		return nil, domain.ErrAdminImmutable
	}
	return rec, nil
}

// assignableRole accepts employee, the built-in approver roles and any role
// the company defined. Admin is never handed out here.
func assignableRole(ctx context.Context, roles role.Repository, companyID, name string) (string, error) {
	n := role.Normalize(name)
	switch {
	case n == "":
		return "", fmt.Errorf("%w: role is required", domain.ErrInvalidRole)
	case n == role.Admin:
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidRole, n)
	case n == role.Employee, (role.BuiltinResolver{}).IsApprover(ctx, companyID, n):
		return n, nil
	}
	if _, err := roles.GetByName(ctx, companyID, n); err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRole, n)
		}
		return "", err
	}
	return n, nil
}

func checkManager(ctx context.Context, users domain.Repository, companyID, selfID, managerID string) error {
	if managerID == selfID {
		return fmt.Errorf("%w: a user cannot manage themselves", domain.ErrInvalidManager)
	}
	m, err := users.GetByUserID(ctx, managerID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", domain.ErrInvalidManager, managerID)
	}
	if err != nil {
		return err
	}
	if m.CompanyID != companyID {
		return fmt.Errorf("%w: %s not found", domain.ErrInvalidManager, managerID)
	}
	if r := role.Normalize(m.Role); r != role.Manager && r != role.Admin {
		return fmt.Errorf("%w: %s is not a manager", domain.ErrInvalidManager, managerID)
	}
	return nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
