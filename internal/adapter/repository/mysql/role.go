package mysql

import (
	"context"
	"errors"

	"expense-approval/internal/domain/role"

	"gorm.io/gorm"
)

type RoleRepository struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) *RoleRepository { return &RoleRepository{db: db} }

func (r *RoleRepository) Create(ctx context.Context, rec *role.Role) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return role.ErrExists
	}
	return err
}

func (r *RoleRepository) Save(ctx context.Context, rec *role.Role) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *RoleRepository) Delete(ctx context.Context, rec *role.Role) error {
	return r.db.WithContext(ctx).Delete(&role.Role{}, rec.ID).Error
}

func (r *RoleRepository) GetByName(ctx context.Context, companyID, name string) (*role.Role, error) {
	return r.first(r.db.WithContext(ctx).Where("company_id = ? AND name = ?", companyID, role.Normalize(name)))
}

func (r *RoleRepository) GetByRoleID(ctx context.Context, companyID, roleID string) (*role.Role, error) {
	return r.first(r.db.WithContext(ctx).Where("company_id = ? AND role_id = ?", companyID, roleID))
}

func (r *RoleRepository) first(q *gorm.DB) (*role.Role, error) {
	var out role.Role
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, role.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RoleRepository) ListByCompany(ctx context.Context, companyID string) ([]role.Role, error) {
	var out []role.Role
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name ASC").Find(&out).Error
	return out, err
}
