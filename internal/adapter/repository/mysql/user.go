package mysql

import (
	"context"
	"errors"

	"expense-approval/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return duplicateEmail(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	return duplicateEmail(r.db.WithContext(ctx).Save(u).Error)
}

func (r *UserRepository) Delete(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Delete(&user.User{}, u.ID).Error
}

// email is the only unique column a caller can collide on
func duplicateEmail(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*user.User, error) {
	var out user.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) ListByCompany(ctx context.Context, companyID string) ([]user.User, error) {
	var out []user.User
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *UserRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]user.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var out []user.User
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&out).Error
	return out, err
}

func (r *UserRepository) ListReports(ctx context.Context, companyID, managerID string) ([]user.User, error) {
	var out []user.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND manager_id = ?", companyID, managerID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *UserRepository) CountByRole(ctx context.Context, companyID, roleName string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&user.User{}).
		Where("company_id = ? AND role = ?", companyID, roleName).
		Count(&n).Error
	return n, err
}
