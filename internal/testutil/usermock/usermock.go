package usermock

import (
	"context"
	"sort"

	domain "expense-approval/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is backed by an in-memory map unless a function field overrides a method.
type Repo struct {
	Users map[string]*domain.User

	CreateFn      func(ctx context.Context, u *domain.User) error
	SaveFn        func(ctx context.Context, u *domain.User) error
	CountByRoleFn func(ctx context.Context, companyID, role string) (int64, error)
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	if m.Users == nil {
		m.Users = map[string]*domain.User{}
	}
	m.Users[u.UserID] = u
	return nil
}

func (m *Repo) Save(ctx context.Context, u *domain.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, u)
	}
	return m.Create(ctx, u)
}

// Delete drops the user from the map, which is what a soft delete looks like to readers.
func (m *Repo) Delete(_ context.Context, u *domain.User) error {
	delete(m.Users, u.UserID)
	return nil
}

func (m *Repo) ListByCompany(_ context.Context, companyID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.Users {
		if u.CompanyID == companyID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *Repo) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	if u, ok := m.Users[userID]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByUserIDs(_ context.Context, userIDs []string) ([]domain.User, error) {
	var out []domain.User
	for _, id := range userIDs {
		if u, ok := m.Users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *Repo) ListReports(_ context.Context, companyID, managerID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.Users {
		if u.CompanyID == companyID && u.Manager() == managerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *Repo) CountByRole(ctx context.Context, companyID, role string) (int64, error) {
	if m.CountByRoleFn != nil {
		return m.CountByRoleFn(ctx, companyID, role)
	}
	var n int64
	for _, u := range m.Users {
		if u.CompanyID == companyID && u.Role == role {
			n++
		}
	}
	return n, nil
}
