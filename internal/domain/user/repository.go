package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	// Delete is a soft delete; expenses and approvals keep the user id.
	Delete(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	ListByCompany(ctx context.Context, companyID string) ([]User, error)

	// ListByUserIDs returns the users found; missing ids are silently skipped.
	ListByUserIDs(ctx context.Context, userIDs []string) ([]User, error)
	// ListReports returns the users whose manager is managerID.
	ListReports(ctx context.Context, companyID, managerID string) ([]User, error)
	CountByRole(ctx context.Context, companyID, role string) (int64, error)
}
