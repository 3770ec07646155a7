package user

import (
	"time"

	domain "expense-approval/internal/domain/user"
)

type CreateInput struct {
	Name      string
	Email     string
	Role      string
	ManagerID string
}

// UpdateInput changes only the fields that are set. An empty ManagerID
// detaches the user from their manager.
type UpdateInput struct {
	Name      *string
	Email     *string
	Role      *string
	ManagerID *string
}

type UserDTO struct {
	UserID    string    `json:"user_id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ManagerID string    `json:"manager_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toDTO(u *domain.User) UserDTO {
	return UserDTO{
		UserID:    u.UserID,
		CompanyID: u.CompanyID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		ManagerID: u.Manager(),
		CreatedAt: u.CreatedAt,
	}
}
