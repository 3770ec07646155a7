package role

import "time"

type CreateInput struct {
	Name        string
	DisplayName string
	IsApprover  bool
}

// UpdateInput leaves nil fields untouched.
type UpdateInput struct {
	DisplayName *string
	IsApprover  *bool
}

type RoleDTO struct {
	RoleID      string    `json:"role_id,omitempty"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	IsApprover  bool      `json:"is_approver"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
