package user

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

// Table: users
//
// ManagerID is a back-reference to another user of the same company and only
// drives manager pre-approval routing.
type User struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserID    string         `gorm:"column:user_id;type:char(32);not null;uniqueIndex" json:"user_id"`
	CompanyID string         `gorm:"column:company_id;type:char(32);not null;index" json:"company_id"`
	Name      string         `gorm:"column:name;size:128;not null" json:"name"`
	Email     string         `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Role      string         `gorm:"column:role;size:64;not null;default:'employee';index" json:"role"`
	ManagerID *string        `gorm:"column:manager_id;type:char(32);index" json:"manager_id,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string { return "users" }

// Manager returns the direct manager's user id, or "" when none is set.
func (u *User) Manager() string {
	if u == nil || u.ManagerID == nil {
		return ""
	}
	return *u.ManagerID
}

var (
	// ErrForbidden means the acting user's role does not allow the operation.
	ErrForbidden      = errors.New("operation not permitted for this user")
	ErrInvalid        = errors.New("invalid user")
	ErrEmailTaken     = errors.New("email already in use")
	ErrInvalidRole    = errors.New("role cannot be assigned")
	ErrInvalidManager = errors.New("invalid manager")
	// ErrAdminImmutable guards admin accounts from being edited or deleted.
	ErrAdminImmutable = errors.New("admin users cannot be modified")
)
