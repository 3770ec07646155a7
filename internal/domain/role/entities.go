package role

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("role not found")
	ErrExists     = errors.New("role already exists")
	ErrSystemRole = errors.New("system role cannot be modified")
	ErrInUse      = errors.New("role is in use and cannot be deleted")
	ErrInvalid    = errors.New("invalid role")
)

// InUseError reports what still references a role. It unwraps to ErrInUse.
type InUseError struct {
	Users     int64
	Workflows int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s: %d users, %d workflows", ErrInUse, e.Users, e.Workflows)
}

func (e *InUseError) Unwrap() error { return ErrInUse }

// System roles exist for every company without a stored record.
const (
	Admin    = "admin"
	Employee = "employee"
	Manager  = "manager"
)

// Table: roles
type Role struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RoleID      string    `gorm:"column:role_id;type:char(32);not null;uniqueIndex" json:"role_id"`
	CompanyID   string    `gorm:"column:company_id;type:char(32);not null;uniqueIndex:ux_roles_company_name" json:"company_id"`
	Name        string    `gorm:"column:name;size:64;not null;uniqueIndex:ux_roles_company_name" json:"name"`
	DisplayName string    `gorm:"column:display_name;size:128" json:"display_name"`
	IsApprover  bool      `gorm:"column:is_approver;not null;default:false" json:"is_approver"`
	IsSystem    bool      `gorm:"column:is_system;not null;default:false" json:"is_system"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

// Normalize folds a role name to its stored form (lowercase, trimmed).
func Normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// IsSystemName reports whether name is one of the implicit system roles.
func IsSystemName(name string) bool {
	switch Normalize(name) {
	case Admin, Employee:
		return true
	}
	return false
}
