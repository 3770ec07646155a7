package mysql

import (
	"expense-approval/internal/domain/audit"
	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/user"
	"expense-approval/internal/domain/workflow"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&role.Role{},
		&workflow.Workflow{},
		&expense.Expense{},
		&expense.Approval{},
		&audit.Log{},
	}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
