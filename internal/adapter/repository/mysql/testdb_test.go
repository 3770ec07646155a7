package mysql

import (
	"testing"
	"time"

	"expense-approval/internal/domain/expense"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB migrates every model into a private in-memory sqlite database.
// One connection only, otherwise each pooled conn would get its own empty DB.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeExpense(expenseID, companyID, submitter string) *expense.Expense {
	return &expense.Expense{
		ExpenseID:         expenseID,
		CompanyID:         companyID,
		SubmittedBy:       submitter,
		Amount:            decimal.RequireFromString("125.50"),
		Currency:          "USD",
		Category:          "Travel",
		Description:       "taxi",
		Date:              time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:            expense.StatusPending,
		IsManagerApprover: true,
	}
}
