package audit

import "time"

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Table: audit_logs (append-only)
type Log struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ExpenseID string    `gorm:"column:expense_id;type:char(32);not null;index" json:"expense_id"`
	Action    string    `gorm:"column:action;size:32;not null" json:"action"`
	ActorID   string    `gorm:"column:actor_id;type:char(32);not null" json:"actor_id"`
	Comment   string    `gorm:"column:comment;type:text" json:"comment"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (Log) TableName() string { return "audit_logs" }
