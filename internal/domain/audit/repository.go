package audit

import (
	"context"
	"time"
)

// Sink receives approve/reject actions after the expense mutation committed.
type Sink interface {
	Append(ctx context.Context, expenseID, action, actorID, comment string, at time.Time) error
}

type Repository interface {
	Sink
	// ListByExpenseID returns entries ordered by timestamp ascending.
	ListByExpenseID(ctx context.Context, expenseID string) ([]Log, error)
}
