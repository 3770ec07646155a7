package auditmock

import (
	"context"
	"sync"
	"time"

	domain "expense-approval/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo keeps appended entries in memory. AppendErr, when set, fails every Append.
type Repo struct {
	mu        sync.Mutex
	Logs      []domain.Log
	AppendErr error
}

func (m *Repo) Append(_ context.Context, expenseID, action, actorID, comment string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Logs = append(m.Logs, domain.Log{ExpenseID: expenseID, Action: action, ActorID: actorID, Comment: comment, Timestamp: at})
	return nil
}

func (m *Repo) ListByExpenseID(_ context.Context, expenseID string) ([]domain.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Log
	for _, l := range m.Logs {
		if l.ExpenseID == expenseID {
			out = append(out, l)
		}
	}
	return out, nil
}
