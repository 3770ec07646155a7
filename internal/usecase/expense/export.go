package expense

import (
	"context"
	"fmt"
	"sort"
	"time"

	"expense-approval/internal/domain/approval"
	domain "expense-approval/internal/domain/expense"

	"github.com/shopspring/decimal"
)

// ExportRow is one flattened line of an expense report.
type ExportRow struct {
	Date            string
	Employee        string
	Email           string
	Category        string
	Description     string
	Amount          decimal.Decimal
	Currency        string
	Status          string
	ReviewedBy      string
	ReviewedAt      *time.Time
	RejectionReason string
}

// ExportColumns is the header row shared by every export format.
var ExportColumns = []string{
	"Date", "Employee", "Email", "Category", "Description", "Amount",
	"Currency", "Status", "Reviewed By", "Reviewed At", "Rejection Reason",
}

// Export lists the same expenses List would, latest expense date first, with submitter and
// final reviewer names resolved.
func (u *Usecase) Export(ctx context.Context, actor approval.Actor, in ListInput) ([]ExportRow, error) {
	f, err := u.scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, in.Status)
		}
		f.Status = in.Status
	}
	f.From, f.To = in.From, in.To

	list, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list)*2)
	for i := range list {
		ids = append(ids, list[i].SubmittedBy)
		if r := reviewer(&list[i]); r != "" {
			ids = append(ids, r)
		}
	}
	people, err := u.users.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	type person struct{ name, email string }
	byID := make(map[string]person, len(people))
	for _, p := range people {
		byID[p.UserID] = person{p.Name, p.Email}
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })

	rows := make([]ExportRow, 0, len(list))
	for i := range list {
		e := &list[i]
		sub := byID[e.SubmittedBy]
		row := ExportRow{
			Date:            e.Date.Format(time.DateOnly),
			Employee:        sub.name,
			Email:           sub.email,
			Category:        e.Category,
			Description:     e.Description,
			Amount:          e.Amount,
			Currency:        e.Currency,
			Status:          string(e.Status),
			ReviewedAt:      e.ReviewedAt,
			RejectionReason: e.RejectionReason,
		}
		if row.Employee == "" {
			row.Employee = e.SubmittedBy
		}
		if r := reviewer(e); r != "" {
			row.ReviewedBy = byID[r].name
			if row.ReviewedBy == "" {
				row.ReviewedBy = r
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// reviewer is whoever recorded the decision that closed the expense.
func reviewer(e *domain.Expense) string {
	if !e.Status.Terminal() {
		return ""
	}
	if a := e.LastApproval(); a != nil {
		return a.ApproverID
	}
	return ""
}
