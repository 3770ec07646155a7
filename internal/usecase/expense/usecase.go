package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense-approval/internal/domain/approval"
	domain "expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/uow"
	"expense-approval/internal/domain/user"
	"expense-approval/internal/domain/workflow"
	"expense-approval/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	repo   domain.Repository
	users  user.Repository
	uow    uow.UnitOfWork
	engine *approval.Engine
	log    *zap.Logger
}

func NewUsecase(repo domain.Repository, users user.Repository, tx uow.UnitOfWork, engine *approval.Engine, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, users: users, uow: tx, engine: engine, log: log}
}

// Submit creates a pending expense for the acting employee. An expense with
// no manager gate and no workflow is approved on the spot.
func (u *Usecase) Submit(ctx context.Context, actor approval.Actor, in SubmitInput) (*ExpenseDTO, error) {
	if !actor.Holds(role.Employee) {
		return nil, fmt.Errorf("%w: only employees submit expenses", user.ErrForbidden)
	}
	if err := validateSubmit(&in); err != nil {
		return nil, err
	}

	gate := true
	if in.IsManagerApprover != nil {
		gate = *in.IsManagerApprover
	}

	e := &domain.Expense{
		ExpenseID:         id.NewID32(),
		CompanyID:         actor.CompanyID,
		SubmittedBy:       actor.UserID,
		Amount:            in.Amount.Round(2),
		Currency:          in.Currency,
		Category:          in.Category,
		Description:       strings.TrimSpace(in.Description),
		Date:              in.Date.UTC().Truncate(24 * time.Hour),
		Status:            domain.StatusPending,
		IsManagerApprover: gate,
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var wf *workflow.Workflow
		if in.WorkflowID != "" {
			w, err := r.Workflows.GetByWorkflowID(ctx, in.WorkflowID)
			switch {
			case errors.Is(err, workflow.ErrNotFound):
				return approval.ErrInvalidWorkflowReference
			case err != nil:
				return err
			case w.CompanyID != actor.CompanyID:
				return approval.ErrInvalidWorkflowReference
			}
			wf = w
			e.WorkflowID = &w.WorkflowID
		}

		// under the global policy any manager can satisfy the gate
		if e.IsManagerApprover && u.engine.Policy() == approval.PolicyDirectManager {
			submitter, err := r.Users.GetByUserID(ctx, actor.UserID)
			if err != nil && !errors.Is(err, user.ErrNotFound) {
				return err
			}
			if submitter.Manager() == "" {
				// nobody could ever satisfy the gate
				u.log.Info("submitter has no manager; manager approval disabled",
					zap.String("user_id", actor.UserID))
				e.IsManagerApprover = false
			}
		}

		u.engine.Progress(e, wf)
		return r.Expenses.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("expense submitted",
		zap.String("expense_id", e.ExpenseID),
		zap.String("submitted_by", e.SubmittedBy),
		zap.String("status", string(e.Status)))
	dto := ToDTO(e)
	return &dto, nil
}

func validateSubmit(in *SubmitInput) error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalid)
	}
	if !domain.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalid, in.Category)
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = domain.DefaultCurrency
	}
	if len(in.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", domain.ErrInvalid)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalid)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalid)
	}
	return nil
}

// Get returns one expense. Plain employees only see their own; anything
// outside the actor's company reads as not found.
func (u *Usecase) Get(ctx context.Context, actor approval.Actor, expenseID string) (*ExpenseDTO, error) {
	e, err := u.repo.GetByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.CompanyID != actor.CompanyID {
		return nil, domain.ErrNotFound
	}
	if isPlainEmployee(actor) && e.SubmittedBy != actor.UserID {
		return nil, domain.ErrNotFound
	}
	dto := ToDTO(e)
	return &dto, nil
}

func (u *Usecase) List(ctx context.Context, actor approval.Actor, in ListInput) ([]ExpenseDTO, error) {
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
	return toDTOs(list), nil
}

func (u *Usecase) Stats(ctx context.Context, actor approval.Actor) (*StatsDTO, error) {
	f, err := u.scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	counts, err := u.repo.CountByStatus(ctx, f)
	if err != nil {
		return nil, err
	}
	approvedOnly := f
	approvedOnly.Status = domain.StatusApproved
	sum, err := u.repo.SumAmount(ctx, approvedOnly)
	if err != nil {
		return nil, err
	}
	s := &StatsDTO{
		Pending:        counts[domain.StatusPending],
		Approved:       counts[domain.StatusApproved],
		Rejected:       counts[domain.StatusRejected],
		ApprovedAmount: sum,
	}
	s.Total = s.Pending + s.Approved + s.Rejected
	return s, nil
}

// scope decides whose expenses the actor may list: admins see the whole
// company, managers their reports plus themselves, everyone else their own.
func (u *Usecase) scope(ctx context.Context, actor approval.Actor) (domain.Filter, error) {
	f := domain.Filter{CompanyID: actor.CompanyID}
	switch {
	case actor.Holds(role.Admin):
	case actor.Holds(role.Manager):
		reports, err := u.users.ListReports(ctx, actor.CompanyID, actor.UserID)
		if err != nil {
			return f, err
		}
		f.SubmittedBy = []string{actor.UserID}
		for _, r := range reports {
			f.SubmittedBy = append(f.SubmittedBy, r.UserID)
		}
	default:
		f.SubmittedBy = []string{actor.UserID}
	}
	return f, nil
}

func isPlainEmployee(a approval.Actor) bool {
	return role.Normalize(a.Role) == role.Employee
}
