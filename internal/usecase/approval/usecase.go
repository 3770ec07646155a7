package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainApproval "expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/audit"
	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/uow"
	"expense-approval/internal/domain/user"
	"expense-approval/internal/domain/workflow"
	expenseuc "expense-approval/internal/usecase/expense"

	"go.uber.org/zap"
)

// Metrics observes decision outcomes; result is "ok" or an error kind.
type Metrics interface {
	ObserveDecision(decision, result string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveDecision(string, string) {}

type Usecase struct {
	expenses  expense.Repository
	workflows workflow.Repository
	users     user.Repository
	audit     audit.Repository
	uow       uow.UnitOfWork
	engine    *domainApproval.Engine
	metrics   Metrics
	log       *zap.Logger
}

type Deps struct {
	Expenses  expense.Repository
	Workflows workflow.Repository
	Users     user.Repository
	Audit     audit.Repository
	UoW       uow.UnitOfWork
	Engine    *domainApproval.Engine
	Metrics   Metrics
	Log       *zap.Logger
}

func NewUsecase(d Deps) *Usecase {
	u := &Usecase{
		expenses:  d.Expenses,
		workflows: d.Workflows,
		users:     d.Users,
		audit:     d.Audit,
		uow:       d.UoW,
		engine:    d.Engine,
		metrics:   d.Metrics,
		log:       d.Log,
	}
	if u.metrics == nil {
		u.metrics = nopMetrics{}
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	return u
}

func (u *Usecase) Approve(ctx context.Context, actor domainApproval.Actor, in DecisionInput) (*DecisionDTO, error) {
	return u.decide(ctx, actor, in, expense.DecisionApproved)
}

// Reject needs a reason; it becomes the expense's rejection reason.
func (u *Usecase) Reject(ctx context.Context, actor domainApproval.Actor, in DecisionInput) (*DecisionDTO, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if in.Comment == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", expense.ErrInvalid)
	}
	return u.decide(ctx, actor, in, expense.DecisionRejected)
}

// decide serializes on the expense row: validate, append, advance and save in
// one transaction. The audit entry is written after commit and may be lost.
func (u *Usecase) decide(ctx context.Context, actor domainApproval.Actor, in DecisionInput, d expense.Decision) (*DecisionDTO, error) {
	var (
		dto      *DecisionDTO
		recorded expense.Approval
	)

	err := u.uow.WithinExpenseTx(ctx, in.ExpenseID, func(r uow.Repos, e *expense.Expense) error {
		if e.CompanyID != actor.CompanyID {
			return expense.ErrNotFound
		}
		c, err := u.loadCase(ctx, r, e)
		if err != nil {
			return err
		}

		a, err := u.engine.RecordDecision(ctx, c, actor, d, in.Comment)
		if err != nil {
			return err
		}
		if err := r.Approvals.Create(ctx, a); err != nil {
			return err
		}
		if err := r.Expenses.Save(ctx, e); err != nil {
			return err
		}

		recorded = *a
		out := DecisionDTO{Expense: expenseuc.ToDTO(e)}
		out.Approval = out.Expense.Approvals[len(out.Expense.Approvals)-1]
		dto = &out
		return nil
	})
	u.metrics.ObserveDecision(string(d), resultLabel(err))
	if err != nil {
		return nil, err
	}

	u.log.Info("expense decision recorded",
		zap.String("expense_id", in.ExpenseID),
		zap.String("actor_id", actor.UserID),
		zap.String("decision", string(d)),
		zap.String("status", dto.Expense.Status))
	u.appendAudit(ctx, in.ExpenseID, d, actor.UserID, in.Comment, recorded.ActedAt)
	return dto, nil
}

func (u *Usecase) appendAudit(ctx context.Context, expenseID string, d expense.Decision, actorID, comment string, at time.Time) {
	if u.audit == nil {
		return
	}
	action := audit.ActionApprove
	if d == expense.DecisionRejected {
		action = audit.ActionReject
	}
	if err := u.audit.Append(ctx, expenseID, action, actorID, comment, at); err != nil {
		u.log.Warn("audit append failed",
			zap.String("expense_id", expenseID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// Progress re-runs step advancement and rule evaluation for one expense and
// persists the result only when something changed.
func (u *Usecase) Progress(ctx context.Context, actor domainApproval.Actor, expenseID string) (*expenseuc.ExpenseDTO, error) {
	if !actor.Holds(role.Admin) {
		return nil, user.ErrForbidden
	}
	var dto expenseuc.ExpenseDTO
	err := u.uow.WithinExpenseTx(ctx, expenseID, func(r uow.Repos, e *expense.Expense) error {
		if e.CompanyID != actor.CompanyID {
			return expense.ErrNotFound
		}
		c, err := u.loadCase(ctx, r, e)
		if err != nil {
			return err
		}
		status, step := e.Status, e.CurrentStep
		u.engine.Progress(e, c.Workflow)
		if e.Status != status || e.CurrentStep != step {
			if err := r.Expenses.Save(ctx, e); err != nil {
				return err
			}
		}
		dto = expenseuc.ToDTO(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// Pending lists the company's pending expenses the actor could decide on
// right now.
func (u *Usecase) Pending(ctx context.Context, actor domainApproval.Actor) ([]expenseuc.ExpenseDTO, error) {
	list, err := u.expenses.List(ctx, expense.Filter{CompanyID: actor.CompanyID, Status: expense.StatusPending})
	if err != nil {
		return nil, err
	}

	workflows := map[string]*workflow.Workflow{}
	managers := map[string]string{}
	if err := u.preloadManagers(ctx, list, managers); err != nil {
		return nil, err
	}

	out := make([]expenseuc.ExpenseDTO, 0)
	for i := range list {
		e := &list[i]
		if e.SubmittedBy == actor.UserID {
			continue
		}
		var wf *workflow.Workflow
		if e.WorkflowID != nil {
			w, ok := workflows[*e.WorkflowID]
			if !ok {
				w, err = u.workflows.GetByWorkflowID(ctx, *e.WorkflowID)
				if err != nil && !errors.Is(err, workflow.ErrNotFound) {
					return nil, err
				}
				workflows[*e.WorkflowID] = w
			}
			if w == nil {
				continue
			}
			wf = w
		}
		c := domainApproval.Case{Expense: e, Workflow: wf, SubmitterManager: managers[e.SubmittedBy]}
		if _, err := u.engine.Authorize(ctx, c, actor); err == nil {
			out = append(out, expenseuc.ToDTO(e))
		}
	}
	return out, nil
}

func (u *Usecase) preloadManagers(ctx context.Context, list []expense.Expense, into map[string]string) error {
	ids := make([]string, 0, len(list))
	seen := map[string]struct{}{}
	for _, e := range list {
		if _, ok := seen[e.SubmittedBy]; !ok {
			seen[e.SubmittedBy] = struct{}{}
			ids = append(ids, e.SubmittedBy)
		}
	}
	users, err := u.users.ListByUserIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range users {
		into[users[i].UserID] = users[i].Manager()
	}
	return nil
}

// Timeline returns the display projection of an expense together with its
// audit trail. It is read-only.
func (u *Usecase) Timeline(ctx context.Context, actor domainApproval.Actor, expenseID string) (*TimelineDTO, error) {
	e, err := u.expenses.GetByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.CompanyID != actor.CompanyID {
		return nil, expense.ErrNotFound
	}
	if role.Normalize(actor.Role) == role.Employee && e.SubmittedBy != actor.UserID {
		return nil, expense.ErrNotFound
	}

	var wf *workflow.Workflow
	if e.WorkflowID != nil {
		wf, err = u.workflows.GetByWorkflowID(ctx, *e.WorkflowID)
		if err != nil && !errors.Is(err, workflow.ErrNotFound) {
			return nil, err
		}
	}

	out := &TimelineDTO{
		Expense:  expenseuc.ToDTO(e),
		Required: toRequiredDTO(domainApproval.RequiredRole(e, wf)),
		Steps:    domainApproval.BuildTimeline(e, wf),
		Audit:    []AuditEntryDTO{},
	}
	if u.audit != nil {
		logs, err := u.audit.ListByExpenseID(ctx, expenseID)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			out.Audit = append(out.Audit, AuditEntryDTO{Action: l.Action, ActorID: l.ActorID, Comment: l.Comment, Timestamp: l.Timestamp})
		}
	}
	return out, nil
}

// loadCase gathers the workflow and the submitter's manager for an expense.
// Under the direct policy a gate with no resolvable manager cannot be cleared
// until an admin assigns the submitter a manager, so that case is logged.
func (u *Usecase) loadCase(ctx context.Context, r uow.Repos, e *expense.Expense) (domainApproval.Case, error) {
	c := domainApproval.Case{Expense: e}
	if e.WorkflowID != nil {
		wf, err := r.Workflows.GetByWorkflowID(ctx, *e.WorkflowID)
		if errors.Is(err, workflow.ErrNotFound) {
			return c, domainApproval.ErrInvalidWorkflowReference
		}
		if err != nil {
			return c, err
		}
		c.Workflow = wf
	}
	if e.IsManagerApprover {
		submitter, err := r.Users.GetByUserID(ctx, e.SubmittedBy)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return c, err
		}
		c.SubmitterManager = submitter.Manager()
		if c.SubmitterManager == "" && e.Status == expense.StatusPending && u.engine.Policy() == domainApproval.PolicyDirectManager {
			u.log.Warn("manager gate has no direct manager to act on it",
				zap.String("expense_id", e.ExpenseID),
				zap.String("submitted_by", e.SubmittedBy),
				zap.Bool("submitter_found", err == nil))
		}
	}
	return c, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domainApproval.ErrAlreadyReviewed):
		return "already_reviewed"
	case errors.Is(err, domainApproval.ErrNoActionRequired):
		return "no_action_required"
	case errors.Is(err, domainApproval.ErrWrongRole):
		return "wrong_role"
	case errors.Is(err, domainApproval.ErrNotAssignedApprover):
		return "not_assigned"
	case errors.Is(err, domainApproval.ErrStepAlreadySatisfied):
		return "step_satisfied"
	case errors.Is(err, domainApproval.ErrDuplicateAction):
		return "duplicate"
	case errors.Is(err, expense.ErrConcurrentUpdate):
		return "conflict"
	case errors.Is(err, expense.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
