package approval

import (
	"context"
	"time"

	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/workflow"
)

// Case is everything the engine needs to decide on one expense.
type Case struct {
	Expense  *expense.Expense
	Workflow *workflow.Workflow // nil when the expense has no workflow
	// SubmitterManager is the submitter's direct manager user id ("" if none).
	SubmitterManager string
}

type Engine struct {
	resolver role.ApproverResolver
	policy   ManagerPolicy
	now      func() time.Time
}

type Option func(*Engine)

func WithManagerPolicy(p ManagerPolicy) Option {
	return func(e *Engine) {
		if p.Valid() {
			e.policy = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(resolver role.ApproverResolver, opts ...Option) *Engine {
	if resolver == nil {
		resolver = role.BuiltinResolver{}
	}
	en := &Engine{
		resolver: resolver,
		policy:   PolicyDirectManager,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(en)
	}
	return en
}

func (en *Engine) Policy() ManagerPolicy { return en.policy }

// Authorize runs the decision preconditions without mutating anything and
// returns the requirement the actor would satisfy. Checks run in a fixed
// order and the first failure wins.
func (en *Engine) Authorize(ctx context.Context, c Case, actor Actor) (*Requirement, error) {
	e := c.Expense
	if e.Status != expense.StatusPending {
		return nil, ErrAlreadyReviewed
	}
	req := RequiredRole(e, c.Workflow)
	if req == nil {
		return nil, ErrNoActionRequired
	}

	switch req.Kind {
	case RequireManager:
		if !en.canActAsManager(ctx, c, actor) {
			return nil, ErrWrongRole
		}
	case RequireRole:
		if !actor.Holds(req.Role) || !en.resolver.IsApprover(ctx, e.CompanyID, req.Role) {
			return nil, ErrWrongRole
		}
	case RequireUsers:
		st := req.Step.(workflow.UserStep)
		if !st.IsMember(actor.UserID) {
			return nil, ErrNotAssignedApprover
		}
		if StepSatisfied(e, st) {
			return nil, ErrStepAlreadySatisfied
		}
	}

	if e.HasActed(actor.UserID) {
		return nil, ErrDuplicateAction
	}
	return req, nil
}

func (en *Engine) canActAsManager(ctx context.Context, c Case, actor Actor) bool {
	if en.policy == PolicyAnyManager {
		return actor.Holds(role.Manager) && en.resolver.IsApprover(ctx, c.Expense.CompanyID, role.Manager)
	}
	return c.SubmitterManager != "" && actor.UserID == c.SubmitterManager
}

// RecordDecision validates the actor, appends the approval and moves the
// expense forward. A rejection terminates immediately.
func (en *Engine) RecordDecision(ctx context.Context, c Case, actor Actor, d expense.Decision, comment string) (*expense.Approval, error) {
	if !d.Valid() {
		return nil, ErrInvalidDecision
	}
	req, err := en.Authorize(ctx, c, actor)
	if err != nil {
		return nil, err
	}

	e := c.Expense
	now := en.now()
	e.Approvals = append(e.Approvals, expense.Approval{
		ExpenseID:  e.ID,
		ApproverID: actor.UserID,
		Role:       req.Role,
		StepIndex:  req.StepIndex,
		Decision:   d,
		Comment:    comment,
		ActedAt:    now,
	})
	recorded := e.LastApproval()

	if d == expense.DecisionRejected {
		e.Status = expense.StatusRejected
		e.RejectionReason = comment
		e.ReviewedAt = &now
		return recorded, nil
	}

	en.Progress(e, c.Workflow)
	return recorded, nil
}

// Progress advances the step pointer for the step that was just satisfied and
// finalizes the expense when a completion rule fires or the steps run out.
// Calling it again on the same state changes nothing.
func (en *Engine) Progress(e *expense.Expense, wf *workflow.Workflow) {
	if e.Status != expense.StatusPending {
		return
	}
	if e.IsManagerApprover && !e.ManagerApproved() {
		return
	}
	if wf == nil {
		en.approve(e)
		return
	}

	switch st := wf.StepAt(e.CurrentStep).(type) {
	case workflow.UserStep:
		if StepSatisfied(e, st) {
			e.CurrentStep++
		}
	case workflow.RoleStep:
		// only an approval recorded against this very step moves it
		if last := e.LastApproval(); last != nil &&
			last.Decision == expense.DecisionApproved &&
			last.StepIndex == st.StepIndex &&
			last.Role == st.ApproverRole {
			e.CurrentStep++
		}
	}

	if ok, _ := EvaluateRule(e, wf); ok {
		en.approve(e)
		return
	}
	if e.CurrentStep >= len(wf.Steps) {
		en.approve(e)
	}
}

func (en *Engine) approve(e *expense.Expense) {
	now := en.now()
	e.Status = expense.StatusApproved
	e.ReviewedAt = &now
}
