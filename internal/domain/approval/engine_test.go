package approval

import (
	"context"
	"testing"
	"time"

	"expense-approval/internal/domain/expense"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/workflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)

func newEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewEngine(role.BuiltinResolver{}, opts...)
}

func pendingExpense(gate bool) *expense.Expense {
	return &expense.Expense{
		ID:                1,
		ExpenseID:         "EXP-1",
		CompanyID:         "CMP-1",
		SubmittedBy:       "EMP-1",
		Amount:            decimal.NewFromInt(120),
		Currency:          "USD",
		Category:          "Travel",
		Status:            expense.StatusPending,
		IsManagerApprover: gate,
	}
}

func financeDirector(t *testing.T, rule workflow.CompletionRule) *workflow.Workflow {
	t.Helper()
	wf, err := workflow.New("CMP-1", "two roles", []workflow.Step{
		workflow.RoleStep{StepIndex: 0, ApproverRole: "finance"},
		workflow.RoleStep{StepIndex: 1, ApproverRole: "director"},
	}, rule)
	require.NoError(t, err)
	return wf
}

func approve(t *testing.T, en *Engine, c Case, a Actor) {
	t.Helper()
	_, err := en.RecordDecision(context.Background(), c, a, expense.DecisionApproved, "")
	require.NoError(t, err)
}

func TestEngine_SequentialRoleSteps(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	c := Case{Expense: e, Workflow: financeDirector(t, workflow.NoRule{})}

	approve(t, en, c, Actor{UserID: "FIN-1", Role: "finance"})
	assert.Equal(t, 1, e.CurrentStep)
	assert.Equal(t, expense.StatusPending, e.Status)

	approve(t, en, c, Actor{UserID: "DIR-1", Role: "director"})
	assert.Equal(t, 2, e.CurrentStep)
	assert.Equal(t, expense.StatusApproved, e.Status)
	require.NotNil(t, e.ReviewedAt)
	assert.Equal(t, fixedNow, *e.ReviewedAt)
}

func TestEngine_PercentageShortCircuits(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	c := Case{Expense: e, Workflow: financeDirector(t, workflow.PercentageRule{Threshold: 50})}

	approve(t, en, c, Actor{UserID: "FIN-1", Role: "finance"})
	assert.Equal(t, expense.StatusApproved, e.Status)
	assert.Nil(t, RequiredRole(e, c.Workflow))

	_, err := en.RecordDecision(context.Background(), c, Actor{UserID: "DIR-1", Role: "director"}, expense.DecisionApproved, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestEngine_UserStepAll(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	wf, err := workflow.New("CMP-1", "members", []workflow.Step{
		workflow.UserStep{StepIndex: 0, ApproverUsers: []string{"A", "B"}, Mode: workflow.ModeAll},
		workflow.RoleStep{StepIndex: 1, ApproverRole: "finance"},
	}, nil)
	require.NoError(t, err)
	c := Case{Expense: e, Workflow: wf}

	approve(t, en, c, Actor{UserID: "A", Role: "employee"})
	assert.Equal(t, 0, e.CurrentStep)

	approve(t, en, c, Actor{UserID: "B", Role: "employee"})
	assert.Equal(t, 1, e.CurrentStep)
	assert.Equal(t, expense.StatusPending, e.Status)

	for _, a := range e.Approvals {
		assert.Equal(t, expense.LabelUsers, a.Role)
		assert.Equal(t, 0, a.StepIndex)
	}
}

func TestEngine_UserStepAnyRejectsSecondMember(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	wf, err := workflow.New("CMP-1", "members", []workflow.Step{
		workflow.UserStep{StepIndex: 0, ApproverUsers: []string{"A", "B"}, Mode: workflow.ModeAny},
		workflow.RoleStep{StepIndex: 1, ApproverRole: "finance"},
	}, nil)
	require.NoError(t, err)
	c := Case{Expense: e, Workflow: wf}

	approve(t, en, c, Actor{UserID: "A"})
	assert.Equal(t, 1, e.CurrentStep)

	// the pointer already moved on, so B is no longer looking at a UserStep
	_, err = en.Authorize(context.Background(), c, Actor{UserID: "B"})
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestEngine_StepAlreadySatisfied(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	st := workflow.UserStep{StepIndex: 0, ApproverUsers: []string{"A", "B"}, Mode: workflow.ModeAny}
	wf, err := workflow.New("CMP-1", "members", []workflow.Step{st}, nil)
	require.NoError(t, err)
	// history says A approved but the pointer was never advanced
	e.Approvals = []expense.Approval{{ApproverID: "A", Role: expense.LabelUsers, StepIndex: 0, Decision: expense.DecisionApproved}}

	_, err = en.Authorize(context.Background(), Case{Expense: e, Workflow: wf}, Actor{UserID: "B"})
	assert.ErrorIs(t, err, ErrStepAlreadySatisfied)

	_, err = en.Authorize(context.Background(), Case{Expense: e, Workflow: wf}, Actor{UserID: "C"})
	assert.ErrorIs(t, err, ErrNotAssignedApprover)
}

func TestEngine_ManagerGate(t *testing.T) {
	ctx := context.Background()
	wf := financeDirector(t, workflow.NoRule{})

	tests := []struct {
		name    string
		policy  ManagerPolicy
		actor   Actor
		wantErr error
	}{
		{
			name:   "direct manager approves",
			policy: PolicyDirectManager,
			actor:  Actor{UserID: "MGR-1", Role: "manager"},
		},
		{
			name:    "other manager refused under direct policy",
			policy:  PolicyDirectManager,
			actor:   Actor{UserID: "MGR-2", Role: "manager"},
			wantErr: ErrWrongRole,
		},
		{
			name:   "other manager allowed under global policy",
			policy: PolicyAnyManager,
			actor:  Actor{UserID: "MGR-2", Role: "manager"},
		},
		{
			name:    "non-manager refused under global policy",
			policy:  PolicyAnyManager,
			actor:   Actor{UserID: "FIN-1", Role: "finance"},
			wantErr: ErrWrongRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := newEngine(WithManagerPolicy(tt.policy))
			e := pendingExpense(true)
			c := Case{Expense: e, Workflow: wf, SubmitterManager: "MGR-1"}

			a, err := en.RecordDecision(ctx, c, tt.actor, expense.DecisionApproved, "ok")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, e.Approvals)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, expense.LabelManager, a.Role)
			assert.Equal(t, expense.ManagerStepIndex, a.StepIndex)
			// the gate does not move the workflow pointer
			assert.Equal(t, 0, e.CurrentStep)
			assert.Equal(t, expense.StatusPending, e.Status)
		})
	}
}

func TestEngine_ManagerGateWithoutWorkflowApproves(t *testing.T) {
	en := newEngine()
	e := pendingExpense(true)
	c := Case{Expense: e, SubmitterManager: "MGR-1"}

	req := RequiredRole(e, nil)
	require.NotNil(t, req)
	assert.Equal(t, RequireManager, req.Kind)

	approve(t, en, c, Actor{UserID: "MGR-1"})
	assert.Equal(t, expense.StatusApproved, e.Status)
}

func TestEngine_ManagerGateBlocksSteps(t *testing.T) {
	en := newEngine()
	e := pendingExpense(true)
	c := Case{Expense: e, Workflow: financeDirector(t, workflow.NoRule{}), SubmitterManager: "MGR-1"}

	_, err := en.RecordDecision(context.Background(), c, Actor{UserID: "FIN-1", Role: "finance"}, expense.DecisionApproved, "")
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestEngine_DuplicateAction(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	wf, err := workflow.New("CMP-1", "finance twice", []workflow.Step{
		workflow.RoleStep{StepIndex: 0, ApproverRole: "finance"},
		workflow.RoleStep{StepIndex: 1, ApproverRole: "finance"},
	}, nil)
	require.NoError(t, err)
	c := Case{Expense: e, Workflow: wf}

	approve(t, en, c, Actor{UserID: "FIN-1", Role: "finance"})
	_, err = en.RecordDecision(context.Background(), c, Actor{UserID: "FIN-1", Role: "finance"}, expense.DecisionApproved, "")
	assert.ErrorIs(t, err, ErrDuplicateAction)
	assert.Len(t, e.Approvals, 1)
}

func TestEngine_WrongRoleForRoleStep(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	c := Case{Expense: e, Workflow: financeDirector(t, workflow.NoRule{})}

	_, err := en.RecordDecision(context.Background(), c, Actor{UserID: "DIR-1", Role: "director"}, expense.DecisionApproved, "")
	assert.ErrorIs(t, err, ErrWrongRole)

	// a legacy claim role is accepted
	approve(t, en, c, Actor{UserID: "FIN-1", Role: "employee", ClaimRole: "Finance"})
	assert.Equal(t, 1, e.CurrentStep)
}

type denyAll struct{}

func (denyAll) IsApprover(context.Context, string, string) bool { return false }

func TestEngine_RoleWithoutApproverCapability(t *testing.T) {
	en := NewEngine(denyAll{})
	e := pendingExpense(false)
	c := Case{Expense: e, Workflow: financeDirector(t, workflow.NoRule{})}

	_, err := en.RecordDecision(context.Background(), c, Actor{UserID: "FIN-1", Role: "finance"}, expense.DecisionApproved, "")
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestEngine_RejectTerminates(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	c := Case{Expense: e, Workflow: financeDirector(t, workflow.PercentageRule{Threshold: 100})}

	a, err := en.RecordDecision(context.Background(), c, Actor{UserID: "FIN-1", Role: "finance"}, expense.DecisionRejected, "missing receipt")
	require.NoError(t, err)
	assert.Equal(t, expense.DecisionRejected, a.Decision)
	assert.Equal(t, expense.StatusRejected, e.Status)
	assert.Equal(t, "missing receipt", e.RejectionReason)
	assert.Equal(t, 0, e.CurrentStep)
}

func TestEngine_Monotonic(t *testing.T) {
	en := newEngine()
	for _, st := range []expense.Status{expense.StatusApproved, expense.StatusRejected} {
		e := pendingExpense(false)
		e.Status = st
		e.CurrentStep = 1
		c := Case{Expense: e, Workflow: financeDirector(t, workflow.NoRule{})}

		for _, d := range []expense.Decision{expense.DecisionApproved, expense.DecisionRejected} {
			_, err := en.RecordDecision(context.Background(), c, Actor{UserID: "DIR-1", Role: "director"}, d, "")
			assert.ErrorIs(t, err, ErrAlreadyReviewed)
		}
		en.Progress(e, c.Workflow)
		assert.Equal(t, st, e.Status)
		assert.Equal(t, 1, e.CurrentStep)
		assert.Empty(t, e.Approvals)
	}
}

func TestEngine_InvalidDecision(t *testing.T) {
	en := newEngine()
	_, err := en.RecordDecision(context.Background(), Case{Expense: pendingExpense(false)}, Actor{UserID: "X"}, "maybe", "")
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestEngine_NoActionRequired(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	e.CurrentStep = 2
	_, err := en.Authorize(context.Background(), Case{Expense: e, Workflow: financeDirector(t, workflow.NoRule{})}, Actor{UserID: "DIR-1", Role: "director"})
	assert.ErrorIs(t, err, ErrNoActionRequired)
}

func TestEngine_ProgressIdempotent(t *testing.T) {
	en := newEngine()
	wf, err := workflow.New("CMP-1", "three", []workflow.Step{
		workflow.RoleStep{StepIndex: 0, ApproverRole: "finance"},
		workflow.RoleStep{StepIndex: 1, ApproverRole: "finance"},
		workflow.RoleStep{StepIndex: 2, ApproverRole: "director"},
	}, nil)
	require.NoError(t, err)
	e := pendingExpense(false)

	approve(t, en, Case{Expense: e, Workflow: wf}, Actor{UserID: "FIN-1", Role: "finance"})
	require.Equal(t, 1, e.CurrentStep)

	// the last approval belongs to step 0, so step 1 must not advance
	en.Progress(e, wf)
	en.Progress(e, wf)
	assert.Equal(t, 1, e.CurrentStep)
	assert.Equal(t, expense.StatusPending, e.Status)
}

func TestEngine_SpecificApproverAndHybrid(t *testing.T) {
	tests := []struct {
		name   string
		rule   workflow.CompletionRule
		actors []Actor
		want   expense.Status
	}{
		{
			name:   "specific approver fires on finance",
			rule:   workflow.SpecificApproverRule{Role: "finance"},
			actors: []Actor{{UserID: "FIN-1", Role: "finance"}},
			want:   expense.StatusApproved,
		},
		{
			name:   "hybrid waits below threshold without role",
			rule:   workflow.HybridRule{Threshold: 100, Role: "director"},
			actors: []Actor{{UserID: "FIN-1", Role: "finance"}},
			want:   expense.StatusPending,
		},
		{
			name:   "hybrid fires on percentage",
			rule:   workflow.HybridRule{Threshold: 50, Role: "director"},
			actors: []Actor{{UserID: "FIN-1", Role: "finance"}},
			want:   expense.StatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := newEngine()
			e := pendingExpense(false)
			c := Case{Expense: e, Workflow: financeDirector(t, tt.rule)}
			for _, a := range tt.actors {
				approve(t, en, c, a)
			}
			assert.Equal(t, tt.want, e.Status)
		})
	}
}

func TestEvaluateRule_Pure(t *testing.T) {
	wf := financeDirector(t, workflow.PercentageRule{Threshold: 60})
	e := pendingExpense(true)
	e.Approvals = []expense.Approval{
		{ApproverID: "MGR-1", Role: expense.LabelManager, StepIndex: -1, Decision: expense.DecisionApproved},
		{ApproverID: "FIN-1", Role: "finance", StepIndex: 0, Decision: expense.DecisionApproved},
	}

	// 2 of 3 = 66%
	ok1, reason1 := EvaluateRule(e, wf)
	ok2, reason2 := EvaluateRule(e, wf)
	assert.True(t, ok1)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, "percentage_60", reason1)
	assert.Equal(t, reason1, reason2)
	assert.Len(t, e.Approvals, 2)

	e.Approvals = e.Approvals[:1]
	ok, _ := EvaluateRule(e, wf)
	assert.False(t, ok)
}

func TestBuildTimeline(t *testing.T) {
	en := newEngine()
	e := pendingExpense(true)
	wf, err := workflow.New("CMP-1", "mixed", []workflow.Step{
		workflow.RoleStep{StepIndex: 0, ApproverRole: "finance"},
		workflow.UserStep{StepIndex: 1, ApproverUsers: []string{"A", "B"}, Mode: workflow.ModeAll},
	}, nil)
	require.NoError(t, err)
	c := Case{Expense: e, Workflow: wf, SubmitterManager: "MGR-1"}

	steps := BuildTimeline(e, wf)
	require.Len(t, steps, 3)
	assert.Equal(t, "Manager", steps[0].Label)
	assert.Equal(t, "Finance", steps[1].Label)
	assert.Equal(t, "Members (2)", steps[2].Label)
	for _, s := range steps {
		assert.Equal(t, StepPending, s.Status)
	}

	approve(t, en, c, Actor{UserID: "MGR-1"})
	_, err = en.RecordDecision(context.Background(), c, Actor{UserID: "FIN-1", Role: "finance"}, expense.DecisionRejected, "no")
	require.NoError(t, err)

	steps = BuildTimeline(e, wf)
	assert.Equal(t, StepApproved, steps[0].Status)
	assert.Equal(t, "MGR-1", steps[0].Approver)
	assert.Equal(t, StepRejected, steps[1].Status)
	assert.Equal(t, "no", steps[1].Comment)
	assert.Equal(t, StepSkipped, steps[2].Status)
}

func TestBuildTimeline_RuleShortCircuitLeavesPending(t *testing.T) {
	en := newEngine()
	e := pendingExpense(false)
	wf := financeDirector(t, workflow.PercentageRule{Threshold: 50})
	c := Case{Expense: e, Workflow: wf}

	approve(t, en, c, Actor{UserID: "FIN-1", Role: "finance"})
	require.Equal(t, expense.StatusApproved, e.Status)

	steps := BuildTimeline(e, wf)
	require.Len(t, steps, 2)
	assert.Equal(t, StepApproved, steps[0].Status)
	assert.Equal(t, "Director", steps[1].Label)
	assert.Equal(t, StepPending, steps[1].Status)
}
