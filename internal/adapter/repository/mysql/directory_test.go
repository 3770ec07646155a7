package mysql

import (
	"context"
	"testing"
	"time"

	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/user"
	"expense-approval/internal/domain/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_RoundTripAndReferences(t *testing.T) {
	db := openTestDB(t)
	repo := NewWorkflowRepository(db)
	ctx := context.Background()

	w, err := workflow.New("CMP-1", "travel", []workflow.Step{
		workflow.RoleStep{StepIndex: 0, ApproverRole: "finance"},
		workflow.UserStep{StepIndex: 1, ApproverUsers: []string{"A", "B"}, Mode: workflow.ModeAll},
	}, workflow.HybridRule{Threshold: 60, Role: "director"})
	require.NoError(t, err)
	w.WorkflowID = "WF-1"
	require.NoError(t, repo.Create(ctx, w))

	other, err := workflow.New("CMP-1", "other", []workflow.Step{workflow.RoleStep{StepIndex: 0, ApproverRole: "director"}}, nil)
	require.NoError(t, err)
	other.WorkflowID = "WF-2"
	require.NoError(t, repo.Create(ctx, other))

	got, err := repo.GetByWorkflowID(ctx, "WF-1")
	require.NoError(t, err)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, workflow.RoleStep{StepIndex: 0, ApproverRole: "finance"}, got.Steps[0])
	us, ok := got.Steps[1].(workflow.UserStep)
	require.True(t, ok)
	assert.Equal(t, workflow.ModeAll, us.Mode)
	assert.Equal(t, []string{"A", "B"}, us.ApproverUsers)
	assert.Equal(t, workflow.HybridRule{Threshold: 60, Role: "director"}, got.Rules)

	list, err := repo.ListByCompany(ctx, "CMP-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := repo.CountReferencingRole(ctx, "CMP-1", "finance")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByWorkflowID(ctx, "WF-404")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestWorkflow_InvalidRefusedOnSave(t *testing.T) {
	repo := NewWorkflowRepository(openTestDB(t))
	w := &workflow.Workflow{WorkflowID: "WF-X", CompanyID: "CMP-1", Name: "broken"}
	err := repo.Create(context.Background(), w)
	assert.ErrorIs(t, err, workflow.ErrInvalidDefinition)
}

func TestRole_CRUD(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	r := &role.Role{RoleID: "R-1", CompanyID: "CMP-1", Name: "auditor", DisplayName: "Auditor", IsApprover: true}
	require.NoError(t, repo.Create(ctx, r))

	dup := &role.Role{RoleID: "R-2", CompanyID: "CMP-1", Name: "auditor"}
	assert.ErrorIs(t, repo.Create(ctx, dup), role.ErrExists)

	// same name in another company is fine
	require.NoError(t, repo.Create(ctx, &role.Role{RoleID: "R-3", CompanyID: "CMP-2", Name: "auditor"}))

	got, err := repo.GetByName(ctx, "CMP-1", " Auditor ")
	require.NoError(t, err)
	assert.True(t, got.IsApprover)

	got.IsApprover = false
	require.NoError(t, repo.Save(ctx, got))
	again, err := repo.GetByRoleID(ctx, "CMP-1", "R-1")
	require.NoError(t, err)
	assert.False(t, again.IsApprover)

	_, err = repo.GetByRoleID(ctx, "CMP-2", "R-1")
	assert.ErrorIs(t, err, role.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, again))
	_, err = repo.GetByName(ctx, "CMP-1", "auditor")
	assert.ErrorIs(t, err, role.ErrNotFound)

	list, err := repo.ListByCompany(ctx, "CMP-2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUser_Queries(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mgr := "U-MGR"
	seed := []*user.User{
		{UserID: "U-MGR", CompanyID: "CMP-1", Name: "M", Email: "m@x.io", Role: "manager"},
		{UserID: "U-1", CompanyID: "CMP-1", Name: "A", Email: "a@x.io", Role: "employee", ManagerID: &mgr},
		{UserID: "U-2", CompanyID: "CMP-1", Name: "B", Email: "b@x.io", Role: "employee", ManagerID: &mgr},
		{UserID: "U-3", CompanyID: "CMP-1", Name: "C", Email: "c@x.io", Role: "auditor"},
	}
	for _, u := range seed {
		require.NoError(t, repo.Create(ctx, u))
	}

	u, err := repo.GetByUserID(ctx, "U-1")
	require.NoError(t, err)
	assert.Equal(t, "U-MGR", u.Manager())

	_, err = repo.GetByUserID(ctx, "U-404")
	assert.ErrorIs(t, err, user.ErrNotFound)

	reports, err := repo.ListReports(ctx, "CMP-1", "U-MGR")
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	found, err := repo.ListByUserIDs(ctx, []string{"U-1", "U-3", "U-404"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	n, err := repo.CountByRole(ctx, "CMP-1", "auditor")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAudit_AppendAndList(t *testing.T) {
	repo := NewAuditRepository(openTestDB(t))
	ctx := context.Background()
	t0 := time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, "EXP-1", "reject", "U-2", "no receipt", t0.Add(time.Minute)))
	require.NoError(t, repo.Append(ctx, "EXP-1", "approve", "U-1", "", t0))
	require.NoError(t, repo.Append(ctx, "EXP-2", "approve", "U-1", "", t0))

	logs, err := repo.ListByExpenseID(ctx, "EXP-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "approve", logs[0].Action)
	assert.Equal(t, "reject", logs[1].Action)
	assert.Equal(t, "no receipt", logs[1].Comment)
}

func TestUser_SaveDeleteAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := &user.User{UserID: "U-1", CompanyID: "CMP-1", Name: "A", Email: "a@acme.test", Role: "manager"}
	b := &user.User{UserID: "U-2", CompanyID: "CMP-1", Name: "B", Email: "b@acme.test", Role: "employee"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, &user.User{UserID: "U-3", CompanyID: "CMP-2", Name: "C", Email: "c@other.test", Role: "employee"}))

	err := repo.Create(ctx, &user.User{UserID: "U-4", CompanyID: "CMP-1", Name: "D", Email: "a@acme.test", Role: "employee"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	b.Email = "a@acme.test"
	assert.ErrorIs(t, repo.Save(ctx, b), user.ErrEmailTaken)
	b.Email = "b@acme.test"
	b.Name = "Bea"
	require.NoError(t, repo.Save(ctx, b))

	list, err := repo.ListByCompany(ctx, "CMP-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "U-2", list[0].UserID)
	assert.Equal(t, "Bea", list[0].Name)

	require.NoError(t, repo.Delete(ctx, a))
	_, err = repo.GetByUserID(ctx, "U-1")
	assert.ErrorIs(t, err, user.ErrNotFound)
	list, err = repo.ListByCompany(ctx, "CMP-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// the row survives for history
	var n int64
	require.NoError(t, db.Unscoped().Model(&user.User{}).Where("user_id = ?", "U-1").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
