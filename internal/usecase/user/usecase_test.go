package user

import (
	"context"
	"testing"

	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/role"
	"expense-approval/internal/domain/uow"
	domain "expense-approval/internal/domain/user"
	"expense-approval/internal/testutil/rolemock"
	"expense-approval/internal/testutil/uowmock"
	"expense-approval/internal/testutil/usermock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = approval.Actor{UserID: "ADM-1", CompanyID: "CMP-1", Role: role.Admin}

func strp(s string) *string { return &s }

type fixture struct {
	uc    *Usecase
	users *usermock.Repo
	roles *rolemock.Repo
}

func newFixture() *fixture {
	mgr := "MGR-1"
	f := &fixture{
		users: &usermock.Repo{Users: map[string]*domain.User{
			"ADM-1": {UserID: "ADM-1", CompanyID: "CMP-1", Name: "Ada", Email: "ada@acme.test", Role: role.Admin},
			"MGR-1": {UserID: "MGR-1", CompanyID: "CMP-1", Name: "Mia", Email: "mia@acme.test", Role: role.Manager},
			"EMP-1": {UserID: "EMP-1", CompanyID: "CMP-1", Name: "Eli", Email: "eli@acme.test", Role: role.Employee, ManagerID: &mgr},
			"EMP-9": {UserID: "EMP-9", CompanyID: "CMP-2", Name: "Zoe", Email: "zoe@other.test", Role: role.Manager},
		}},
		roles: &rolemock.Repo{
			GetByNameFn: func(_ context.Context, companyID, name string) (*role.Role, error) {
				if companyID == "CMP-1" && name == "auditor" {
					return &role.Role{RoleID: "R-1", CompanyID: companyID, Name: name, IsApprover: true}, nil
				}
				return nil, role.ErrNotFound
			},
		},
	}
	tx := uowmock.New().WithRepos(uow.Repos{Users: f.users, Roles: f.roles})
	f.uc = NewUsecase(f.users, tx, nil)
	return f
}

func TestUsecase_AdminOnly(t *testing.T) {
	f := newFixture()
	mgr := approval.Actor{UserID: "MGR-1", CompanyID: "CMP-1", Role: role.Manager}

	_, err := f.uc.List(context.Background(), mgr)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Create(context.Background(), mgr, CreateInput{Name: "x", Email: "x@acme.test", Role: "employee"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Update(context.Background(), mgr, "EMP-1", UpdateInput{Name: strp("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.Delete(context.Background(), mgr, "EMP-1"), domain.ErrForbidden)
}

func TestUsecase_ListScopedToCompany(t *testing.T) {
	f := newFixture()

	got, err := f.uc.List(context.Background(), admin)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, u := range got {
		ids = append(ids, u.UserID)
	}
	assert.Equal(t, []string{"ADM-1", "EMP-1", "MGR-1"}, ids)
	assert.Equal(t, "MGR-1", got[1].ManagerID)
}

func TestUsecase_Create(t *testing.T) {
	f := newFixture()

	got, err := f.uc.Create(context.Background(), admin, CreateInput{
		Name: " Noor ", Email: " Noor@Acme.test ", Role: "Employee", ManagerID: "MGR-1",
	})
	require.NoError(t, err)
	assert.Len(t, got.UserID, 32)
	assert.Equal(t, "CMP-1", got.CompanyID)
	assert.Equal(t, "Noor", got.Name)
	assert.Equal(t, "noor@acme.test", got.Email)
	assert.Equal(t, role.Employee, got.Role)
	assert.Equal(t, "MGR-1", got.ManagerID)

	stored, ok := f.users.Users[got.UserID]
	require.True(t, ok)
	assert.Equal(t, "MGR-1", stored.Manager())
}

func TestUsecase_CreateRoles(t *testing.T) {
	cases := []struct {
		name string
		role string
		err  error
	}{
		{"employee", "employee", nil},
		{"builtin approver", "finance", nil},
		{"custom role", "Auditor", nil},
		{"admin refused", "admin", domain.ErrInvalidRole},
		{"unknown role", "janitor", domain.ErrInvalidRole},
		{"blank role", "  ", domain.ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			got, err := f.uc.Create(context.Background(), admin, CreateInput{Name: "N", Email: "n@acme.test", Role: tc.role})
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Len(t, f.users.Users, 4)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, role.Normalize(tc.role), got.Role)
		})
	}
}

func TestUsecase_CreateManagerChecks(t *testing.T) {
	cases := []struct {
		name    string
		manager string
	}{
		{"unknown", "NOPE"},
		{"other company", "EMP-9"},
		{"not a manager", "EMP-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.Create(context.Background(), admin, CreateInput{
				Name: "N", Email: "n@acme.test", Role: "employee", ManagerID: tc.manager,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidManager)
		})
	}

	t.Run("admin can manage", func(t *testing.T) {
		f := newFixture()
		got, err := f.uc.Create(context.Background(), admin, CreateInput{
			Name: "N", Email: "n@acme.test", Role: "employee", ManagerID: "ADM-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "ADM-1", got.ManagerID)
	})
}

func TestUsecase_CreateValidationAndConflict(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Create(context.Background(), admin, CreateInput{Name: " ", Email: "n@acme.test", Role: "employee"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	f.users.CreateFn = func(context.Context, *domain.User) error { return domain.ErrEmailTaken }
	_, err = f.uc.Create(context.Background(), admin, CreateInput{Name: "N", Email: "eli@acme.test", Role: "employee"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUsecase_Update(t *testing.T) {
	f := newFixture()

	got, err := f.uc.Update(context.Background(), admin, "EMP-1", UpdateInput{
		Name: strp("Eli Cohen"), Role: strp("auditor"), ManagerID: strp(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Eli Cohen", got.Name)
	assert.Equal(t, "auditor", got.Role)
	assert.Empty(t, got.ManagerID)
	assert.Equal(t, "eli@acme.test", got.Email)
	assert.Nil(t, f.users.Users["EMP-1"].ManagerID)
}

func TestUsecase_UpdateRejections(t *testing.T) {
	cases := []struct {
		name   string
		target string
		in     UpdateInput
		err    error
	}{
		{"admin target", "ADM-1", UpdateInput{Name: strp("x")}, domain.ErrAdminImmutable},
		{"other company", "EMP-9", UpdateInput{Name: strp("x")}, domain.ErrNotFound},
		{"missing", "NOPE", UpdateInput{Name: strp("x")}, domain.ErrNotFound},
		{"own manager", "MGR-1", UpdateInput{ManagerID: strp("MGR-1")}, domain.ErrInvalidManager},
		{"promote to admin", "EMP-1", UpdateInput{Role: strp("admin")}, domain.ErrInvalidRole},
		{"blank email", "EMP-1", UpdateInput{Email: strp(" ")}, domain.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.Update(context.Background(), admin, tc.target, tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestUsecase_DeleteDetachesReports(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.uc.Delete(context.Background(), admin, "MGR-1"))

	_, ok := f.users.Users["MGR-1"]
	assert.False(t, ok)
	assert.Empty(t, f.users.Users["EMP-1"].Manager())
}

func TestUsecase_DeleteRejections(t *testing.T) {
	f := newFixture()

	assert.ErrorIs(t, f.uc.Delete(context.Background(), admin, "ADM-1"), domain.ErrAdminImmutable)
	assert.ErrorIs(t, f.uc.Delete(context.Background(), admin, "EMP-9"), domain.ErrNotFound)
	assert.Len(t, f.users.Users, 4)
}
