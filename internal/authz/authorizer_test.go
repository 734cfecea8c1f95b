package authz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

type fixture struct {
	repos    *repository.Repositories
	authz    *Authorizer
	employer int64
	other    int64
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := repository.Open(ctx, repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    repository.SQLiteDSN(filepath.Join(t.TempDir(), "authz.db")),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, repository.Migrate(ctx, store, logger))

	repos := repository.NewRepositories(store, logger)
	acme, err := repos.Employers.Create(ctx, "Acme")
	require.NoError(t, err)
	globex, err := repos.Employers.Create(ctx, "Globex")
	require.NoError(t, err)

	a, err := NewAuthorizer(cfg, repos.Employees, logger)
	require.NoError(t, err)
	return &fixture{repos: repos, authz: a, employer: acme.ID, other: globex.ID}
}

func (f *fixture) addAdmin(t *testing.T, id, employerID int64, role constants.Role, status constants.EmployeeStatus) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.repos.Employees.Create(context.Background(), &entity.Employee{
		ID:           id,
		UUID:         uuid.NewString(),
		EmployerID:   employerID,
		FirstName:    "Naledi",
		LastName:     "Dube",
		MobileNumber: fmt.Sprintf("+27825550%03d", id),
		Role:         string(role),
		Status:       string(status),
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func TestAuthorize_AdminImports(t *testing.T) {
	f := newFixture(t, Config{})
	f.addAdmin(t, 1, f.employer, constants.RoleHRAdmin, constants.EmployeeStatusActive)

	d, err := f.authz.Authorize(context.Background(), 1, f.employer, constants.OperationImportEmployees)
	require.NoError(t, err)
	assert.True(t, d.Authorized)
	assert.Equal(t, f.employer, d.TenantID)
	assert.Equal(t, "Naledi Dube", d.AdminName)
	assert.Equal(t, "hr_admin", d.Role)
	assert.Empty(t, d.Reason)
}

func TestAuthorize_TenantDerivedFromAdmin(t *testing.T) {
	f := newFixture(t, Config{})
	f.addAdmin(t, 1, f.other, constants.RoleHRAdmin, constants.EmployeeStatusActive)

	d, err := f.authz.Authorize(context.Background(), 1, 0, constants.OperationImportEmployees)
	require.NoError(t, err)
	assert.True(t, d.Authorized)
	assert.Equal(t, f.other, d.TenantID)
}

func TestAuthorize_Denials(t *testing.T) {
	f := newFixture(t, Config{})
	f.addAdmin(t, 1, f.employer, constants.RoleHRManager, constants.EmployeeStatusActive)
	f.addAdmin(t, 2, f.employer, constants.RoleHRAdmin, constants.EmployeeStatusInactive)
	f.addAdmin(t, 3, f.employer, constants.RoleHRViewer, constants.EmployeeStatusActive)
	f.addAdmin(t, 4, f.employer, constants.RoleHRAdmin, constants.EmployeeStatusActive)

	tests := []struct {
		name     string
		admin    int64
		employer int64
		op       constants.Operation
		reason   string
	}{
		{"unknown admin", 99, f.employer, constants.OperationImportEmployees, "Admin with ID 99 not found"},
		{"inactive admin", 2, f.employer, constants.OperationImportEmployees, "Admin account is inactive"},
		{"manager cannot create", 1, f.employer, constants.OperationImportEmployees, "Role 'hr_manager' does not have permission 'create_employee'"},
		{"viewer cannot update", 3, f.employer, constants.OperationUpdateManagers, "Role 'hr_viewer' does not have permission 'update_employee'"},
		{"wrong employer", 4, f.other, constants.OperationImportEmployees, "does not belong to employer"},
		{"viewer cannot run any operation", 3, f.employer, constants.OperationAuto, "Role 'hr_viewer' may not run any bulk operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.authz.Authorize(context.Background(), tt.admin, tt.employer, tt.op)
			require.NoError(t, err)
			assert.False(t, d.Authorized)
			assert.Contains(t, d.Reason, tt.reason)
		})
	}
}

func TestAuthorize_AutoNeedsSomeBulkPermission(t *testing.T) {
	f := newFixture(t, Config{})
	f.addAdmin(t, 1, f.employer, constants.RoleHRManager, constants.EmployeeStatusActive)
	f.addAdmin(t, 2, f.employer, constants.RoleHRAdmin, constants.EmployeeStatusActive)

	for _, id := range []int64{1, 2} {
		for _, op := range []constants.Operation{constants.OperationAuto, ""} {
			d, err := f.authz.Authorize(context.Background(), id, 0, op)
			require.NoError(t, err)
			assert.True(t, d.Authorized, "admin %d op %q", id, op)
			assert.Equal(t, f.employer, d.TenantID)
		}
	}
}

func TestAuthorize_ManagerMayUpdateManagers(t *testing.T) {
	f := newFixture(t, Config{})
	f.addAdmin(t, 1, f.employer, constants.RoleHRManager, constants.EmployeeStatusActive)

	d, err := f.authz.Authorize(context.Background(), 1, f.employer, constants.OperationUpdateManagers)
	require.NoError(t, err)
	assert.True(t, d.Authorized)
}

func TestHasPermission_DefaultHierarchy(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		role string
		perm constants.Permission
		want bool
	}{
		{"hr_admin", constants.PermViewEmployee, true},
		{"hr_admin", constants.PermApproveLeave, true},
		{"hr_admin", constants.PermManageRoles, true},
		{"hr_manager", constants.PermViewTeamLeave, true},
		{"hr_manager", constants.PermDeleteEmployee, false},
		{"hr_viewer", constants.PermViewLeave, true},
		{"hr_viewer", constants.PermCreateLeaveRequest, false},
		{"employee", constants.PermCreateLeaveRequest, true},
		{"employee", constants.PermViewEmployee, false},
	}
	for _, tt := range tests {
		got, err := f.authz.HasPermission(tt.role, f.employer, tt.perm)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.role, tt.perm)
	}
}

func TestPolicyFile_DomainScoped(t *testing.T) {
	f := newFixture(t, Config{PolicyPath: filepath.Join("testdata", "policy.csv")})

	// testdata grants create_employee to hr_admin in employer 1 only.
	ok, err := f.authz.HasPermission("hr_admin", 1, constants.PermCreateEmployee)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.authz.HasPermission("hr_admin", 2, constants.PermCreateEmployee)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.authz.HasPermission("hr_admin", 2, constants.PermViewEmployee)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.authz.ReloadPolicy(context.Background()))
}

func TestOperationPermission(t *testing.T) {
	assert.Equal(t, constants.PermCreateEmployee, constants.OperationImportEmployees.Permission())
	assert.Equal(t, constants.PermUpdateEmployee, constants.OperationUpdateManagers.Permission())
	assert.Empty(t, constants.OperationInitializeLeave.Permission())
}
