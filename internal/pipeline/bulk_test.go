package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/audit"
	"github.com/joseph-ayodele/hr-bulk/internal/authz"
	"github.com/joseph-ayodele/hr-bulk/internal/batch"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
	"github.com/joseph-ayodele/hr-bulk/internal/report"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type harness struct {
	bulk     *Bulk
	repos    *repository.Repositories
	employer int64
	dir      string
	results  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	store, err := repository.Open(ctx, repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    repository.SQLiteDSN(filepath.Join(dir, "hr.db")),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, repository.Migrate(ctx, store, logger))

	repos := repository.NewRepositories(store, logger)
	acme, err := repos.Employers.Create(ctx, "Acme")
	require.NoError(t, err)

	az, err := authz.NewAuthorizer(authz.Config{}, repos.Employees, logger)
	require.NoError(t, err)

	results := filepath.Join(dir, "results")
	h := &harness{repos: repos, employer: acme.ID, dir: dir, results: results}
	h.bulk = NewBulk(Config{}, Deps{
		Authorizer: az,
		Store:      store,
		Mutator:    batch.NewMutator(store, batch.WithBatchSize(2), batch.WithLogger(logger), batch.WithClock(func() time.Time { return fixedNow })),
		Phone:      cleaning.NewPhoneCleaner("ZA"),
		Reporter:   report.NewReporter(results, report.FormatCSV, logger),
		Auditor:    audit.NewRecorder(audit.NewStoreSink(repos.Audit), logger),
		Logger:     logger,
		Now:        func() time.Time { return fixedNow },
	})
	return h
}

func (h *harness) addAdmin(t *testing.T, id int64, role constants.Role) {
	t.Helper()
	require.NoError(t, h.repos.Employees.Create(context.Background(), &entity.Employee{
		ID:           id,
		UUID:         uuid.NewString(),
		EmployerID:   h.employer,
		FirstName:    "Admin",
		LastName:     "User",
		MobileNumber: fmt.Sprintf("2782000%04d", id),
		Role:         string(role),
		Status:       string(constants.EmployeeStatusActive),
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}))
}

func (h *harness) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (h *harness) auditEvents(t *testing.T, opID string) []*entity.AuditEvent {
	t.Helper()
	events, err := h.repos.Audit.ListByOperation(context.Background(), opID)
	require.NoError(t, err)
	return events
}

const importCSV = `First Name,Surname,Cellphone Number,Email Address,Employee Number,Salary
Thabo,Mokoena,082 555 0101,thabo@example.co.za,E001,"R 25,000"
Naledi,Dube,+27 82 555 0102,naledi@example,E002,30000
sipho,nkosi,0825550103,SIPHO@EXAMPLE.CO.ZA,E003,
Lerato,Molefe,27825550104,lerato@example.co.za,E004,18 500.50
`

func TestRun_ImportEmployees(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRAdmin)

	out, err := h.bulk.Run(ctx, Request{
		Operation:  constants.OperationImportEmployees,
		FilePath:   h.writeFile(t, "staff.csv", importCSV),
		AdminID:    1,
		EmployerID: h.employer,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.OperationID, "import_employees_20261017_093000_"))

	// one malformed email: the other rows still commit, with ids that have no gaps
	assert.Equal(t, 4, out.Summary.Total)
	assert.Equal(t, 3, out.Summary.SuccessCount)
	assert.Equal(t, 1, out.Summary.FailureCount)
	assert.InDelta(t, 75.0, out.Summary.SuccessRate, 0.001)

	ids := out.Result.AllocatedIDs()
	require.Len(t, ids, 3)
	assert.Equal(t, ids[0]+1, ids[1])
	assert.Equal(t, ids[1]+1, ids[2])

	sipho, err := h.repos.Employees.GetInEmployer(ctx, h.employer, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "Sipho Nkosi", sipho.FullName())
	assert.Equal(t, "27825550103", sipho.MobileNumber)
	assert.Equal(t, "sipho@example.co.za", sipho.Email)
	assert.False(t, sipho.Salary.Valid)

	require.Len(t, out.Validation.Failed, 1)
	assert.Equal(t, 3, out.Validation.Failed[0].Row)
	assert.Contains(t, out.Validation.Failed[0].Reason(), "email")

	require.NotNil(t, out.Leave)
	assert.Equal(t, 3, out.Leave.SuccessCount)
	assert.Equal(t, 3, out.Leave.CreatedCounts[constants.LeaveAnnual])
	balances, err := h.repos.LeaveBalances.List(ctx, ids[0], 2026)
	require.NoError(t, err)
	assert.Len(t, balances, 3)

	assert.FileExists(t, out.Artifacts.SuccessPath)
	assert.FileExists(t, out.Artifacts.ErrorsPath)
	assert.FileExists(t, out.Artifacts.SummaryPath)
	assert.Empty(t, out.Artifacts.Errors)

	events := h.auditEvents(t, out.OperationID)
	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
	assert.Equal(t, "bulk_import_employees", events[0].Operation)
	assert.Equal(t, entity.AuditChanges{Total: 4, Successful: 3}, events[0].Changes)
	assert.Equal(t, h.employer, events[0].EmployerID)
}

func TestRun_UpdateManagers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRAdmin)

	imported, err := h.bulk.Run(ctx, Request{
		Operation: constants.OperationImportEmployees,
		FilePath:  h.writeFile(t, "staff.csv", importCSV),
		AdminID:   1,
	})
	require.NoError(t, err)
	ids := imported.Result.AllocatedIDs()
	require.Len(t, ids, 3)

	csv := fmt.Sprintf("Employee ID,New Manager ID\n%d,%d\n%d,%d\n%d,%d\n", ids[1], ids[0], ids[2], ids[0], ids[0], ids[0])
	out, err := h.bulk.Run(ctx, Request{
		Operation: constants.OperationUpdateManagers,
		FilePath:  h.writeFile(t, "managers.csv", csv),
		AdminID:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Summary.SuccessCount)
	require.Len(t, out.Result.Failures, 1)
	assert.Contains(t, out.Result.Failures[0].Reason, "cannot report to themselves")
	assert.Nil(t, out.Leave)

	// a second assignment replaces the first edge
	csv = fmt.Sprintf("employee_id,new_manager_id\n%d,%d\n", ids[1], ids[2])
	_, err = h.bulk.Run(ctx, Request{
		Operation: constants.OperationUpdateManagers,
		FilePath:  h.writeFile(t, "managers2.csv", csv),
		AdminID:   1,
	})
	require.NoError(t, err)
	managers, err := h.repos.Relationships.ManagersOf(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2]}, managers)
}

func TestRun_DeniedBeforeReadingFile(t *testing.T) {
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRViewer)

	out, err := h.bulk.Run(context.Background(), Request{
		Operation: constants.OperationImportEmployees,
		FilePath:  filepath.Join(h.dir, "missing.csv"),
		AdminID:   1,
	})
	require.Error(t, err)
	assert.Equal(t, common.CodePermissionDenied, common.ErrorCode(err))
	assert.Equal(t, "Role 'hr_viewer' does not have permission 'create_employee'", common.ErrorMessage(err))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Nil(t, out.Inspection)

	events := h.auditEvents(t, out.OperationID)
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
	assert.Equal(t, common.ErrorMessage(err), events[0].ErrorMessage)

	_, statErr := os.Stat(h.results)
	assert.True(t, os.IsNotExist(statErr), "no artifacts for a denied run")
}

func TestRun_RowLimitRejectsWholeFile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRAdmin)

	var sb strings.Builder
	sb.WriteString("first_name,last_name,mobile_number,email,employee_no\n")
	for i := 0; i < constants.MaxDataRows+1; i++ {
		fmt.Fprintf(&sb, "Emp,Loyee,2783%07d,e%d@example.com,E%d\n", i, i, i)
	}

	out, err := h.bulk.Run(ctx, Request{
		Operation: constants.OperationImportEmployees,
		FilePath:  h.writeFile(t, "big.csv", sb.String()),
		AdminID:   1,
	})
	require.Error(t, err)
	assert.Equal(t, common.CodeInputError, common.ErrorCode(err))
	assert.Contains(t, common.ErrorMessage(err), "5001")
	assert.Nil(t, out.Result)

	all, err := h.repos.Employees.ListByEmployer(ctx, h.employer)
	require.NoError(t, err)
	assert.Len(t, all, 1, "only the admin exists")

	events := h.auditEvents(t, out.OperationID)
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
}

func TestRun_InputErrors(t *testing.T) {
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRAdmin)

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"missing file", "nope.csv", "", "File not found"},
		{"unsupported extension", "staff.pdf", "x", "Unsupported file format"},
		{"header only", "empty.csv", "first_name,last_name\n", "File is empty"},
		{"missing columns", "partial.csv", "First Name,Last Name\nA,B\n", "Missing required columns: mobile_number, email, employee_no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(h.dir, tt.file)
			if tt.content != "" {
				path = h.writeFile(t, tt.file, tt.content)
			}
			out, err := h.bulk.Run(context.Background(), Request{
				Operation: constants.OperationImportEmployees,
				FilePath:  path,
				AdminID:   1,
			})
			require.Error(t, err)
			assert.Equal(t, common.CodeInputError, common.ErrorCode(err))
			assert.Contains(t, common.ErrorMessage(err), tt.want)
			assert.Len(t, h.auditEvents(t, out.OperationID), 1)
		})
	}
}

func TestRun_InvalidRequest(t *testing.T) {
	h := newHarness(t)

	out, err := h.bulk.Run(context.Background(), Request{Operation: "delete_everyone", FilePath: "x.csv", AdminID: 0})
	require.Error(t, err)
	assert.Equal(t, common.CodeInputError, common.ErrorCode(err))
	assert.Len(t, h.auditEvents(t, out.OperationID), 1)
}

func TestRun_AutoDetectsOperation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRAdmin)

	out, err := h.bulk.Run(ctx, Request{FilePath: h.writeFile(t, "staff.csv", importCSV), AdminID: 1})
	require.NoError(t, err)
	assert.Equal(t, constants.OperationImportEmployees, out.Operation)
	assert.True(t, strings.HasPrefix(out.OperationID, "import_employees_"), out.OperationID)

	events := h.auditEvents(t, out.OperationID)
	require.Len(t, events, 1)
	assert.Equal(t, "bulk_import_employees", events[0].Operation)
	assert.True(t, events[0].Success)
}

func TestRun_AutoAuditsUndetectableFile(t *testing.T) {
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRAdmin)

	out, err := h.bulk.Run(context.Background(), Request{
		Operation: constants.OperationAuto,
		FilePath:  h.writeFile(t, "colors.csv", "Favorite Color\nblue\n"),
		AdminID:   1,
	})
	require.Error(t, err)
	assert.Equal(t, common.CodeInputError, common.ErrorCode(err))
	assert.Contains(t, common.ErrorMessage(err), "Could not determine operation type")
	assert.True(t, strings.HasPrefix(out.OperationID, "bulk_"), out.OperationID)

	events := h.auditEvents(t, out.OperationID)
	require.Len(t, events, 1)
	assert.Equal(t, "bulk_auto", events[0].Operation)
	assert.False(t, events[0].Success)
}

func TestRun_AutoDeniedBeforeReadingFile(t *testing.T) {
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRViewer)

	// the path does not exist, so any read would surface as an input error
	out, err := h.bulk.Run(context.Background(), Request{FilePath: filepath.Join(h.dir, "missing.csv"), AdminID: 1})
	require.Error(t, err)
	assert.Equal(t, common.CodePermissionDenied, common.ErrorCode(err))
	assert.Contains(t, common.ErrorMessage(err), "may not run any bulk operation")
	assert.Nil(t, out.Inspection)
	assert.Len(t, h.auditEvents(t, out.OperationID), 1)
}

func TestRun_AutoChecksDetectedPermission(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAdmin(t, 1, constants.RoleHRManager)

	out, err := h.bulk.Run(ctx, Request{FilePath: h.writeFile(t, "staff.csv", importCSV), AdminID: 1})
	require.Error(t, err)
	assert.Equal(t, common.CodePermissionDenied, common.ErrorCode(err))
	assert.Equal(t, "Role 'hr_manager' does not have permission 'create_employee'", common.ErrorMessage(err))
	assert.Nil(t, out.Result)

	all, err := h.repos.Employees.ListByEmployer(ctx, h.employer)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, h.auditEvents(t, out.OperationID), 1)
}

func TestDetectOperation(t *testing.T) {
	h := newHarness(t)

	op, err := DetectOperation(h.writeFile(t, "m.csv", "Employee ID,Manager ID\n1,2\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, constants.OperationUpdateManagers, op)

	op, err = DetectOperation(h.writeFile(t, "e.csv", importCSV), nil)
	require.NoError(t, err)
	assert.Equal(t, constants.OperationImportEmployees, op)

	_, err = DetectOperation(h.writeFile(t, "x.csv", "Favorite Color\nblue\n"), nil)
	require.Error(t, err)
	assert.Equal(t, common.CodeInputError, common.ErrorCode(err))
}
