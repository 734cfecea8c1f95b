package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/inspect"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func sqliteEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", filepath.Join(dir, "hr.db"))
	t.Setenv("PIPELINE_RESULTS_DIR", filepath.Join(dir, "results"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestCLI_ImportFlow(t *testing.T) {
	dir := sqliteEnv(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	out, err = execute(t, "employer", "add", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "employer 1 created: Acme\n", out)

	out, err = execute(t, "employer", "add-admin", "--employer", "1", "--first", "Ada", "--last", "Admin", "--mobile", "082 555 0100")
	require.NoError(t, err)
	assert.Contains(t, out, "admin 1 created (hr_admin, employer 1)")

	file := filepath.Join(dir, "staff.csv")
	require.NoError(t, os.WriteFile(file, []byte("First Name,Last Name,Mobile,Email,Employee No\n"+
		"Thabo,Mokoena,0825550101,thabo@example.co.za,E1\n"+
		"Naledi,Dube,0825550102,not-an-email,E2\n"), 0o644))

	out, err = execute(t, "import", file, "--admin", "1", "--json")
	require.NoError(t, err)
	var got struct {
		Summary   report.Summary `json:"summary"`
		Artifacts []string       `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Summary.Total)
	assert.Equal(t, 1, got.Summary.SuccessCount)
	assert.Len(t, got.Artifacts, 3)

	out, err = execute(t, "health")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestCLI_ImportDenied(t *testing.T) {
	dir := sqliteEnv(t)
	_, err := execute(t, "migrate")
	require.NoError(t, err)
	_, err = execute(t, "employer", "add", "Acme")
	require.NoError(t, err)
	_, err = execute(t, "employer", "add-admin", "--employer", "1", "--first", "Vee", "--mobile", "0825550100", "--role", "hr_viewer")
	require.NoError(t, err)

	_, err = execute(t, "import", filepath.Join(dir, "absent.csv"), "--admin", "1")
	require.Error(t, err)
	assert.Equal(t, common.CodePermissionDenied, common.ErrorCode(err))
}

func TestCLI_InspectNeedsNoStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "postgres://unused")
	t.Setenv("LOG_LEVEL", "error")

	file := filepath.Join(dir, "managers.csv")
	require.NoError(t, os.WriteFile(file, []byte("Employee ID,Manager ID,Favorite Color\n1,2,blue\n"), 0o644))

	out, err := execute(t, "inspect", file, "--json")
	require.NoError(t, err)
	var rep inspect.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Success)
	assert.Equal(t, "Employee ID", rep.SuggestedMappings[constants.FieldEmployeeID].Column)
	assert.Equal(t, []string{"Favorite Color"}, rep.Unmapped)

	_, err = execute(t, "inspect", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(common.LogConfig{Level: "warn", Format: "text"}, &buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	l = newLogger(common.LogConfig{Level: "debug", Format: "json"}, &buf)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
	l.Debug("dbg")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestResolveOperation(t *testing.T) {
	dir := t.TempDir()
	mgr := filepath.Join(dir, "m.csv")
	require.NoError(t, os.WriteFile(mgr, []byte("employee_id,new_manager_id\n1,2\n"), 0o644))

	op, err := resolveOperation("", mgr, matching.DefaultDictionaries())
	require.NoError(t, err)
	assert.Equal(t, constants.OperationUpdateManagers, op)

	op, err = resolveOperation("import", mgr, nil)
	require.NoError(t, err)
	assert.Equal(t, constants.OperationImportEmployees, op)

	_, err = resolveOperation("fire_everyone", mgr, nil)
	assert.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	s := renderSummary(report.Summary{
		OperationID:  "import_employees_20261017_093000_abcd1234",
		Operation:    constants.OperationImportEmployees,
		Total:        4,
		SuccessCount: 3,
		FailureCount: 1,
		SuccessRate:  75,
		Examples:     []string{"Row 3 (validation): email: Missing @ symbol"},
	}, []string{"results/a_success.csv"})

	for _, want := range []string{"Bulk Operation Summary", "75.0%", "Row 3 (validation)", "results/a_success.csv"} {
		assert.Contains(t, s, want)
	}
}
