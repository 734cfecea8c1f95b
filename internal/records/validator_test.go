package records

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/tabular"
)

func employeeMapping() matching.Mapping {
	return matching.Mapping{
		constants.FieldFirstName:    {Column: "First Name", Score: 1},
		constants.FieldLastName:     {Column: "Surname", Score: 1},
		constants.FieldMobileNumber: {Column: "Cell", Score: 1},
		constants.FieldEmail:        {Column: "Email", Score: 1},
		constants.FieldEmployeeNo:   {Column: "Emp No", Score: 1},
		constants.FieldSalary:       {Column: "Salary", Score: 1},
	}
}

func employeeTable(t *testing.T, rows ...string) *tabular.Table {
	t.Helper()
	body := "First Name,Surname,Cell,Email,Emp No,Salary\n" + strings.Join(rows, "\n") + "\n"
	tbl, err := tabular.ReadCSV(strings.NewReader(body), tabular.Options{})
	require.NoError(t, err)
	return tbl
}

func newValidator() *Validator {
	return NewValidator(cleaning.NewPhoneCleaner("ZA"), nil)
}

func TestFromTable_RowNumbers(t *testing.T) {
	tbl := employeeTable(t,
		"thabo,mokoena,0821234567,t@x.co.za,E1,",
		"lerato,dlamini,0821234568,l@x.co.za,E2,",
	)
	recs := FromTable(tbl)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Row)
	assert.Equal(t, 3, recs[1].Row)
	assert.Equal(t, "lerato", recs[1].Get("First Name"))
	assert.Equal(t, "", recs[1].Get("Unknown"))
}

func TestClean_ImportEmployees(t *testing.T) {
	tbl := employeeTable(t,
		"thabo,mokoena,082 123 4567,Thabo@X.co.za,E1,\"R 25,000.50\"",
		"lerato,dlamini,12345,lerato.x.co.za,E2,",
		"sipho,,0821234569,s@x.co.za,E3,N/A",
		"zanele,khumalo,821234570,z@x.co.za,E4,30000",
	)
	p := newValidator().Clean(constants.OperationImportEmployees, FromTable(tbl), employeeMapping())

	assert.Equal(t, 2, p.CleanCount)
	assert.Equal(t, 2, p.FailedCount)
	assert.Equal(t, 4, p.Total())
	assert.Equal(t, 50.0, p.SuccessRate)

	first := p.Cleaned[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "Thabo", first.FirstName)
	assert.Equal(t, "Mokoena", first.LastName)
	assert.Equal(t, "27821234567", first.MobileNumber)
	assert.Equal(t, "E1", first.EmployeeNo)
	require.True(t, first.Salary.Valid)
	assert.Equal(t, "25000.5", first.Salary.Decimal.String())
	assert.Empty(t, first.Warnings)

	repaired := p.Cleaned[1]
	assert.Equal(t, 5, repaired.Row)
	assert.Equal(t, "27821234570", repaired.MobileNumber)
	require.Len(t, repaired.Warnings, 1)
	assert.Contains(t, repaired.Warnings[0], "mobile_number: ")

	bad := p.Failed[0]
	assert.Equal(t, 3, bad.Row)
	require.Len(t, bad.Errors, 2)
	assert.Equal(t, constants.FieldMobileNumber, bad.Errors[0].Field)
	assert.Equal(t, cleaning.CodeInvalidFormat, bad.Errors[0].Code)
	assert.Equal(t, constants.FieldEmail, bad.Errors[1].Field)
	assert.Equal(t, "email: Missing @ symbol", bad.Errors[1].String())
	assert.Equal(t, "lerato", bad.Original.Get("First Name"))
	assert.Equal(t, "Lerato", bad.Partial.FirstName)

	noSurname := p.Failed[1]
	assert.Equal(t, 4, noSurname.Row)
	require.Len(t, noSurname.Errors, 1)
	assert.Equal(t, "last_name: Missing name", noSurname.Reason())
}

func TestClean_MissingRequiredMappedColumn(t *testing.T) {
	mapping := employeeMapping()
	delete(mapping, constants.FieldEmployeeNo)
	delete(mapping, constants.FieldEmail)

	tbl := employeeTable(t, "thabo,mokoena,0821234567,t@x.co.za,E1,")
	p := newValidator().Clean(constants.OperationImportEmployees, FromTable(tbl), mapping)

	require.Len(t, p.Failed, 1)
	require.Len(t, p.Failed[0].Errors, 1)
	assert.Equal(t, CodeMissingRequired, p.Failed[0].Errors[0].Code)
	assert.Equal(t, "Missing required: email, employee_no", p.Failed[0].Reason())
}

func TestClean_PartitionIsComplete(t *testing.T) {
	rows := []string{
		"a1,b1,0821111111,a@x.co.za,E1,",
		"a2,,0821111112,a2@x.co.za,E2,",
		",,,,,",
		"a4,b4,abc,a4@x.co.za,E4,oops",
		"a5,b5,0821111115,a5@x.co.za,E5,1000",
	}
	recs := FromTable(employeeTable(t, rows...))
	p := newValidator().Clean(constants.OperationImportEmployees, recs, employeeMapping())

	assert.Equal(t, len(recs), p.CleanCount+p.FailedCount)
	seen := map[int]int{}
	for _, c := range p.Cleaned {
		seen[c.Row]++
	}
	for _, f := range p.Failed {
		seen[f.Row]++
		assert.NotEmpty(t, f.Errors)
	}
	for _, r := range recs {
		assert.Equal(t, 1, seen[r.Row], "row %d", r.Row)
	}
}

func TestClean_UpdateManagers(t *testing.T) {
	body := "Employee ID,Manager ID\n12,7\n7,abc\n8.0,3\n0,4\n"
	tbl, err := tabular.ReadCSV(strings.NewReader(body), tabular.Options{})
	require.NoError(t, err)
	mapping := matching.Mapping{
		constants.FieldEmployeeID:   {Column: "Employee ID", Score: 1},
		constants.FieldNewManagerID: {Column: "Manager ID", Score: 1},
	}

	p := newValidator().Clean(constants.OperationUpdateManagers, FromTable(tbl), mapping)
	require.Equal(t, 2, p.CleanCount)
	assert.Equal(t, int64(12), p.Cleaned[0].EmployeeID)
	assert.Equal(t, int64(7), p.Cleaned[0].NewManagerID)
	assert.Equal(t, int64(8), p.Cleaned[1].EmployeeID)

	require.Equal(t, 2, p.FailedCount)
	assert.Equal(t, "new_manager_id: Not a valid integer: abc", p.Failed[0].Reason())
	assert.Equal(t, "employee_id: Must be a positive integer: 0", p.Failed[1].Reason())
}

func TestClean_Empty(t *testing.T) {
	p := newValidator().Clean(constants.OperationImportEmployees, nil, employeeMapping())
	assert.Zero(t, p.Total())
	assert.Zero(t, p.SuccessRate)
}

func TestCleanedRecord_Value(t *testing.T) {
	c := CleanedRecord{FirstName: "Thabo", EmployeeID: 4}
	assert.Equal(t, "Thabo", c.Value(constants.FieldFirstName))
	assert.Equal(t, "4", c.Value(constants.FieldEmployeeID))
	assert.Equal(t, "", c.Value(constants.FieldSalary))
	assert.Equal(t, []constants.Field{constants.FieldNewManagerID}, c.Missing([]constants.Field{constants.FieldEmployeeID, constants.FieldNewManagerID}))
}
