package inspect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/tabular"
)

const sampleCSV = `First Name,Surname,Cellphone Number,Email,Staff No,Salary,Favorite Color
Thabo,Mokoena,+27 82 123 4567,thabo@example.com,E1,R 20 000,blue
Lerato,Dlamini,0821234568,lerato.example.com,E2,,green
Thabo,Mokoena,+27 82 123 4567,thabo@example.com,E1,R 20 000,blue
,,,,,,
Sipho,,27821234569,sipho@example.co.za,E4,31000,N/A
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staff.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func TestInspect_Report(t *testing.T) {
	rep := NewInspector(nil, nil).Inspect(context.Background(), writeSample(t))
	require.True(t, rep.Success, rep.Error)

	assert.Equal(t, 5, rep.TotalRows)
	assert.Equal(t, 7, rep.TotalColumns)
	assert.Equal(t, "Cellphone Number", rep.SuggestedMappings[constants.FieldMobileNumber].Column)
	assert.Equal(t, "Staff No", rep.SuggestedMappings[constants.FieldEmployeeNo].Column)
	assert.Equal(t, []string{"Favorite Color"}, rep.Unmapped)

	assert.Equal(t, DataQuality{
		TotalMissingValues: 7 + 1 + 1 + 1, // empty row, blank salary, blank surname, N/A colour
		RowsWithMissing:    3,
		DuplicateRows:      1,
		EmptyRows:          1,
	}, rep.DataQuality)
}

func TestInspect_ColumnStats(t *testing.T) {
	rep := NewInspector(nil, nil).Inspect(context.Background(), writeSample(t))
	require.True(t, rep.Success)

	byName := map[string]ColumnStats{}
	for _, cs := range rep.ColumnStats {
		byName[cs.Name] = cs
	}
	first := byName["First Name"]
	assert.Equal(t, "string", first.DataType)
	assert.Equal(t, 1, first.MissingCount)
	assert.InDelta(t, 20.0, first.MissingPercentage, 1e-9)
	assert.Equal(t, 3, first.UniqueValues)
	assert.Equal(t, []string{"Thabo", "Lerato", "Thabo"}, first.SampleValues)

	assert.Equal(t, "string", byName["Salary"].DataType)
	assert.Equal(t, "empty", func() string {
		tbl := &tabular.Table{Headers: []string{"x"}, Rows: [][]string{{""}, {"null"}}}
		return NewInspector(nil, nil).InspectTable(tbl).ColumnStats[0].DataType
	}())
}

func TestInspect_CleaningPreview(t *testing.T) {
	rep := NewInspector(nil, nil).Inspect(context.Background(), writeSample(t))
	require.Len(t, rep.CleaningNeeded, 2)

	mobile := rep.CleaningNeeded[0]
	assert.Equal(t, constants.FieldMobileNumber, mobile.Field)
	assert.Equal(t, "Mobile numbers contain formatting (spaces, dashes, +) or wrong length", mobile.Issue)
	assert.LessOrEqual(t, len(mobile.Samples), 3)

	email := rep.CleaningNeeded[1]
	assert.Equal(t, constants.FieldEmail, email.Field)
	assert.Equal(t, "Some email addresses may be invalid", email.Issue)
}

func TestInspect_CleanFileNeedsNothing(t *testing.T) {
	tbl, err := tabular.ReadCSV(strings.NewReader("mobile,email\n27821234567,a@b.co\n27821234568,c@d.co\n"), tabular.Options{})
	require.NoError(t, err)
	rep := NewInspector(nil, nil).InspectTable(tbl)
	assert.Empty(t, rep.CleaningNeeded)
	assert.Equal(t, "integer", rep.ColumnStats[0].DataType)
}

func TestInspect_MissingFile(t *testing.T) {
	rep := NewInspector(nil, nil).Inspect(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.False(t, rep.Success)
	assert.Contains(t, rep.Error, "nope.csv")
}

func TestInspect_UsesGivenMatcher(t *testing.T) {
	tbl := &tabular.Table{Headers: []string{"employee_id", "new_manager_id"}, Rows: [][]string{{"1", "2"}}}
	rep := NewInspector(matching.NewMatcher(matching.ManagerDictionary()), nil).InspectTable(tbl)
	assert.True(t, rep.SuggestedMappings.Has(constants.FieldEmployeeID, constants.FieldNewManagerID))
	assert.Empty(t, rep.Unmapped)
}
