package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_BasicAndBOM(t *testing.T) {
	in := "\ufeffFirst Name, Surname ,Cell\nthabo,mokoena,0821234567\nlerato,dlamini,\n"
	tbl, err := ReadCSV(strings.NewReader(in), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"First Name", "Surname", "Cell"}, tbl.Headers)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "0821234567", tbl.Value(0, "Cell"))
	assert.Equal(t, "", tbl.Value(1, "Cell"))
	assert.Empty(t, tbl.Warnings)
}

func TestReadCSV_SniffsDelimiter(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"semicolon", "a;b;c\n1;2;3\n"},
		{"tab", "a\tb\tc\n1\t2\t3\n"},
		{"pipe", "a|b|c\n1|2|3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(tt.in), Options{})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, tbl.Headers)
			assert.Equal(t, []string{"1", "2", "3"}, tbl.Rows[0])
		})
	}
}

func TestReadCSV_FitsRaggedRows(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b,c\n1,2\n1,2,3,4\n"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, tbl.Rows[1])
	require.Len(t, tbl.Warnings, 2)
	assert.Equal(t, 2, tbl.Warnings[0].Row)
	assert.Contains(t, tbl.Warnings[0].Message, "padding")
	assert.Equal(t, 3, tbl.Warnings[1].Row)
	assert.Contains(t, tbl.Warnings[1].Message, "truncating")
}

func TestReadCSV_DuplicateAndBlankHeaders(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("name,,name\nx,y,z\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "column_2", "name.1"}, tbl.Headers)
	assert.Len(t, tbl.Warnings, 2)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrEmptyFile)

	tbl, err := ReadCSV(strings.NewReader("a,b\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestReadCSV_RowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("a,b\n")
	for i := 0; i < 5001; i++ {
		fmt.Fprintf(&b, "%d,x\n", i)
	}

	_, err := ReadCSV(strings.NewReader(b.String()), Options{MaxRows: 5000})
	var tooMany *TooManyRowsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 5001, tooMany.Rows)
	assert.Equal(t, "file contains 5001 records. Maximum allowed is 5000.", tooMany.Error())

	tbl, err := ReadCSV(strings.NewReader(b.String()), Options{MaxRows: 5001})
	require.NoError(t, err)
	assert.Equal(t, 5001, tbl.Len())
}

func TestReadFile_Extensions(t *testing.T) {
	_, err := ReadFile(writeFile(t, "people.pdf", "a,b\n"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, "people.tsv", "a,x\tb\n1,2\t3\n")
	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a,x", "b"}, tbl.Headers)
	assert.Equal(t, path, tbl.Path)
}

func TestReadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"First Name", "Last Name", "Mobile"},
		{"Thabo", "Mokoena", "0821234567"},
		{},
		{"Lerato"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(t.TempDir(), "people.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"First Name", "Last Name", "Mobile"}, tbl.Headers)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"Lerato", "", ""}, tbl.Rows[1])
	assert.Empty(t, tbl.Warnings)

	headers, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"First Name", "Last Name", "Mobile"}, headers)
}

func TestReadHeader_IgnoresRowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("Employee ID,Manager ID\n")
	for i := 0; i < 6000; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i+2, 1)
	}
	headers, err := ReadHeader(writeFile(t, "managers.csv", b.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee ID", "Manager ID"}, headers)

	tbl, err := ReadCSV(strings.NewReader(b.String()), Options{HeaderOnly: true})
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())

	_, err = ReadHeader(writeFile(t, "empty.csv", ""))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "N/A", "null", "NaN", "none", "#N/A", "<NA>", "-nan"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", "-", "x"} {
		assert.False(t, IsMissing(v), v)
	}
}
