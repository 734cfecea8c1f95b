package tabular

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

// ReadFile reads a CSV/TSV/TXT or XLSX file, choosing the reader by extension.
func ReadFile(path string, opts Options) (*Table, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	var (
		t   *Table
		err error
	)
	if constants.IsSpreadsheet(ext) {
		t, err = readXLSX(path, opts)
	} else {
		if ext == "tsv" && opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		t, err = ReadCSV(f, opts)
	}
	if err != nil {
		return nil, err
	}
	t.Path = path
	return t, nil
}

// ReadHeader returns only the normalized header row of path.
func ReadHeader(path string) ([]string, error) {
	t, err := ReadFile(path, Options{HeaderOnly: true})
	if err != nil {
		return nil, err
	}
	return t.Headers, nil
}
