package constants

import "strings"

// AllowedExtensions holds the tabular file extensions accepted for bulk operations.
var AllowedExtensions = map[string]struct{}{
	"csv":  {},
	"tsv":  {},
	"txt":  {},
	"xlsx": {},
}

// MaxDataRows is the largest number of data rows a bulk file may carry.
const MaxDataRows = 5000

// DefaultBatchSize is the number of records mutated per batch.
const DefaultBatchSize = 100

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSpreadsheet reports whether ext is an Excel workbook.
func IsSpreadsheet(ext string) bool {
	return NormalizeExt(ext) == "xlsx"
}
