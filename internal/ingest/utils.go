package ingest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

// AllowedExt checks if a file extension is one the tabular readers accept.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// EmployerFromPath extracts the employer id from <inbox>/<employer_id>/.../file.
func EmployerFromPath(inbox, path string) (int64, error) {
	rel, err := filepath.Rel(inbox, path)
	if err != nil {
		return 0, fmt.Errorf("path %s is not under inbox %s: %w", path, inbox, err)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == ".." {
		return 0, fmt.Errorf("path %s is not inside an employer directory of %s", path, inbox)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("directory %q is not an employer id", parts[0])
	}
	return id, nil
}
