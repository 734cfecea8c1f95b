package matching

import (
	"errors"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

// ErrUndeterminedOperation is returned when neither operation's key columns are present.
var ErrUndeterminedOperation = errors.New("could not determine operation type from CSV columns")

// DetectOperation infers the bulk operation from a header row. Manager updates win when
// both of their id columns are present; otherwise first and last name columns mean an import.
func DetectOperation(headers []string, dicts Dictionaries) (constants.Operation, error) {
	if dicts == nil {
		dicts = DefaultDictionaries()
	}
	mgr := NewMatcher(dicts.For(constants.OperationUpdateManagers)).Match(headers)
	if mgr.Mapping.Has(constants.FieldEmployeeID, constants.FieldNewManagerID) {
		return constants.OperationUpdateManagers, nil
	}
	emp := NewMatcher(dicts.For(constants.OperationImportEmployees)).Match(headers)
	if emp.Mapping.Has(constants.FieldFirstName, constants.FieldLastName) {
		return constants.OperationImportEmployees, nil
	}
	return "", ErrUndeterminedOperation
}
