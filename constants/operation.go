package constants

import "strings"

// Operation names a bulk pipeline operation.
type Operation string

const (
	OperationImportEmployees Operation = "import_employees"
	OperationUpdateManagers  Operation = "update_managers"

	// OperationAuto asks the pipeline to infer the operation from the file's columns
	// once the caller is authorized.
	OperationAuto Operation = "auto"

	// OperationInitializeLeave is run by the pipeline after imports; callers cannot request it.
	OperationInitializeLeave Operation = "initialize_leave_balances"
)

// Operations lists the supported operations in a stable order.
var Operations = []Operation{
	OperationImportEmployees,
	OperationUpdateManagers,
}

// Optional: common synonyms -> canonical operation (lowercased keys).
var operationSynonyms = map[string]Operation{
	"import":           OperationImportEmployees,
	"import_employees": OperationImportEmployees,
	"employee_create":  OperationImportEmployees,
	"create_employees": OperationImportEmployees,
	"update_managers":  OperationUpdateManagers,
	"manager_update":   OperationUpdateManagers,
	"managers":         OperationUpdateManagers,
	"auto":             OperationAuto,
	"detect":           OperationAuto,
}

// ParseOperation maps user input to a canonical Operation.
func ParseOperation(input string) (Operation, bool) {
	key := strings.ToLower(strings.TrimSpace(input))
	key = strings.ReplaceAll(key, "-", "_")
	op, ok := operationSynonyms[key]
	return op, ok
}

// RequiredFields returns the canonical fields a record must carry for op.
func (o Operation) RequiredFields() []Field {
	switch o {
	case OperationImportEmployees:
		return []Field{FieldFirstName, FieldLastName, FieldMobileNumber, FieldEmail, FieldEmployeeNo}
	case OperationUpdateManagers:
		return []Field{FieldEmployeeID, FieldNewManagerID}
	default:
		return nil
	}
}

// Fields returns the canonical fields written to result tables for op.
func (o Operation) Fields() []Field {
	switch o {
	case OperationImportEmployees:
		return EmployeeFields
	case OperationUpdateManagers:
		return ManagerFields
	default:
		return nil
	}
}

// AuditName is the operation name recorded in the audit log.
func (o Operation) AuditName() string {
	return "bulk_" + string(o)
}

// IsAuto reports whether o leaves the operation to be detected. The zero value counts.
func (o Operation) IsAuto() bool { return o == "" || o == OperationAuto }

func (o Operation) Valid() bool {
	return o == OperationImportEmployees || o == OperationUpdateManagers
}

func (o Operation) String() string { return string(o) }
