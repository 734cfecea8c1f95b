package constants

// Field is a canonical column name that arbitrary source headers are mapped onto.
type Field string

// Stable values (used as report column headers and mapping keys).
const (
	FieldFirstName    Field = "first_name"
	FieldLastName     Field = "last_name"
	FieldMobileNumber Field = "mobile_number"
	FieldEmail        Field = "email"
	FieldEmployeeNo   Field = "employee_no"
	FieldSalary       Field = "salary"
	FieldEmployeeID   Field = "employee_id"
	FieldNewManagerID Field = "new_manager_id"
)

// EmployeeFields is the column order used for employee creation tables.
var EmployeeFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldMobileNumber,
	FieldEmail,
	FieldEmployeeNo,
	FieldSalary,
}

// ManagerFields is the column order used for manager update tables.
var ManagerFields = []Field{
	FieldEmployeeID,
	FieldNewManagerID,
}

func (f Field) String() string { return string(f) }
