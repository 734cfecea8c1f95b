package matching

import (
	"github.com/joseph-ayodele/hr-bulk/constants"
)

// Entry lists the textual variants a canonical field is known by.
type Entry struct {
	Field    constants.Field `yaml:"field" json:"field"`
	Variants []string        `yaml:"variants" json:"variants"`
}

// Dictionary is an ordered list of entries. Order matters: it is the tie-break order.
type Dictionary []Entry

// Fields returns the canonical fields in dictionary order.
func (d Dictionary) Fields() []constants.Field {
	out := make([]constants.Field, 0, len(d))
	for _, e := range d {
		out = append(out, e.Field)
	}
	return out
}

// Variants returns every variant with the field it belongs to, in dictionary order.
func (d Dictionary) Variants() ([]string, []constants.Field) {
	var variants []string
	var fields []constants.Field
	for _, e := range d {
		for _, v := range e.Variants {
			variants = append(variants, v)
			fields = append(fields, e.Field)
		}
	}
	return variants, fields
}

// Dictionaries holds one dictionary per operation.
type Dictionaries map[constants.Operation]Dictionary

// For returns the dictionary for op, falling back to the built-in one.
func (d Dictionaries) For(op constants.Operation) Dictionary {
	if dict, ok := d[op]; ok && len(dict) > 0 {
		return dict
	}
	return DefaultDictionaries()[op]
}

// DefaultDictionaries returns fresh copies of the built-in dictionaries.
func DefaultDictionaries() Dictionaries {
	return Dictionaries{
		constants.OperationImportEmployees: EmployeeDictionary(),
		constants.OperationUpdateManagers:  ManagerDictionary(),
	}
}

// EmployeeDictionary is the built-in table for employee creation files.
func EmployeeDictionary() Dictionary {
	return Dictionary{
		{Field: constants.FieldFirstName, Variants: []string{
			"first name", "firstname", "first_name", "given name", "givenname", "given_name",
			"fname", "forename", "forenames", "christian name", "name", "first",
		}},
		{Field: constants.FieldLastName, Variants: []string{
			"last name", "lastname", "last_name", "surname", "family name", "familyname",
			"family_name", "lname", "last", "second name",
		}},
		{Field: constants.FieldMobileNumber, Variants: []string{
			"mobile", "mobile number", "mobile_number", "mobile no", "mobile phone", "cell",
			"cellphone", "cell phone", "cell no", "cell number", "phone", "phone number",
			"contact", "contact number", "telephone", "tel", "msisdn",
		}},
		{Field: constants.FieldEmail, Variants: []string{
			"email", "e-mail", "email address", "e-mail address", "email_address", "work email",
			"contact email", "mail", "electronic mail", "emailaddress", "email id",
		}},
		{Field: constants.FieldEmployeeNo, Variants: []string{
			"employee no", "employee number", "employee_number", "employee_no", "emp no",
			"emp number", "emp_no", "staff number", "staff no", "employee id", "emp id",
			"staff id", "personnel number", "badge number", "payroll number",
		}},
		{Field: constants.FieldSalary, Variants: []string{
			"salary", "annual salary", "monthly salary", "basic salary", "pay", "compensation",
			"wage", "wages", "monthly pay", "annual pay", "remuneration", "package", "gross pay",
		}},
	}
}

// ManagerDictionary is the built-in table for manager update files.
func ManagerDictionary() Dictionary {
	return Dictionary{
		{Field: constants.FieldEmployeeID, Variants: []string{
			"employee id", "employee_id", "emp id", "emp_id", "staff id", "employee",
		}},
		{Field: constants.FieldNewManagerID, Variants: []string{
			"new manager id", "new_manager_id", "manager id", "manager_id", "new manager",
			"manager", "reports to", "supervisor id",
		}},
	}
}
