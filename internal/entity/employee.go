package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee represents an employee node for data transfer between layers.
type Employee struct {
	ID           int64               `json:"id"`
	UUID         string              `json:"uuid"`
	EmployerID   int64               `json:"employer_id"`
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	MobileNumber string              `json:"mobile_number"`
	Email        string              `json:"email"`
	EmployeeNo   string              `json:"employee_no"`
	Salary       decimal.NullDecimal `json:"salary"`
	Role         string              `json:"role"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// FullName joins first and last name.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
