package entity

import "time"

// LeaveBalance represents one (employee, year, leave type) balance for data transfer between layers.
type LeaveBalance struct {
	EmployeeID    int64     `json:"employee_id"`
	Year          int       `json:"year"`
	LeaveType     string    `json:"leave_type"`
	TotalDays     float64   `json:"total_days"`
	UsedDays      float64   `json:"used_days"`
	PendingDays   float64   `json:"pending_days"`
	RemainingDays float64   `json:"remaining_days"`
	UpdatedAt     time.Time `json:"updated_at"`
}
