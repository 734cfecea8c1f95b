package entity

import "time"

// AuditChanges is the aggregate change set recorded for a bulk run.
type AuditChanges struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
}

// AuditEvent represents an audit log entry for data transfer between layers.
type AuditEvent struct {
	ID           int64        `json:"id,omitempty"`
	AdminID      int64        `json:"admin_id"`
	EmployerID   int64        `json:"employer_id"`
	OperationID  string       `json:"operation_id"`
	Operation    string       `json:"operation"`
	TargetEntity string       `json:"target_entity"`
	TargetID     int64        `json:"target_id"`
	Changes      AuditChanges `json:"changes"`
	Success      bool         `json:"success"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
