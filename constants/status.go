package constants

// EmployeeStatus is the lifecycle state stored on employees.status.
type EmployeeStatus string

// Stable values (store these exact strings in DB).
const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusInactive   EmployeeStatus = "inactive"
	EmployeeStatusTerminated EmployeeStatus = "terminated" // soft delete
)

// OutcomeStatus labels a successful per-record mutation.
type OutcomeStatus string

const (
	OutcomeCreated     OutcomeStatus = "created"
	OutcomeUpdated     OutcomeStatus = "updated"
	OutcomeInitialized OutcomeStatus = "initialized"
)

// UploadStatus is the canonical status for rows in import_uploads.
type UploadStatus string

const (
	UploadStatusQueued  UploadStatus = "QUEUED"  // staged, waiting for a worker
	UploadStatusRunning UploadStatus = "RUNNING" // pipeline in progress
	UploadStatusDone    UploadStatus = "DONE"    // pipeline finished, see artifacts
	UploadStatusFailed  UploadStatus = "FAILED"  // terminal failure
)
