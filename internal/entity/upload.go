package entity

import (
	"time"
)

// Upload represents a staged bulk file for data transfer between layers.
type Upload struct {
	ID          string    `json:"id"`
	EmployerID  int64     `json:"employer_id"`
	SourcePath  string    `json:"source_path"`
	Filename    string    `json:"filename"`
	FileExt     string    `json:"file_ext"`
	FileSize    int64     `json:"file_size"`
	ContentHash []byte    `json:"content_hash"`
	Status      string    `json:"status"`
	OperationID string    `json:"operation_id,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
