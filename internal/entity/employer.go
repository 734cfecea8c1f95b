package entity

import "time"

// Employer represents a tenant for data transfer between layers.
type Employer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
