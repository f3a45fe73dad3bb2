package domain

import "time"

// Project represents a construction project. Projects are immutable after
// creation; there is no uniqueness constraint on the name.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Client      *string   `json:"client,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
