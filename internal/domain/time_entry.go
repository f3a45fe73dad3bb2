package domain

import "time"

// TimeEntry is one run of the timer against a Task. A running entry has
// EndTime and DurationSec both nil; a stopped entry has both set, with
// DurationSec = floor(EndTime - StartTime) in whole seconds. An entry
// transitions from running to stopped exactly once.
type TimeEntry struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	UserID      *string    `json:"user_id,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	DurationSec *int64     `json:"duration_sec"`
	Note        *string    `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Running reports whether the entry's timer is still open.
func (e TimeEntry) Running() bool { return e.EndTime == nil }

// TaskReport is the summed tracked time for one task. Running entries do
// not contribute.
type TaskReport struct {
	TaskID       string `json:"task_id"`
	TotalSeconds int64  `json:"total_seconds"`
}
