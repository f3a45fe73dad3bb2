package ports

import (
	"context"
	"time"

	"timetrack-api/internal/domain"
)

// Store is the document-store gateway. Identifiers cross this boundary as
// strings; implementations parse them and return domain.ErrInvalidID for
// strings that are not well-formed store ids.
//
// List filters that take a plain string (projectID, taskID) match the
// stored field verbatim: an unknown value yields an empty result, not an
// error.
type Store interface {
	InsertProject(ctx context.Context, p domain.Project) (string, error)
	ListProjects(ctx context.Context, limit int64) ([]domain.Project, error)
	FindProject(ctx context.Context, id string) (domain.Project, error)

	InsertTask(ctx context.Context, t domain.Task) (string, error)
	ListTasks(ctx context.Context, projectID string, limit int64) ([]domain.Task, error)
	FindTask(ctx context.Context, id string) (domain.Task, error)
	// TaskIDsByProject returns the ids of all tasks under a project,
	// stringified, with no limit.
	TaskIDsByProject(ctx context.Context, projectID string) ([]string, error)

	InsertTimeEntry(ctx context.Context, e domain.TimeEntry) (string, error)
	FindTimeEntry(ctx context.Context, id string) (domain.TimeEntry, error)
	// CloseTimeEntry sets end time, duration and updated-at on a running
	// entry and returns the updated record. The update is conditional on
	// the entry still running; a stopped entry yields
	// domain.ErrTimerStopped even when racing another stop.
	CloseTimeEntry(ctx context.Context, id string, end time.Time, durationSec int64) (domain.TimeEntry, error)
	// ListTimeEntries filters by task id. A nil taskIDs means no filter;
	// an empty non-nil slice matches nothing.
	ListTimeEntries(ctx context.Context, taskIDs []string, limit int64) ([]domain.TimeEntry, error)
	// TimeEntriesByTask returns every entry for a task, with no limit.
	TimeEntriesByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error)
}

// Diagnostics exposes best-effort connectivity information for the /test
// endpoint.
type Diagnostics interface {
	Ping(ctx context.Context) error
	DatabaseName() string
	CollectionNames(ctx context.Context) ([]string, error)
}
