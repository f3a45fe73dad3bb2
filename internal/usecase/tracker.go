package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timetrack-api/internal/domain"
	"timetrack-api/internal/ports"
)

// Default and hard list limits per entity.
const (
	DefaultProjectLimit = 50
	DefaultTaskLimit    = 100
	DefaultEntryLimit   = 200
)

// Tracker coordinates validation, referential checks and the timer state
// machine against the document store.
type Tracker struct {
	Log   *slog.Logger
	Store ports.Store

	// now is swappable in tests; NewTracker wires the real clock.
	now func() time.Time
}

func NewTracker(log *slog.Logger, store ports.Store) *Tracker {
	return &Tracker{Log: log, Store: store, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

type CreateProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Client      *string `json:"client"`
}

func (t *Tracker) CreateProject(ctx context.Context, in CreateProjectInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", fmt.Errorf("%w: project name is required", domain.ErrValidation)
	}
	id, err := t.Store.InsertProject(ctx, domain.Project{
		Name:        name,
		Description: in.Description,
		Client:      in.Client,
		CreatedAt:   t.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	t.Log.Info("project created", slog.String("id", id), slog.String("name", name))
	return id, nil
}

func (t *Tracker) ListProjects(ctx context.Context, limit int64) ([]domain.Project, error) {
	if limit <= 0 {
		limit = DefaultProjectLimit
	}
	return t.Store.ListProjects(ctx, limit)
}

type CreateTaskInput struct {
	ProjectID   string  `json:"project_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

func (t *Tracker) CreateTask(ctx context.Context, in CreateTaskInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", fmt.Errorf("%w: task name is required", domain.ErrValidation)
	}
	// The project must exist at creation time; it is never re-checked.
	if _, err := t.Store.FindProject(ctx, in.ProjectID); err != nil {
		return "", fmt.Errorf("project %q: %w", in.ProjectID, err)
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = domain.StatusOpen
	}
	id, err := t.Store.InsertTask(ctx, domain.Task{
		ProjectID:   in.ProjectID,
		Name:        name,
		Description: in.Description,
		Status:      status,
		CreatedAt:   t.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	t.Log.Info("task created", slog.String("id", id), slog.String("project_id", in.ProjectID))
	return id, nil
}

// ListTasks filters by project id when given. The filter value is matched
// verbatim: an unknown project id yields an empty list, not an error.
func (t *Tracker) ListTasks(ctx context.Context, projectID string, limit int64) ([]domain.Task, error) {
	if limit <= 0 {
		limit = DefaultTaskLimit
	}
	return t.Store.ListTasks(ctx, projectID, limit)
}

type StartTimerInput struct {
	TaskID string  `json:"task_id"`
	UserID *string `json:"user_id"`
	Note   *string `json:"note"`
}

// StartTimer creates a running entry for an existing task. Nothing prevents
// several timers running at once for the same task or user.
func (t *Tracker) StartTimer(ctx context.Context, in StartTimerInput) (string, error) {
	if _, err := t.Store.FindTask(ctx, in.TaskID); err != nil {
		return "", fmt.Errorf("task %q: %w", in.TaskID, err)
	}
	now := t.now().UTC()
	id, err := t.Store.InsertTimeEntry(ctx, domain.TimeEntry{
		TaskID:    in.TaskID,
		UserID:    in.UserID,
		StartTime: now,
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	t.Log.Info("timer started", slog.String("entry_id", id), slog.String("task_id", in.TaskID))
	return id, nil
}

// StopTimer stops a running entry and returns the updated record. The
// already-stopped pre-check gives the common case its error; the store's
// conditional update is the guard that holds under concurrent stops.
func (t *Tracker) StopTimer(ctx context.Context, entryID string) (domain.TimeEntry, error) {
	entry, err := t.Store.FindTimeEntry(ctx, entryID)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("time entry %q: %w", entryID, err)
	}
	if !entry.Running() {
		return domain.TimeEntry{}, domain.ErrTimerStopped
	}

	end := t.now().UTC()
	durationSec := int64(end.Sub(entry.StartTime) / time.Second)
	if durationSec < 0 {
		durationSec = 0
	}
	stopped, err := t.Store.CloseTimeEntry(ctx, entryID, end, durationSec)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	t.Log.Info("timer stopped",
		slog.String("entry_id", entryID),
		slog.Int64("duration_sec", durationSec))
	return stopped, nil
}

// ListTimeEntries filters by task and/or project. A project filter resolves
// to the project's task-id set; when both filters are supplied they are
// intersected, so a task outside the project yields an empty list.
func (t *Tracker) ListTimeEntries(ctx context.Context, taskID, projectID string, limit int64) ([]domain.TimeEntry, error) {
	if limit <= 0 {
		limit = DefaultEntryLimit
	}
	var taskIDs []string
	if taskID != "" {
		taskIDs = []string{taskID}
	}
	if projectID != "" {
		projectTaskIDs, err := t.Store.TaskIDsByProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if taskID != "" {
			taskIDs = intersect(taskIDs, projectTaskIDs)
		} else {
			taskIDs = projectTaskIDs
		}
		if taskIDs == nil {
			// Distinguish "no filter" from "filter matched no tasks".
			taskIDs = []string{}
		}
	}
	return t.Store.ListTimeEntries(ctx, taskIDs, limit)
}

// TaskReport sums duration_sec over the task's stopped entries. Running
// entries are skipped; an unknown task id reports zero.
func (t *Tracker) TaskReport(ctx context.Context, taskID string) (domain.TaskReport, error) {
	entries, err := t.Store.TimeEntriesByTask(ctx, taskID)
	if err != nil {
		return domain.TaskReport{}, err
	}
	var total int64
	for _, e := range entries {
		if e.DurationSec != nil {
			total += *e.DurationSec
		}
	}
	return domain.TaskReport{TaskID: taskID, TotalSeconds: total}, nil
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
