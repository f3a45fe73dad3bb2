package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"timetrack-api/internal/domain"
)

// The record types mirror the stored document shape. Conversion to and from
// the domain happens only here, so ObjectID handling and optional-field
// absence stay out of the rest of the codebase.

type projectRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description *string            `bson:"description,omitempty"`
	Client      *string            `bson:"client,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func newProjectRecord(p domain.Project) projectRecord {
	return projectRecord{
		Name:        p.Name,
		Description: p.Description,
		Client:      p.Client,
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

func (r projectRecord) toDomain() domain.Project {
	return domain.Project{
		ID:          r.ID.Hex(),
		Name:        r.Name,
		Description: r.Description,
		Client:      r.Client,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type taskRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProjectID   string             `bson:"project_id"`
	Name        string             `bson:"name"`
	Description *string            `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func newTaskRecord(t domain.Task) taskRecord {
	return taskRecord{
		ProjectID:   t.ProjectID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func (r taskRecord) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID.Hex(),
		ProjectID:   r.ProjectID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type timeEntryRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TaskID      string             `bson:"task_id"`
	UserID      *string            `bson:"user_id,omitempty"`
	StartTime   time.Time          `bson:"start_time"`
	// EndTime is stored as an explicit null while running so the
	// conditional stop filter (end_time: null) can match it.
	EndTime     *time.Time `bson:"end_time"`
	DurationSec *int64     `bson:"duration_sec"`
	Note        *string    `bson:"note,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty"`
}

func newTimeEntryRecord(e domain.TimeEntry) timeEntryRecord {
	return timeEntryRecord{
		TaskID:      e.TaskID,
		UserID:      e.UserID,
		StartTime:   e.StartTime.UTC(),
		EndTime:     utcPtr(e.EndTime),
		DurationSec: e.DurationSec,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   utcPtr(e.UpdatedAt),
	}
}

func (r timeEntryRecord) toDomain() domain.TimeEntry {
	return domain.TimeEntry{
		ID:          r.ID.Hex(),
		TaskID:      r.TaskID,
		UserID:      r.UserID,
		StartTime:   r.StartTime.UTC(),
		EndTime:     utcPtr(r.EndTime),
		DurationSec: r.DurationSec,
		Note:        r.Note,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   utcPtr(r.UpdatedAt),
	}
}

// parseID converts a client-supplied identifier string to an ObjectID,
// mapping parse failures to the shared invalid-id kind.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return oid, nil
}

func idString(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
