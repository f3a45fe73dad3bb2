// Package memory holds an in-process implementation of the store gateway.
// It mirrors the document-store contract, including ObjectID-shaped ids,
// and backs the unit and handler tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"timetrack-api/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
	tasks    map[string]domain.Task
	entries  map[string]domain.TimeEntry

	// insertion order per collection, for stable listings
	projectOrder []string
	taskOrder    []string
	entryOrder   []string

	// PingErr simulates a connectivity failure in diagnostics.
	PingErr error
}

func NewStore() *Store {
	return &Store{
		projects: make(map[string]domain.Project),
		tasks:    make(map[string]domain.Task),
		entries:  make(map[string]domain.TimeEntry),
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.PingErr }

func (s *Store) DatabaseName() string { return "memory" }

func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	if s.PingErr != nil {
		return nil, s.PingErr
	}
	return []string{"project", "task", "timeentry"}, nil
}

func (s *Store) InsertProject(ctx context.Context, p domain.Project) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID().Hex()
	s.projects[p.ID] = p
	s.projectOrder = append(s.projectOrder, p.ID)
	return p.ID, nil
}

func (s *Store) ListProjects(ctx context.Context, limit int64) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, s.projects[id])
	}
	return out, nil
}

func (s *Store) FindProject(ctx context.Context, id string) (domain.Project, error) {
	if err := checkID(id); err != nil {
		return domain.Project{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *Store) InsertTask(ctx context.Context, t domain.Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = primitive.NewObjectID().Hex()
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	return t.ID, nil
}

func (s *Store) ListTasks(ctx context.Context, projectID string, limit int64) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		t := s.tasks[id]
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) FindTask(ctx context.Context, id string) (domain.Task, error) {
	if err := checkID(id); err != nil {
		return domain.Task{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrNotFound
	}
	return t, nil
}

func (s *Store) TaskIDsByProject(ctx context.Context, projectID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0)
	for _, id := range s.taskOrder {
		if s.tasks[id].ProjectID == projectID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) InsertTimeEntry(ctx context.Context, e domain.TimeEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = primitive.NewObjectID().Hex()
	s.entries[e.ID] = e
	s.entryOrder = append(s.entryOrder, e.ID)
	return e.ID, nil
}

func (s *Store) FindTimeEntry(ctx context.Context, id string) (domain.TimeEntry, error) {
	if err := checkID(id); err != nil {
		return domain.TimeEntry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	return e, nil
}

func (s *Store) CloseTimeEntry(ctx context.Context, id string, end time.Time, durationSec int64) (domain.TimeEntry, error) {
	if err := checkID(id); err != nil {
		return domain.TimeEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	if e.EndTime != nil {
		return domain.TimeEntry{}, domain.ErrTimerStopped
	}
	end = end.UTC()
	e.EndTime = &end
	e.DurationSec = &durationSec
	e.UpdatedAt = &end
	s.entries[id] = e
	return e, nil
}

func (s *Store) ListTimeEntries(ctx context.Context, taskIDs []string, limit int64) ([]domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var allowed map[string]struct{}
	if taskIDs != nil {
		allowed = make(map[string]struct{}, len(taskIDs))
		for _, id := range taskIDs {
			allowed[id] = struct{}{}
		}
	}
	out := make([]domain.TimeEntry, 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if allowed != nil {
			if _, ok := allowed[e.TaskID]; !ok {
				continue
			}
		}
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) TimeEntriesByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TimeEntry, 0)
	for _, id := range s.entryOrder {
		if e := s.entries[id]; e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func checkID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return nil
}
