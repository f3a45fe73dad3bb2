package mongo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"timetrack-api/internal/domain"
)

// Collection names in the document store.
const (
	collProjects    = "project"
	collTasks       = "task"
	collTimeEntries = "timeentry"
)

// Store implements ports.Store against a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *slog.Logger
}

// NewStore connects to the document store at uri and pings it before
// returning. Example URI: mongodb://localhost:27017
func NewStore(ctx context.Context, uri, dbName string, log *slog.Logger) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo: connection URI is required")
	}
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetConnectTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(c, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Store{client: client, db: client.Database(dbName), log: log}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping implements ports.Diagnostics.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// DatabaseName implements ports.Diagnostics.
func (s *Store) DatabaseName() string { return s.db.Name() }

// CollectionNames implements ports.Diagnostics.
func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

func (s *Store) InsertProject(ctx context.Context, p domain.Project) (string, error) {
	return s.insert(ctx, collProjects, newProjectRecord(p))
}

func (s *Store) ListProjects(ctx context.Context, limit int64) ([]domain.Project, error) {
	cur, err := s.db.Collection(collProjects).Find(ctx, bson.M{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	var recs []projectRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) FindProject(ctx context.Context, id string) (domain.Project, error) {
	var rec projectRecord
	if err := s.findByID(ctx, collProjects, id, &rec); err != nil {
		return domain.Project{}, err
	}
	return rec.toDomain(), nil
}

func (s *Store) InsertTask(ctx context.Context, t domain.Task) (string, error) {
	return s.insert(ctx, collTasks, newTaskRecord(t))
}

func (s *Store) ListTasks(ctx context.Context, projectID string, limit int64) ([]domain.Task, error) {
	filter := bson.M{}
	if projectID != "" {
		filter["project_id"] = projectID
	}
	cur, err := s.db.Collection(collTasks).Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	var recs []taskRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) FindTask(ctx context.Context, id string) (domain.Task, error) {
	var rec taskRecord
	if err := s.findByID(ctx, collTasks, id, &rec); err != nil {
		return domain.Task{}, err
	}
	return rec.toDomain(), nil
}

func (s *Store) TaskIDsByProject(ctx context.Context, projectID string) ([]string, error) {
	cur, err := s.db.Collection(collTasks).Find(ctx,
		bson.M{"project_id": projectID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var recs []taskRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID.Hex())
	}
	return ids, nil
}

func (s *Store) InsertTimeEntry(ctx context.Context, e domain.TimeEntry) (string, error) {
	return s.insert(ctx, collTimeEntries, newTimeEntryRecord(e))
}

func (s *Store) FindTimeEntry(ctx context.Context, id string) (domain.TimeEntry, error) {
	var rec timeEntryRecord
	if err := s.findByID(ctx, collTimeEntries, id, &rec); err != nil {
		return domain.TimeEntry{}, err
	}
	return rec.toDomain(), nil
}

// CloseTimeEntry stops a running entry. The filter includes end_time: null,
// so the update is a compare-and-swap: of two racing stops exactly one
// matches, and the loser sees domain.ErrTimerStopped.
func (s *Store) CloseTimeEntry(ctx context.Context, id string, end time.Time, durationSec int64) (domain.TimeEntry, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	end = end.UTC()
	update := bson.M{"$set": bson.M{
		"end_time":     end,
		"duration_sec": durationSec,
		"updated_at":   end,
	}}
	var rec timeEntryRecord
	err = s.db.Collection(collTimeEntries).FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "end_time": nil},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the entry does not exist or it was stopped before the
		// update landed. Re-read to tell the two apart.
		if _, ferr := s.FindTimeEntry(ctx, id); ferr != nil {
			return domain.TimeEntry{}, ferr
		}
		return domain.TimeEntry{}, domain.ErrTimerStopped
	}
	if err != nil {
		return domain.TimeEntry{}, err
	}
	return rec.toDomain(), nil
}

func (s *Store) ListTimeEntries(ctx context.Context, taskIDs []string, limit int64) ([]domain.TimeEntry, error) {
	filter := bson.M{}
	if taskIDs != nil {
		// An empty $in array matches nothing, which is the contract for
		// an empty non-nil filter set.
		filter["task_id"] = bson.M{"$in": taskIDs}
	}
	cur, err := s.db.Collection(collTimeEntries).Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	return decodeEntries(ctx, cur)
}

func (s *Store) TimeEntriesByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	cur, err := s.db.Collection(collTimeEntries).Find(ctx, bson.M{"task_id": taskID})
	if err != nil {
		return nil, err
	}
	return decodeEntries(ctx, cur)
}

func (s *Store) insert(ctx context.Context, coll string, rec any) (string, error) {
	res, err := s.db.Collection(coll).InsertOne(ctx, rec)
	if err != nil {
		return "", err
	}
	id := idString(res.InsertedID)
	s.log.Debug("document inserted", slog.String("collection", coll), slog.String("id", id))
	return id, nil
}

func (s *Store) findByID(ctx context.Context, coll, id string, out any) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	err = s.db.Collection(coll).FindOne(ctx, bson.M{"_id": oid}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

func decodeEntries(ctx context.Context, cur *mongo.Cursor) ([]domain.TimeEntry, error) {
	var recs []timeEntryRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDomain())
	}
	return out, nil
}
