//go:build e2e

package e2e

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	mstore "timetrack-api/internal/adapter/mongo"
	"timetrack-api/internal/domain"
	"timetrack-api/internal/usecase"
)

func startMongo(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
	}
	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() { _ = mongoC.Terminate(context.Background()) })

	host, err := mongoC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func TestTimerRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	uri := startMongo(t, ctx)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := mstore.NewStore(ctx, uri, "timetrack_e2e", logger)
	if err != nil {
		t.Fatalf("mongo store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	tracker := usecase.NewTracker(logger, store)

	// project -> task -> start -> stop -> entry listed under the project
	projectID, err := tracker.CreateProject(ctx, usecase.CreateProjectInput{Name: "Depot Extension"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	taskID, err := tracker.CreateTask(ctx, usecase.CreateTaskInput{ProjectID: projectID, Name: "Pour slab"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	entryID, err := tracker.StartTimer(ctx, usecase.StartTimerInput{TaskID: taskID})
	if err != nil {
		t.Fatalf("start timer: %v", err)
	}

	stopped, err := tracker.StopTimer(ctx, entryID)
	if err != nil {
		t.Fatalf("stop timer: %v", err)
	}
	if stopped.EndTime == nil || stopped.DurationSec == nil {
		t.Fatalf("expected stopped entry to have end_time and duration_sec: %+v", stopped)
	}
	if *stopped.DurationSec < 0 {
		t.Fatalf("negative duration: %d", *stopped.DurationSec)
	}
	if stopped.EndTime.Before(stopped.StartTime) {
		t.Fatalf("end %v before start %v", stopped.EndTime, stopped.StartTime)
	}

	entries, err := tracker.ListTimeEntries(ctx, "", projectID, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != entryID {
		t.Fatalf("expected the stopped entry under project filter, got %+v", entries)
	}

	report, err := tracker.TaskReport(ctx, taskID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalSeconds != *stopped.DurationSec {
		t.Fatalf("report total %d, want %d", report.TotalSeconds, *stopped.DurationSec)
	}
}

func TestStopIsConditionalAtTheStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	uri := startMongo(t, ctx)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := mstore.NewStore(ctx, uri, "timetrack_e2e", logger)
	if err != nil {
		t.Fatalf("mongo store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	start := time.Now().UTC().Add(-time.Minute)
	entryID, err := store.InsertTimeEntry(ctx, domain.TimeEntry{
		TaskID:    "64f000000000000000000000",
		StartTime: start,
		CreatedAt: start,
	})
	if err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	end := time.Now().UTC()
	if _, err := store.CloseTimeEntry(ctx, entryID, end, 60); err != nil {
		t.Fatalf("first close: %v", err)
	}

	// Simulates the racing loser: the guarded update must refuse a second
	// close even though the caller's pre-check has long passed.
	if _, err := store.CloseTimeEntry(ctx, entryID, end.Add(time.Second), 61); !errors.Is(err, domain.ErrTimerStopped) {
		t.Fatalf("second close: got %v, want ErrTimerStopped", err)
	}
}
