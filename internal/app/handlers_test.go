package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetrack-api/internal/adapter/memory"
	"timetrack-api/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewWithStore(log, store, store)
	ts := httptest.NewServer(a.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeID(t *testing.T, data []byte) string {
	t.Helper()
	var payload idResponse
	require.NoError(t, json.Unmarshal(data, &payload), "body=%s", data)
	require.NotEmpty(t, payload.ID)
	return payload.ID
}

func decodeDetail(t *testing.T, data []byte) string {
	t.Helper()
	var payload struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(data, &payload), "body=%s", data)
	return payload.Detail
}

func createProject(t *testing.T, ts *httptest.Server, name string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/projects", map[string]any{"name": name})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body=%s", body)
	return decodeID(t, body)
}

func createTask(t *testing.T, ts *httptest.Server, projectID, name string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", map[string]any{
		"project_id": projectID,
		"name":       name,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body=%s", body)
	return decodeID(t, body)
}

func TestRoot(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "Construction Time Tracking API", payload["message"])
}

func TestTestEndpoint_ReportsConnectivity(t *testing.T) {
	ts, store := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/test", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "running", payload["backend"])
	assert.Equal(t, "connected", payload["connection_status"])
	assert.Equal(t, "memory", payload["database_name"])

	// Connectivity failures are reported, never surfaced as an error.
	store.PingErr = assert.AnError
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/test", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "not connected", payload["connection_status"])
}

func TestCreateProject_Validation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/projects", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, decodeDetail(t, body))

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/projects", map[string]any{"bogus": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body=%s", body)
}

func TestListProjects(t *testing.T) {
	ts, _ := newTestServer(t)

	id := createProject(t, ts, "Riverside Warehouse")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/projects", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var projects []domain.Project
	require.NoError(t, json.Unmarshal(body, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, id, projects[0].ID)
	assert.Equal(t, "Riverside Warehouse", projects[0].Name)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/projects?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTask_ErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", map[string]any{
		"project_id": "64f000000000000000000000",
		"name":       "Framing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decodeDetail(t, body), "not found")

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/tasks", map[string]any{
		"project_id": "not-an-id",
		"name":       "Framing",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeDetail(t, body), "invalid id")
}

func TestListTasks_FilterIsNotValidated(t *testing.T) {
	ts, _ := newTestServer(t)

	projectID := createProject(t, ts, "Site B")
	createTask(t, ts, projectID, "Excavation")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/tasks?project_id=64f000000000000000000000", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(body, &tasks))
	assert.Empty(t, tasks)
}

func TestTimerLifecycleOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	projectID := createProject(t, ts, "Harbor Crane Pad")
	taskID := createTask(t, ts, projectID, "Rebar install")

	// start
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/time/start", map[string]any{
		"task_id": taskID,
		"note":    "morning shift",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body=%s", body)
	entryID := decodeID(t, body)

	// stop returns the full updated record
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/time/stop", map[string]any{"entry_id": entryID})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body=%s", body)

	var entry domain.TimeEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, entryID, entry.ID)
	assert.Equal(t, taskID, entry.TaskID)
	require.NotNil(t, entry.EndTime)
	require.NotNil(t, entry.DurationSec)
	assert.GreaterOrEqual(t, *entry.DurationSec, int64(0))

	// double stop → 400 with the precondition message
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/time/stop", map[string]any{"entry_id": entryID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeDetail(t, body), "already stopped")

	// the entry is listed under its project
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/time/entries?project_id="+projectID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []domain.TimeEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, entryID, entries[0].ID)

	// and the report reflects its duration
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/reports/task/"+taskID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report domain.TaskReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, taskID, report.TaskID)
	assert.Equal(t, *entry.DurationSec, report.TotalSeconds)
}

func TestStopTimer_ErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/time/stop", map[string]any{"entry_id": "64f000000000000000000000"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/time/stop", map[string]any{"entry_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestRequestIDHeader(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/", nil)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, "abc-123", resp2.Header.Get("X-Request-Id"))
}
