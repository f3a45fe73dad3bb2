package app

import (
	"context"
	"net/http"
	"time"

	"timetrack-api/internal/usecase"
)

type idResponse struct {
	ID string `json:"id"`
}

func (a *App) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Construction Time Tracking API",
	})
}

// handleTest is a best-effort diagnostic: it never fails the request and
// reports store connectivity as status strings instead.
func (a *App) handleTest(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"backend":           "running",
		"database":          "not available",
		"database_url":      "not set",
		"database_name":     nil,
		"connection_status": "not connected",
		"collections":       []string{},
	}
	if a.diag == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if a.databaseURL {
		resp["database_url"] = "set"
	}
	resp["database_name"] = a.diag.DatabaseName()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.diag.Ping(ctx); err != nil {
		resp["database"] = "error: " + truncate(err.Error(), 50)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp["database"] = "available"
	resp["connection_status"] = "connected"

	names, err := a.diag.CollectionNames(ctx)
	if err != nil {
		resp["database"] = "connected but error: " + truncate(err.Error(), 50)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if len(names) > 10 {
		names = names[:10]
	}
	resp["collections"] = names
	resp["database"] = "connected and working"
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateProjectInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := a.tracker.CreateProject(r.Context(), in)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (a *App) handleListProjects(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, usecase.DefaultProjectLimit)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	projects, err := a.tracker.ListProjects(r.Context(), limit)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (a *App) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateTaskInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := a.tracker.CreateTask(r.Context(), in)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (a *App) handleListTasks(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, usecase.DefaultTaskLimit)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	tasks, err := a.tracker.ListTasks(r.Context(), r.URL.Query().Get("project_id"), limit)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *App) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var in usecase.StartTimerInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := a.tracker.StartTimer(r.Context(), in)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

type stopTimerRequest struct {
	EntryID string `json:"entry_id"`
}

func (a *App) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	var req stopTimerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := a.tracker.StopTimer(r.Context(), req.EntryID)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *App) handleListTimeEntries(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, usecase.DefaultEntryLimit)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	entries, err := a.tracker.ListTimeEntries(r.Context(), q.Get("task_id"), q.Get("project_id"), limit)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *App) handleTaskReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.tracker.TaskReport(r.Context(), r.PathValue("task_id"))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
