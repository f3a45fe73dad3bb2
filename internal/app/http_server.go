package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPServer returns a configured http.Server exposing the API.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it
// on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /test", a.handleTest)

	mux.HandleFunc("POST /api/projects", a.handleCreateProject)
	mux.HandleFunc("GET /api/projects", a.handleListProjects)

	mux.HandleFunc("POST /api/tasks", a.handleCreateTask)
	mux.HandleFunc("GET /api/tasks", a.handleListTasks)

	mux.HandleFunc("POST /api/time/start", a.handleStartTimer)
	mux.HandleFunc("POST /api/time/stop", a.handleStopTimer)
	mux.HandleFunc("GET /api/time/entries", a.handleListTimeEntries)

	mux.HandleFunc("GET /api/reports/task/{task_id}", a.handleTaskReport)

	handler := loggingMiddleware(a.log, requestIDMiddleware(corsMiddleware(a.allowOrigin, mux)))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// Handler returns the full middleware-wrapped handler. Used by tests.
func (a *App) Handler() http.Handler {
	return a.HTTPServer(":0").Handler
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", rid)
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware mirrors the permissive policy of the original API: all
// methods and headers, credentials allowed, origin from configuration.
func corsMiddleware(allowOrigin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
