package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"timetrack-api/internal/domain"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: multiple JSON values")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail emits the {"detail": ...} error body the original wire
// format uses.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeDomainError maps the shared error kinds to HTTP statuses. Anything
// unrecognized is a 500 with the detail hidden.
func (a *App) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrTimerStopped):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		a.log.Error("request failed", slog.String("error", err.Error()))
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

// parseLimit reads an optional positive integer query parameter, falling
// back to def when absent.
func parseLimit(r *http.Request, def int64) (int64, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return v, nil
}
