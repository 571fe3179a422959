package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		ve   *model.ValidationError
		dup  *model.DuplicateError
		nf   *model.NotFoundError
		conf *model.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field, Code: "validation"})
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, errorBody{Error: dup.Error(), Code: "duplicate"})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error(), Code: "not_found"})
	case errors.As(err, &conf):
		writeJSON(w, http.StatusConflict, errorBody{Error: conf.Error(), Code: "conflict"})
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.Invalid("", "invalid json body")
	}
	return nil
}

func queryID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		return "", model.Invalid("id", "is required")
	}
	return id, nil
}

func parseDateParam(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, model.Invalid(field, "is required")
	}
	d, err := timeofday.ParseDate(raw)
	if err != nil {
		return time.Time{}, model.Invalid(field, "must be YYYY-MM-DD")
	}
	return d, nil
}

// parseInstant accepts RFC3339 timestamps, or a bare date for date-range filters.
func parseInstant(raw, field string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if d, err := timeofday.ParseDate(raw); err == nil {
		return timeofday.At(d, 0, loc), nil
	}
	return time.Time{}, model.Invalid(field, "must be RFC3339 or YYYY-MM-DD")
}

func intParam(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.Invalid(key, "must be an integer")
	}
	return n, nil
}

func floatParam(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, model.Invalid(key, "must be a number")
	}
	return &f, nil
}

func monthParams(r *http.Request) (time.Month, int, error) {
	month, err := intParam(r, "month", 0)
	if err != nil {
		return 0, 0, err
	}
	year, err := intParam(r, "year", 0)
	if err != nil {
		return 0, 0, err
	}
	if month == 0 {
		return 0, 0, model.Invalid("month", "is required")
	}
	if year == 0 {
		return 0, 0, model.Invalid("year", "is required")
	}
	return time.Month(month), year, nil
}
