package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/moodflix/moodflix/internal/async"
	"github.com/moodflix/moodflix/internal/auth"
	"github.com/moodflix/moodflix/internal/content"
	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
	"github.com/moodflix/moodflix/internal/records"
	"github.com/moodflix/moodflix/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string                 `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// writeJSON sends v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// writeError maps err to a status code and sends it. Server errors are
// logged with the request id and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	body := errorBody{Error: err.Error()}

	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, auth.ErrSelfFriend),
		errors.Is(err, auth.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, records.ErrUserNotFound),
		errors.Is(err, auth.ErrFriendNotFound),
		errors.Is(err, content.ErrContentNotFound),
		errors.Is(err, records.ErrActivityNotFound),
		errors.Is(err, records.ErrFeedbackNotFound),
		errors.Is(err, records.ErrMoodEntryNotFound),
		errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, async.ErrQueueFull),
		errors.Is(err, async.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", validation.ErrInvalid, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", validation.ErrInvalid)
	}
	return nil
}

// readBody returns the raw request body.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", validation.ErrInvalid, err)
	}
	return data, nil
}

// intParam parses a path or query value as a positive int64.
func intParam(name, raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", validation.ErrInvalid, name)
	}
	return n, nil
}

// limitParam reads the optional limit query parameter. Zero means unset.
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := intParam("limit", raw)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
