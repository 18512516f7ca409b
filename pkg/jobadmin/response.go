package jobadmin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/villagecompute/jobkit/pkg/queue"
)

// Response is the envelope of every admin API response.
type Response struct {
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, Response{Code: "ok", Data: data, Meta: meta})
}

// fail maps err to a status code and writes an error envelope.
func fail(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, Response{
		Code:  code,
		Error: &ErrorDetail{Code: code, Message: err.Error()},
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnknownJobType):
		return http.StatusNotFound, "unknown_job_type"
	case errors.Is(err, ErrInvalidExecutionID), errors.Is(err, ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, queue.ErrExecutionNotFound):
		return http.StatusNotFound, "execution_not_found"
	case errors.Is(err, queue.ErrDrainNotFound):
		return http.StatusNotFound, "drain_not_found"
	case errors.Is(err, ErrDrainUnavailable), errors.Is(err, ErrArchiveUnavailable):
		return http.StatusNotImplemented, "not_configured"
	case errors.Is(err, queue.ErrQueueFull):
		return http.StatusConflict, "queue_full"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
