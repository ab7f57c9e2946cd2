package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"snd/internal/apperr"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailErr maps a classified service error onto the HTTP surface. Unclassified
// errors become an opaque 500; permission denials stay 403 and are logged.
func FailErr(w http.ResponseWriter, err error, requestID string) {
	reason := apperr.ReasonOf(err)
	switch apperr.KindOf(err) {
	case apperr.Validation:
		Fail(w, http.StatusBadRequest, "validation_error", reason, requestID)
	case apperr.Precondition:
		Fail(w, http.StatusBadRequest, "precondition_failed", reason, requestID)
	case apperr.NotFound:
		Fail(w, http.StatusNotFound, "not_found", reason, requestID)
	case apperr.PermissionDenied:
		slog.Info("permission denied", "reason", reason, "requestId", requestID)
		Fail(w, http.StatusForbidden, "forbidden", reason, requestID)
	case apperr.Conflict:
		Fail(w, http.StatusConflict, "conflict", reason, requestID)
	default:
		slog.Error("request failed", "err", err, "requestId", requestID)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}
