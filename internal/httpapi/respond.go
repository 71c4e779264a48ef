package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventhub/internal/correlation"
	"eventhub/internal/events"
	"eventhub/internal/logger"
)

// ErrorResponse is the envelope every non-2xx response carries. Clients
// branch on Code; Message and Details are for humans.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// FieldErrors aggregates request binding failures, one entry per field.
type FieldErrors []string

func (e FieldErrors) Error() string {
	return strings.Join(e, ", ")
}

// MalformedRequestError marks a body that could not be parsed at all.
type MalformedRequestError struct {
	Detail string
}

func (e *MalformedRequestError) Error() string {
	return e.Detail
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError performs the sole error-to-wire translation. Every layer below
// returns the most specific error kind it has and lets it surface here.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var (
		fieldErrs  FieldErrors
		malformed  *MalformedRequestError
		validation *events.ValidationError
		notFound   *events.NotFoundError
	)

	switch {
	case errors.As(err, &fieldErrs):
		writeEnvelope(w, r, http.StatusBadRequest,
			"VALIDATION_ERROR", "Validation failed", fieldErrs.Error())
	case errors.As(err, &malformed):
		writeEnvelope(w, r, http.StatusBadRequest,
			"INVALID_REQUEST", "Request body is invalid or malformed", malformed.Detail)
	case errors.As(err, &validation):
		writeEnvelope(w, r, http.StatusBadRequest,
			"DOMAIN_VALIDATION_ERROR", "Event validation failed", validation.Message)
	case errors.As(err, &notFound):
		writeEnvelope(w, r, http.StatusNotFound,
			"NOT_FOUND", "Event not found", notFound.Error())
	default:
		// Full detail stays server-side; the client gets the opaque
		// shape only.
		log.ErrorCtx("HTTP",
			fmt.Sprintf("unhandled error for %s %s: %v", r.Method, r.URL.Path, err),
			correlation.FromContext(r.Context()))
		writeEnvelope(w, r, http.StatusInternalServerError,
			"INTERNAL_SERVER_ERROR", "An unexpected error occurred", "")
	}
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	WriteJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}
