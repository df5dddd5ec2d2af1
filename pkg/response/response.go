// Package response writes the JSON envelope every REST endpoint returns.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"resumecms/pkg/apperror"
	"resumecms/pkg/logger"
)

type ErrorBody struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Details []apperror.FieldError `json:"details,omitempty"`
}

// Envelope: on success data is always present (possibly null), on failure error is set.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data, Timestamp: now()})
}

// Error maps err to its envelope. Errors outside the taxonomy become INTERNAL_ERROR.
func Error(w http.ResponseWriter, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		logger.Sugar.Errorf("Unhandled error: %v", err)
		appErr = apperror.Internal(err)
	}
	write(w, appErr.Status, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		Timestamp: now(),
	})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
