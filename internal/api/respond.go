// internal/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	commonerrors "visa-workers/internal/common/errors"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as an ErrorResponse. Internal error details are not exposed.
func writeError(w http.ResponseWriter, err error) {
	stdErr := commonerrors.Normalize(err)

	status := commonerrors.HTTPStatus(stdErr.Code)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	resp := ErrorResponse{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	}
	if status >= http.StatusInternalServerError && stdErr.Code == commonerrors.ErrCodeInternal {
		resp.Details = ""
	}

	writeJSON(w, status, resp)
}
