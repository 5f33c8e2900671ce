package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/events"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// writeServiceError maps service errors onto HTTP statuses. Configuration
// errors are the operator's to fix, so they get 422 rather than 500;
// idempotency hits report 409 with the existing state untouched.
func writeServiceError(w http.ResponseWriter, err error) {
	var cfgErr *posting.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		writeJSONError(w, http.StatusUnprocessableEntity, "config_error", cfgErr.Reason)
	case errors.Is(err, posting.ErrAlreadyPosted):
		writeJSONError(w, http.StatusConflict, "already_posted", err.Error())
	case errors.Is(err, accounts.ErrNotFound),
		errors.Is(err, events.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return false
	}
	return true
}
