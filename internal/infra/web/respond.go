package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"quizgate/internal/domain"
)

type envelope map[string]any

// errorMessages maps API error codes to the human-readable message field of
// the response envelope.
var errorMessages = map[string]string{
	"empty_code":          "activation code is required",
	"invalid_code_format": "activation code format is invalid",
	"not_found":           "not found",
	"disabled":            "activation code is disabled",
	"expired":             "activation code has expired",
	"used_up":             "activation code has no uses left",
	"empty_token":         "token is required",
	"invalid_token":       "token is invalid",
	"expired_token":       "token has expired",
	"session_missing":     "session not found",
	"ua_mismatch":         "device changed, please redeem again",
	"code_disabled":       "activation code is disabled",
	"bad_password":        "wrong password",
	"missing_password":    "password is required",
	"admin_unauthorized":  "admin authorization required",
	"rate_limit_exceeded": "too many requests, please slow down",
	"method_not_allowed":  "method not allowed",
	"unknown_action":      "unknown action",
	"internal_error":      "internal error",
	"missing_event_type":  "event type is required",
	"missing_id":          "id is required",
	"invalid_id":          "invalid id",
	"id_exists":           "id already exists",
	"invalid_test_data":   "invalid test data",
	"missing_name":        "name is required",
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeOK writes {ok:true} merged with extra fields.
func writeOK(w http.ResponseWriter, fields envelope) {
	body := envelope{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, code string) {
	body := envelope{"ok": false, "error": code}
	if msg, ok := errorMessages[code]; ok {
		body["message"] = msg
	}
	writeJSON(w, status, body)
}

// errorStatus translates a domain error into its public API code and HTTP
// status. Unknown errors collapse to internal_error so nothing internal
// leaks across the boundary.
func errorStatus(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found", http.StatusForbidden
	case errors.Is(err, domain.ErrCodeDisabled):
		return "disabled", http.StatusForbidden
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired", http.StatusForbidden
	case errors.Is(err, domain.ErrCodeUsedUp):
		return "used_up", http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token", http.StatusForbidden
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired_token", http.StatusForbidden
	case errors.Is(err, domain.ErrSessionMissing):
		return "session_missing", http.StatusForbidden
	case errors.Is(err, domain.ErrUAMismatch):
		return "ua_mismatch", http.StatusForbidden
	case errors.Is(err, domain.ErrBadPassword):
		return "bad_password", http.StatusForbidden
	case errors.Is(err, domain.ErrAdminUnauthorized):
		return "admin_unauthorized", http.StatusForbidden
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limit_exceeded", http.StatusTooManyRequests
	default:
		return "internal_error", http.StatusInternalServerError
	}
}

// adminErrorStatus maps errors from privileged actions. The admin surface
// reports state problems as 400, matching its action-dispatch contract.
func adminErrorStatus(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found", http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return "id_exists", http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_id", http.StatusBadRequest
	default:
		return "internal_error", http.StatusInternalServerError
	}
}
