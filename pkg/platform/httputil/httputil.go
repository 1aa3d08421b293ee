// Package httputil centralizes JSON encoding and domain error translation
// for HTTP handlers. Handlers delegate here so transport concerns stay in
// one place and internal error details never leak into responses.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "verdict/pkg/domain-errors"
)

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeInvalidInput:     http.StatusBadRequest,
	dErrors.CodeBadRequest:       http.StatusBadRequest,
	dErrors.CodeInvalidVote:      http.StatusBadRequest,
	dErrors.CodeNotFound:         http.StatusNotFound,
	dErrors.CodeConflict:         http.StatusConflict,
	dErrors.CodeAlreadyVoted:     http.StatusConflict,
	dErrors.CodeAlreadyRevealed:  http.StatusConflict,
	dErrors.CodeVotingClosed:     http.StatusConflict,
	dErrors.CodeUnauthorized:     http.StatusUnauthorized,
	dErrors.CodeForbidden:        http.StatusForbidden,
	dErrors.CodeNotCertified:     http.StatusForbidden,
	dErrors.CodeNotCaseJudge:     http.StatusForbidden,
	dErrors.CodeNotAuthorized:    http.StatusForbidden,
	dErrors.CodeDecryptionDenied: http.StatusForbidden,
	dErrors.CodeInternal:         http.StatusInternalServerError,
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a JSON error response.
// Internal errors omit the description so infrastructure detail is not
// exposed to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
		code = dErrors.CodeInternal
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, status, body)
}

// Decode parses the request body into T. On failure it writes a bad_request
// response and returns false; the handler must return immediately.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.DebugContext(r.Context(), "request decode failed", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return req, false
	}
	return req, true
}
