// Package domainerrors defines coded errors for caller-correctable failures.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// these coded errors at the service boundary. Transport maps codes to HTTP
// statuses in pkg/platform/httputil. Every rejected operation surfaces its
// code to the caller; nothing is silently swallowed.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. All codes represent precondition
// violations the caller can correct, never partial-state corruption.
type Code string

const (
	// Generic transport-level codes.
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal_error"

	// Voting protocol codes.
	CodeNotCertified     Code = "not_certified"
	CodeNotCaseJudge     Code = "not_case_judge"
	CodeNotAuthorized    Code = "not_authorized"
	CodeAlreadyVoted     Code = "already_voted"
	CodeAlreadyRevealed  Code = "already_revealed"
	CodeVotingClosed     Code = "voting_closed"
	CodeInvalidVote      Code = "invalid_vote"
	CodeDecryptionDenied Code = "decryption_denied"
)

// Error carries a code, a caller-safe message, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded domain error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and caller-safe message to an underlying error.
// The cause is preserved for errors.Is/As but never written to responses.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is a convenience alias for HasCode, matching call sites that read
// better as a predicate.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code carried by err, or CodeInternal when
// err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message of err, or an empty string for
// non-domain errors (internal details must not leak).
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
