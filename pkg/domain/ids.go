// Package domain defines the typed identifiers shared across components.
//
// Typed IDs prevent cross-type assignment at compile time: a JurorID can
// never be passed where a CaseID is expected. Construct IDs from external
// input via the Parse functions so validation happens at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "verdict/pkg/domain-errors"
)

// JurorID identifies a juror principal. Judges are principals too and share
// the same identifier space.
type JurorID uuid.UUID

// CaseID identifies a legal case. IDs are allocated sequentially by the case
// store, starting at 1, and are immutable once assigned.
type CaseID int64

func (j JurorID) String() string { return uuid.UUID(j).String() }

// IsZero reports whether the ID is the nil UUID.
func (j JurorID) IsZero() bool { return uuid.UUID(j) == uuid.Nil }

// MarshalText renders the ID in canonical UUID form for JSON payloads.
func (j JurorID) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

// UnmarshalText parses the canonical UUID form.
func (j *JurorID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*j = JurorID(u)
	return nil
}

func (c CaseID) String() string { return strconv.FormatInt(int64(c), 10) }

// ParseJurorID constructs a JurorID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or the
// nil UUID; no other errors are expected.
func ParseJurorID(s string) (JurorID, error) {
	if s == "" {
		return JurorID{}, dErrors.New(dErrors.CodeInvalidInput, "juror id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return JurorID{}, dErrors.New(dErrors.CodeInvalidInput, "juror id must be a valid UUID")
	}
	if u == uuid.Nil {
		return JurorID{}, dErrors.New(dErrors.CodeInvalidInput, "juror id cannot be the nil UUID")
	}
	return JurorID(u), nil
}

// ParseCaseID constructs a CaseID from external input (route parameters).
//
// Errors: returns CodeInvalidInput when the value is not a positive integer.
func ParseCaseID(s string) (CaseID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "case id must be a positive integer")
	}
	return CaseID(n), nil
}
