// Package events defines the externally observable protocol notifications.
//
// These four events are the only signals the core emits. Their payloads are
// fixed: VoteCast carries (case, juror, timestamp) and deliberately has no
// field for the ballot choice, so a choice cannot be emitted even by
// accident.
package events

import (
	"context"
	"time"

	id "verdict/pkg/domain"
)

// Kind names an event type.
type Kind string

const (
	KindCaseCreated     Kind = "case_created"
	KindJurorAuthorized Kind = "juror_authorized"
	KindVoteCast        Kind = "vote_cast"
	KindCaseRevealed    Kind = "case_revealed"
)

// Event is emitted from domain logic. Keep it transport-agnostic so
// publishers can fan out to kafka, logs, or test sinks.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	CaseID    id.CaseID `json:"case_id"`

	// CaseCreated payload.
	Title          string     `json:"title,omitempty"`
	Judge          id.JurorID `json:"judge,omitempty"`
	Deadline       time.Time  `json:"deadline,omitzero"`
	RequiredJurors int        `json:"required_jurors,omitempty"`

	// JurorAuthorized and VoteCast payload.
	Juror id.JurorID `json:"juror,omitempty"`

	// CaseRevealed payload.
	Verdict       bool   `json:"verdict,omitempty"`
	GuiltyCount   uint32 `json:"guilty_count,omitempty"`
	InnocentCount uint32 `json:"innocent_count,omitempty"`
	JurorCount    uint32 `json:"juror_count,omitempty"`
}

// Publisher delivers events to external observers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// CaseCreated builds the case-created notification.
func CaseCreated(caseID id.CaseID, title string, judge id.JurorID, createdAt, deadline time.Time, requiredJurors int) Event {
	return Event{
		Kind:           KindCaseCreated,
		Timestamp:      createdAt,
		CaseID:         caseID,
		Title:          title,
		Judge:          judge,
		Deadline:       deadline,
		RequiredJurors: requiredJurors,
	}
}

// JurorAuthorized builds the juror-authorized notification.
func JurorAuthorized(caseID id.CaseID, juror id.JurorID, at time.Time) Event {
	return Event{
		Kind:      KindJurorAuthorized,
		Timestamp: at,
		CaseID:    caseID,
		Juror:     juror,
	}
}

// VoteCast builds the vote-cast notification. It carries only the case, the
// juror, and the timestamp.
func VoteCast(caseID id.CaseID, juror id.JurorID, at time.Time) Event {
	return Event{
		Kind:      KindVoteCast,
		Timestamp: at,
		CaseID:    caseID,
		Juror:     juror,
	}
}

// CaseRevealed builds the case-revealed notification with the decrypted
// aggregate tallies.
func CaseRevealed(caseID id.CaseID, verdict bool, guilty, innocent, jurors uint32, at time.Time) Event {
	return Event{
		Kind:          KindCaseRevealed,
		Timestamp:     at,
		CaseID:        caseID,
		Verdict:       verdict,
		GuiltyCount:   guilty,
		InnocentCount: innocent,
		JurorCount:    jurors,
	}
}
