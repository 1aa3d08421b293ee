// Package models defines the legal case aggregate and its nested records.
//
// The case store exclusively owns these aggregates. Other components mutate
// them only through the store's Mutate, which applies the whole change
// atomically or not at all.
package models

import (
	"time"

	"verdict/internal/encryption"
	id "verdict/pkg/domain"
)

// VoteRecord is the immutable audit record for one (case, juror) pair. It
// exists only once the juror has voted and is never mutated or deleted.
type VoteRecord struct {
	Juror id.JurorID

	// Choice is the juror's encrypted ballot. The clear-text choice is
	// discarded immediately after encryption; the two homomorphic counter
	// updates are the only consumers of this value.
	Choice encryption.Ciphertext

	// HasVoted is true from creation; the record's existence is the vote.
	HasVoted bool

	CastAt time.Time

	// Commitment is an opaque caller-supplied value used for client-side
	// replay bookkeeping and voluntary alignment disclosure. The core does
	// not verify it at cast time.
	Commitment []byte
}

// LegalCase is the central aggregate.
type LegalCase struct {
	ID id.CaseID

	Title          string
	Description    string
	EvidenceRef    string
	Judge          id.JurorID
	CreatedAt      time.Time
	Deadline       time.Time
	RequiredJurors int

	// Lifecycle: Active(true) -> Active(false) exactly once, then Revealed
	// may become true. Revealed is monotone. Verdict is meaningful only
	// when Revealed.
	Active   bool
	Revealed bool
	Verdict  bool

	// Encrypted tally counters, initialized to encrypted-zero at creation
	// and owned exclusively by this case. Their homomorphic sum always
	// equals the number of vote records, though nothing observes that sum
	// in the clear before reveal.
	GuiltyVotes   encryption.Ciphertext
	InnocentVotes encryption.Ciphertext

	// Revealed tallies, populated once by the reveal.
	GuiltyCount   uint32
	InnocentCount uint32

	// Authorized is the judge-controlled juror subset. AuthorizationFrozen
	// flips when the first vote lands; the set is immutable from then on.
	Authorized          map[id.JurorID]struct{}
	AuthorizationFrozen bool

	Votes map[id.JurorID]*VoteRecord
}

// IsAuthorized reports whether the juror is in the case's authorized set.
func (c *LegalCase) IsAuthorized(juror id.JurorID) bool {
	_, ok := c.Authorized[juror]
	return ok
}

// HasVoted reports whether a vote record exists for the juror.
func (c *LegalCase) HasVoted(juror id.JurorID) bool {
	_, ok := c.Votes[juror]
	return ok
}

// VoteCount returns the number of recorded votes.
func (c *LegalCase) VoteCount() int {
	return len(c.Votes)
}

// Clone deep-copies the aggregate so readers observe a consistent snapshot
// and writers never leak partial updates.
func (c *LegalCase) Clone() *LegalCase {
	cp := *c
	cp.Authorized = make(map[id.JurorID]struct{}, len(c.Authorized))
	for j := range c.Authorized {
		cp.Authorized[j] = struct{}{}
	}
	cp.Votes = make(map[id.JurorID]*VoteRecord, len(c.Votes))
	for j, v := range c.Votes {
		rec := *v
		rec.Commitment = append([]byte(nil), v.Commitment...)
		rec.Choice.Bytes = append([]byte(nil), v.Choice.Bytes...)
		cp.Votes[j] = &rec
	}
	cp.GuiltyVotes.Bytes = append([]byte(nil), c.GuiltyVotes.Bytes...)
	cp.InnocentVotes.Bytes = append([]byte(nil), c.InnocentVotes.Bytes...)
	return &cp
}

// Info is the public metadata snapshot returned by case queries. It carries
// no encrypted material.
type Info struct {
	ID             id.CaseID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	EvidenceRef    string     `json:"evidence_ref"`
	Judge          id.JurorID `json:"judge"`
	CreatedAt      time.Time  `json:"created_at"`
	Deadline       time.Time  `json:"deadline"`
	RequiredJurors int        `json:"required_jurors"`
	Active         bool       `json:"active"`
	Revealed       bool       `json:"revealed"`
	Verdict        *bool      `json:"verdict,omitempty"`
	GuiltyCount    *uint32    `json:"guilty_count,omitempty"`
	InnocentCount  *uint32    `json:"innocent_count,omitempty"`
	VotesCast      int        `json:"votes_cast"`
}

// Snapshot builds the public view. Tallies and verdict appear only after
// reveal; before that the only disclosed number is how many jurors voted.
func (c *LegalCase) Snapshot() Info {
	info := Info{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		EvidenceRef:    c.EvidenceRef,
		Judge:          c.Judge,
		CreatedAt:      c.CreatedAt,
		Deadline:       c.Deadline,
		RequiredJurors: c.RequiredJurors,
		Active:         c.Active,
		Revealed:       c.Revealed,
		VotesCast:      len(c.Votes),
	}
	if c.Revealed {
		verdict := c.Verdict
		guilty := c.GuiltyCount
		innocent := c.InnocentCount
		info.Verdict = &verdict
		info.GuiltyCount = &guilty
		info.InnocentCount = &innocent
	}
	return info
}
