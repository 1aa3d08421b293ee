// Package service implements the reputation ledger.
//
// The engine never re-exposes an individual's ballot, so alignment with the
// verdict cannot be computed server-side. The protocol instead lets each
// juror voluntarily disclose their own choice after reveal; the disclosure
// is checked against the commitment stored with their vote record and
// adjusts reputation only on a match. A juror who never discloses keeps
// their reputation unchanged.
package service

import (
	"context"
	"errors"
	"log/slog"

	"verdict/internal/authz"
	casemodels "verdict/internal/caseledger/models"
	jurormodels "verdict/internal/registry/models"
	"verdict/internal/reputation/metrics"
	"verdict/internal/voting/commitments"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/sentinel"
)

// JurorStore reads and writes juror records; the reputation ledger is the
// only component that mutates Reputation.
type JurorStore interface {
	Get(ctx context.Context, jurorID id.JurorID) (*jurormodels.Juror, error)
	Put(ctx context.Context, juror *jurormodels.Juror) error
}

// CaseStore provides read access to revealed cases and their vote records.
type CaseStore interface {
	Get(ctx context.Context, caseID id.CaseID) (*casemodels.LegalCase, error)
}

// DisclosureStore enforces one disclosure per (case, juror).
type DisclosureStore interface {
	Record(ctx context.Context, caseID id.CaseID, juror id.JurorID, aligned bool) error
}

// Service adjusts reputation from commitment-checked disclosures.
type Service struct {
	jurors      JurorStore
	cases       CaseStore
	disclosures DisclosureStore
	logger      *slog.Logger
	metrics     *metrics.Metrics

	delta   int
	floor   int
	ceiling int
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAdjustment sets the per-disclosure delta and the clamping bounds.
func WithAdjustment(delta, floor, ceiling int) Option {
	return func(s *Service) {
		s.delta = delta
		s.floor = floor
		s.ceiling = ceiling
	}
}

func New(jurors JurorStore, cases CaseStore, disclosures DisclosureStore, opts ...Option) *Service {
	s := &Service{
		jurors:      jurors,
		cases:       cases,
		disclosures: disclosures,
		logger:      slog.Default(),
		delta:       5,
		floor:       0,
		ceiling:     200,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AlignmentResult is returned to the disclosing juror.
type AlignmentResult struct {
	Aligned    bool `json:"aligned"`
	Reputation int  `json:"reputation"`
}

// DiscloseAlignment verifies the calling juror's disclosed (choice, salt)
// against the commitment stored with their vote record and adjusts
// reputation by the configured delta, clamped to the bounds. At most one
// disclosure per (case, juror); a non-matching disclosure changes nothing.
func (s *Service) DiscloseAlignment(ctx context.Context, caseID id.CaseID, choice uint8, salt []byte) (AlignmentResult, error) {
	juror, err := authz.RequireCaller(ctx)
	if err != nil {
		return AlignmentResult{}, err
	}

	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return AlignmentResult{}, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return AlignmentResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	if !c.Revealed {
		return AlignmentResult{}, dErrors.New(dErrors.CodeConflict, "case is not revealed yet")
	}

	rec, ok := c.Votes[juror]
	if !ok {
		return AlignmentResult{}, dErrors.New(dErrors.CodeNotFound, "no vote record for juror on this case")
	}
	if choice > 1 {
		return AlignmentResult{}, dErrors.New(dErrors.CodeInvalidVote, "choice must be 0 or 1")
	}
	if !commitments.Matches(rec.Commitment, caseID, juror, choice, salt) {
		return AlignmentResult{}, dErrors.New(dErrors.CodeInvalidInput, "disclosure does not match vote commitment")
	}

	aligned := (choice == 1) == c.Verdict
	if err := s.disclosures.Record(ctx, caseID, juror, aligned); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return AlignmentResult{}, dErrors.New(dErrors.CodeConflict, "alignment already disclosed for this case")
		}
		return AlignmentResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record disclosure")
	}

	j, err := s.jurors.Get(ctx, juror)
	if err != nil {
		return AlignmentResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load juror")
	}

	direction := "up"
	if aligned {
		j.Reputation += s.delta
	} else {
		j.Reputation -= s.delta
		direction = "down"
	}
	j.Reputation = clamp(j.Reputation, s.floor, s.ceiling)
	if err := s.jurors.Put(ctx, j); err != nil {
		return AlignmentResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update reputation")
	}

	if s.metrics != nil {
		s.metrics.IncrementAdjustment(direction)
	}
	s.logger.InfoContext(ctx, "reputation adjusted",
		"case_id", caseID,
		"juror", juror,
		"aligned", aligned,
		"reputation", j.Reputation,
	)
	return AlignmentResult{Aligned: aligned, Reputation: j.Reputation}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
