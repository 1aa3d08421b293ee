// Package service implements the voting engine: the state machine that
// accepts encrypted ballots, updates the tally counters homomorphically, and
// gates the reveal.
//
// Confidentiality invariant: the clear-text choice exists only inside
// CastVote, is consumed solely by the two homomorphic counter updates, and
// is never logged, returned, stored, or emitted. VoteCast notifications
// carry (case, juror, timestamp) only.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdict/internal/authz"
	"verdict/internal/caseledger/models"
	"verdict/internal/encryption"
	"verdict/internal/events"
	"verdict/internal/voting/commitments"
	"verdict/internal/voting/metrics"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/sentinel"
	"verdict/pkg/requestcontext"
)

// CaseStore is the slice of the case store the engine needs. Mutate applies
// each vote's pair of counter updates as one atomic unit; interleaving them
// would break the complement law.
type CaseStore interface {
	Get(ctx context.Context, caseID id.CaseID) (*models.LegalCase, error)
	Mutate(ctx context.Context, caseID id.CaseID, fn func(*models.LegalCase) error) error
}

// Service is the voting engine.
type Service struct {
	cases     CaseStore
	provider  encryption.Provider
	principal encryption.Principal
	recorder  commitments.Recorder
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithCommitmentRecorder(r commitments.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func New(cases CaseStore, provider encryption.Provider, principal encryption.Principal, opts ...Option) *Service {
	s := &Service{
		cases:     cases,
		provider:  provider,
		principal: principal,
		logger:    slog.Default(),
		tracer:    otel.Tracer("verdict/voting"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CastVote accepts one secret ballot. Preconditions are checked in order,
// each a distinct failure: case exists, voting open, choice valid, juror
// authorized, juror has not voted. On success the choice is encrypted, the
// guilty counter gains enc(choice), the innocent counter gains
// enc(1)-enc(choice), and the immutable vote record is created — all
// committed atomically or not at all.
func (s *Service) CastVote(ctx context.Context, caseID id.CaseID, choice uint8, commitment []byte) error {
	juror, err := authz.RequireCaller(ctx)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "voting.CastVote",
		trace.WithAttributes(attribute.Int64("case_id", int64(caseID))))
	defer span.End()

	now := requestcontext.Now(ctx)
	err = s.cases.Mutate(ctx, caseID, func(c *models.LegalCase) error {
		if !c.Active {
			return dErrors.New(dErrors.CodeVotingClosed, "voting is closed for this case")
		}
		if choice > 1 {
			return dErrors.New(dErrors.CodeInvalidVote, "choice must be 0 or 1")
		}
		if !c.IsAuthorized(juror) {
			return dErrors.New(dErrors.CodeNotAuthorized, "juror is not authorized for this case")
		}
		if c.HasVoted(juror) {
			return dErrors.New(dErrors.CodeAlreadyVoted, "juror has already voted on this case")
		}

		encChoice, err := s.provider.EncryptU8(ctx, choice)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encrypt ballot")
		}
		if err := s.provider.Grant(ctx, encChoice, s.principal); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant ballot access")
		}

		newGuilty, err := s.provider.Add(ctx, c.GuiltyVotes, encChoice)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update guilty counter")
		}

		// The complement 1-choice is computed entirely in encrypted
		// space; the engine never learns the innocent contribution.
		one, err := s.provider.EncryptU8(ctx, 1)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encrypt complement")
		}
		if err := s.provider.Grant(ctx, one, s.principal); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant complement access")
		}
		complement, err := s.provider.Sub(ctx, one, encChoice)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute complement")
		}
		newInnocent, err := s.provider.Add(ctx, c.InnocentVotes, complement)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update innocent counter")
		}

		c.GuiltyVotes = newGuilty
		c.InnocentVotes = newInnocent
		c.Votes[juror] = &models.VoteRecord{
			Juror:      juror,
			Choice:     encChoice,
			HasVoted:   true,
			CastAt:     now,
			Commitment: append([]byte(nil), commitment...),
		}
		// First vote freezes the authorized set.
		c.AuthorizationFrozen = true
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		if s.metrics != nil {
			s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
		}
		return err
	}

	s.recordCommitment(ctx, caseID, commitment)

	if s.metrics != nil {
		s.metrics.IncrementCast()
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.VoteCast(caseID, juror, now))
	}
	s.logger.InfoContext(ctx, "vote cast", "case_id", caseID, "juror", juror)
	return nil
}

// RevealResult is the outcome of a reveal.
type RevealResult struct {
	CaseID        id.CaseID `json:"case_id"`
	Verdict       bool      `json:"verdict"`
	GuiltyCount   uint32    `json:"guilty_count"`
	InnocentCount uint32    `json:"innocent_count"`
	JurorsVoted   uint32    `json:"jurors_voted"`
}

// RevealResults decrypts both counters — the only two decrypt operations in
// the system — fixes the verdict, and marks the case revealed. Ties resolve
// to innocent (verdict=false). Irreversible; a second call fails with
// AlreadyRevealed and neither re-decrypts nor re-emits.
func (s *Service) RevealResults(ctx context.Context, caseID id.CaseID) (RevealResult, error) {
	caller, err := authz.RequireCaller(ctx)
	if err != nil {
		return RevealResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "voting.RevealResults",
		trace.WithAttributes(attribute.Int64("case_id", int64(caseID))))
	defer span.End()

	var result RevealResult
	err = s.cases.Mutate(ctx, caseID, func(c *models.LegalCase) error {
		if err := authz.RequireJudge(c, caller); err != nil {
			return err
		}
		if c.Revealed {
			return dErrors.New(dErrors.CodeAlreadyRevealed, "case already revealed")
		}

		guilty, err := s.provider.Decrypt(ctx, c.GuiltyVotes, s.principal)
		if err != nil {
			return wrapDecrypt(err)
		}
		innocent, err := s.provider.Decrypt(ctx, c.InnocentVotes, s.principal)
		if err != nil {
			return wrapDecrypt(err)
		}

		// Revealing an open case closes it; the close transition still
		// happens exactly once.
		c.Active = false
		c.Revealed = true
		c.Verdict = guilty > innocent
		c.GuiltyCount = guilty
		c.InnocentCount = innocent

		result = RevealResult{
			CaseID:        caseID,
			Verdict:       c.Verdict,
			GuiltyCount:   guilty,
			InnocentCount: innocent,
			JurorsVoted:   guilty + innocent,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return RevealResult{}, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRevealed()
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.CaseRevealed(
			caseID, result.Verdict, result.GuiltyCount, result.InnocentCount,
			result.JurorsVoted, requestcontext.Now(ctx)))
	}
	s.logger.InfoContext(ctx, "case revealed",
		"case_id", caseID,
		"verdict", result.Verdict,
		"guilty", result.GuiltyCount,
		"innocent", result.InnocentCount,
	)
	return result, nil
}

// recordCommitment does replay bookkeeping. Never fails the vote: the core
// does not enforce commitments.
func (s *Service) recordCommitment(ctx context.Context, caseID id.CaseID, commitment []byte) {
	if s.recorder == nil || len(commitment) == 0 {
		return
	}
	first, err := s.recorder.Record(ctx, caseID, commitment)
	if err != nil {
		s.logger.WarnContext(ctx, "commitment bookkeeping failed", "case_id", caseID, "error", err)
		return
	}
	if !first {
		if s.metrics != nil {
			s.metrics.IncrementRepeatedCommitment()
		}
		s.logger.WarnContext(ctx, "repeated vote commitment observed", "case_id", caseID)
	}
}

func wrapDecrypt(err error) error {
	if errors.Is(err, sentinel.ErrDenied) {
		return dErrors.Wrap(err, dErrors.CodeDecryptionDenied, "decryption not permitted")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decrypt tally")
}
