// Package service implements the case ledger: the append-only set of legal
// cases, their lifecycle, and their encrypted tally counters.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"verdict/internal/authz"
	"verdict/internal/caseledger/metrics"
	"verdict/internal/caseledger/models"
	"verdict/internal/caseledger/store"
	"verdict/internal/encryption"
	"verdict/internal/events"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/sentinel"
	"verdict/pkg/requestcontext"
)

// Store is the case persistence contract this service requires.
type Store interface {
	Create(ctx context.Context, c *models.LegalCase) (id.CaseID, error)
	Get(ctx context.Context, caseID id.CaseID) (*models.LegalCase, error)
	Mutate(ctx context.Context, caseID id.CaseID, fn func(*models.LegalCase) error) error
	ListOpenPastDeadline(ctx context.Context, now time.Time) ([]id.CaseID, error)
}

var _ Store = (*store.Memory)(nil)
var _ Store = (*store.Postgres)(nil)

// Service owns case lifecycle and counter initialization.
type Service struct {
	store     Store
	provider  encryption.Provider
	principal encryption.Principal
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	minJurors     int
	maxJurors     int
	defaultWindow time.Duration
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

// WithJurorBounds sets the accepted range for requiredJurors.
func WithJurorBounds(min, max int) Option {
	return func(s *Service) {
		s.minJurors = min
		s.maxJurors = max
	}
}

// WithVotingWindow sets the deadline applied when a case is created without
// an explicit one.
func WithVotingWindow(d time.Duration) Option {
	return func(s *Service) { s.defaultWindow = d }
}

func New(st Store, provider encryption.Provider, principal encryption.Principal, opts ...Option) *Service {
	s := &Service{
		store:         st,
		provider:      provider,
		principal:     principal,
		logger:        slog.Default(),
		minJurors:     3,
		maxJurors:     12,
		defaultWindow: 72 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCaseRequest carries the public metadata for a new case. The caller
// principal becomes the case judge.
type CreateCaseRequest struct {
	Title          string
	Description    string
	EvidenceRef    string
	RequiredJurors int
	Deadline       time.Time
}

// CreateCase validates input, allocates the next sequential ID, and
// initializes both tally counters to encrypted-zero with the core's access
// grant. Validation happens before any allocation so a rejected request
// never consumes an ID.
func (s *Service) CreateCase(ctx context.Context, req CreateCaseRequest) (id.CaseID, error) {
	judge, err := authz.RequireCaller(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.validate(req); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementRejected()
		}
		return 0, err
	}

	now := requestcontext.Now(ctx)
	deadline := req.Deadline
	if deadline.IsZero() {
		deadline = now.Add(s.defaultWindow)
	}

	guilty, err := s.newZeroCounter(ctx)
	if err != nil {
		return 0, err
	}
	innocent, err := s.newZeroCounter(ctx)
	if err != nil {
		return 0, err
	}

	c := &models.LegalCase{
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		EvidenceRef:    req.EvidenceRef,
		Judge:          judge,
		CreatedAt:      now,
		Deadline:       deadline,
		RequiredJurors: req.RequiredJurors,
		Active:         true,
		GuiltyVotes:    guilty,
		InnocentVotes:  innocent,
		Authorized:     make(map[id.JurorID]struct{}),
		Votes:          make(map[id.JurorID]*models.VoteRecord),
	}

	caseID, err := s.store.Create(ctx, c)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.CaseCreated(caseID, c.Title, judge, now, deadline, req.RequiredJurors))
	}
	s.logger.InfoContext(ctx, "case created",
		"case_id", caseID,
		"judge", judge,
		"required_jurors", req.RequiredJurors,
		"deadline", deadline,
	)
	return caseID, nil
}

// GetCaseInfo returns the public metadata snapshot.
func (s *Service) GetCaseInfo(ctx context.Context, caseID id.CaseID) (models.Info, error) {
	c, err := s.store.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Info{}, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return models.Info{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c.Snapshot(), nil
}

// CloseVoting transitions the case to inactive. Judge-triggered; the
// deadline path goes through CloseExpired.
func (s *Service) CloseVoting(ctx context.Context, caseID id.CaseID) error {
	caller, err := authz.RequireCaller(ctx)
	if err != nil {
		return err
	}

	err = s.store.Mutate(ctx, caseID, func(c *models.LegalCase) error {
		if err := authz.RequireJudge(c, caller); err != nil {
			return err
		}
		return closeCase(c)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementClosed("judge")
	}
	s.logger.InfoContext(ctx, "voting closed", "case_id", caseID, "trigger", "judge")
	return nil
}

// CloseExpired closes every active case whose deadline has passed. The
// boundary driver (the sweeper in cmd/server) calls this on a schedule; the
// core never self-schedules.
func (s *Service) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.store.ListOpenPastDeadline(ctx, now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expired cases")
	}

	closed := 0
	for _, caseID := range expired {
		err := s.store.Mutate(ctx, caseID, func(c *models.LegalCase) error {
			return closeCase(c)
		})
		if err != nil {
			// A concurrent judge close is fine; anything else is reported.
			if dErrors.HasCode(err, dErrors.CodeVotingClosed) {
				continue
			}
			return closed, err
		}
		closed++
		if s.metrics != nil {
			s.metrics.IncrementClosed("deadline")
		}
		s.logger.InfoContext(ctx, "voting closed", "case_id", caseID, "trigger", "deadline")
	}
	return closed, nil
}

// closeCase enforces the active -> inactive transition happening exactly
// once.
func closeCase(c *models.LegalCase) error {
	if !c.Active {
		return dErrors.New(dErrors.CodeVotingClosed, "voting already closed")
	}
	c.Active = false
	return nil
}

func (s *Service) validate(req CreateCaseRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title cannot be empty")
	}
	if strings.TrimSpace(req.Description) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "description cannot be empty")
	}
	if req.RequiredJurors < s.minJurors || req.RequiredJurors > s.maxJurors {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"required jurors must be between %d and %d", s.minJurors, s.maxJurors)
	}
	return nil
}

// newZeroCounter mints an encrypted zero and grants the core process access
// so later homomorphic updates and the eventual reveal decrypt are
// permitted.
func (s *Service) newZeroCounter(ctx context.Context) (encryption.Ciphertext, error) {
	ct, err := s.provider.EncryptU32(ctx, 0)
	if err != nil {
		return encryption.Ciphertext{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize counter")
	}
	if err := s.provider.Grant(ctx, ct, s.principal); err != nil {
		return encryption.Ciphertext{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant counter access")
	}
	return ct, nil
}
