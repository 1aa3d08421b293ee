// Package service implements the identity and authorization registry: the
// process-wide roster of certified jurors and the judge-controlled
// authorized subset per case.
package service

import (
	"context"
	"errors"
	"log/slog"

	"verdict/internal/authz"
	casemodels "verdict/internal/caseledger/models"
	"verdict/internal/events"
	"verdict/internal/registry/metrics"
	"verdict/internal/registry/models"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/sentinel"
	"verdict/pkg/requestcontext"
)

// JurorStore persists the juror roster.
type JurorStore interface {
	Put(ctx context.Context, juror *models.Juror) error
	Get(ctx context.Context, jurorID id.JurorID) (*models.Juror, error)
}

// CaseStore is the slice of the case store this service needs: the
// authorized set lives inside the case aggregate, so authorization mutates
// through it.
type CaseStore interface {
	Get(ctx context.Context, caseID id.CaseID) (*casemodels.LegalCase, error)
	Mutate(ctx context.Context, caseID id.CaseID, fn func(*casemodels.LegalCase) error) error
}

// Service orchestrates certification and per-case authorization.
type Service struct {
	jurors    JurorStore
	cases     CaseStore
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	defaultReputation int
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

func WithDefaultReputation(rep int) Option {
	return func(s *Service) { s.defaultReputation = rep }
}

func New(jurors JurorStore, cases CaseStore, opts ...Option) *Service {
	s := &Service{
		jurors:            jurors,
		cases:             cases,
		logger:            slog.Default(),
		defaultReputation: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Certify marks a juror certified with the default reputation. Idempotent:
// re-certifying is a no-op and never resets an adjusted reputation.
func (s *Service) Certify(ctx context.Context, jurorID id.JurorID) error {
	if err := authz.RequireOwner(ctx); err != nil {
		return err
	}

	existing, err := s.jurors.Get(ctx, jurorID)
	if err == nil && existing.Certified {
		return nil
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load juror")
	}

	juror := &models.Juror{
		ID:          jurorID,
		Certified:   true,
		Reputation:  s.defaultReputation,
		CertifiedAt: requestcontext.Now(ctx),
	}
	if err := s.jurors.Put(ctx, juror); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to certify juror")
	}

	if s.metrics != nil {
		s.metrics.IncrementCertified()
	}
	s.logger.InfoContext(ctx, "juror certified", "juror", jurorID)
	return nil
}

// CertifyBatch certifies each juror in turn. Certify cannot fail once the
// owner check passes, so no rollback is needed.
func (s *Service) CertifyBatch(ctx context.Context, jurorIDs []id.JurorID) error {
	if err := authz.RequireOwner(ctx); err != nil {
		return err
	}
	for _, jurorID := range jurorIDs {
		if err := s.Certify(ctx, jurorID); err != nil {
			return err
		}
	}
	return nil
}

// Authorize adds a certified juror to the case's authorized set. Only the
// case judge may call it; idempotent per juror; rejected once the set is
// frozen by the first cast vote.
func (s *Service) Authorize(ctx context.Context, caseID id.CaseID, jurorID id.JurorID) error {
	caller, err := authz.RequireCaller(ctx)
	if err != nil {
		return err
	}

	juror, err := s.jurors.Get(ctx, jurorID)
	if err != nil || !juror.Certified {
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load juror")
		}
		if s.metrics != nil {
			s.metrics.IncrementDenied()
		}
		return dErrors.New(dErrors.CodeNotCertified, "juror is not certified")
	}

	added := false
	err = s.cases.Mutate(ctx, caseID, func(c *casemodels.LegalCase) error {
		if err := authz.RequireJudge(c, caller); err != nil {
			return err
		}
		if c.IsAuthorized(jurorID) {
			return nil
		}
		if c.AuthorizationFrozen {
			return dErrors.New(dErrors.CodeInvalidInput, "authorization frozen after first vote")
		}
		c.Authorized[jurorID] = struct{}{}
		added = true
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeNotCaseJudge) {
			s.metrics.IncrementDenied()
		}
		return err
	}

	if added {
		if s.metrics != nil {
			s.metrics.IncrementAuthorized()
		}
		if s.publisher != nil {
			_ = s.publisher.Publish(ctx, events.JurorAuthorized(caseID, jurorID, requestcontext.Now(ctx)))
		}
		s.logger.InfoContext(ctx, "juror authorized", "case_id", caseID, "juror", jurorID)
	}
	return nil
}

// AuthorizeBatch applies Authorize element-wise and stops at the first
// failure.
func (s *Service) AuthorizeBatch(ctx context.Context, caseID id.CaseID, jurorIDs []id.JurorID) error {
	for _, jurorID := range jurorIDs {
		if err := s.Authorize(ctx, caseID, jurorID); err != nil {
			return err
		}
	}
	return nil
}

// IsAuthorized is a pure query against the case's authorized set.
func (s *Service) IsAuthorized(ctx context.Context, caseID id.CaseID, jurorID id.JurorID) (bool, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c.IsAuthorized(jurorID), nil
}

// GetJuror returns the juror record (reputation queries).
func (s *Service) GetJuror(ctx context.Context, jurorID id.JurorID) (*models.Juror, error) {
	juror, err := s.jurors.Get(ctx, jurorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "juror not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load juror")
	}
	return juror, nil
}
