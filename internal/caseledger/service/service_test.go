package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/internal/caseledger/store"
	"verdict/internal/encryption"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/requestcontext"
)

const testPrincipal = encryption.Principal("test-core")

type CaseLedgerSuite struct {
	suite.Suite
	ctx      context.Context
	provider *encryption.PaillierProvider
	store    *store.Memory
	service  *Service
	judge    id.JurorID
}

func TestCaseLedgerSuite(t *testing.T) {
	suite.Run(t, new(CaseLedgerSuite))
}

func (s *CaseLedgerSuite) SetupTest() {
	provider, err := encryption.NewPaillier(512)
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.provider = provider
	s.store = store.NewMemory()
	s.judge = id.JurorID(uuid.New())
	s.service = New(s.store, provider, testPrincipal,
		WithJurorBounds(3, 12),
		WithVotingWindow(48*time.Hour),
	)
}

func (s *CaseLedgerSuite) judgeCtx() context.Context {
	return requestcontext.WithCaller(s.ctx, s.judge)
}

func (s *CaseLedgerSuite) validRequest() CreateCaseRequest {
	return CreateCaseRequest{
		Title:          "State v. Doe",
		Description:    "armed robbery",
		EvidenceRef:    "ipfs://bafy...",
		RequiredJurors: 5,
	}
}

func (s *CaseLedgerSuite) TestCreateCase() {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.judgeCtx(), fixed)

	caseID, err := s.service.CreateCase(ctx, s.validRequest())
	s.Require().NoError(err)
	s.Equal(id.CaseID(1), caseID)

	c, err := s.store.Get(s.ctx, caseID)
	s.Require().NoError(err)

	s.Run("metadata and lifecycle", func() {
		s.Equal("State v. Doe", c.Title)
		s.Equal(s.judge, c.Judge)
		s.Equal(fixed, c.CreatedAt)
		s.True(c.Active)
		s.False(c.Revealed)
		s.Empty(c.Authorized)
		s.Empty(c.Votes)
	})

	s.Run("default deadline from the voting window", func() {
		s.Equal(fixed.Add(48*time.Hour), c.Deadline)
	})

	s.Run("counters start at encrypted zero", func() {
		guilty, err := s.provider.Decrypt(s.ctx, c.GuiltyVotes, testPrincipal)
		s.Require().NoError(err)
		innocent, err := s.provider.Decrypt(s.ctx, c.InnocentVotes, testPrincipal)
		s.Require().NoError(err)
		s.Equal(uint32(0), guilty)
		s.Equal(uint32(0), innocent)
	})

	s.Run("counters are distinct ciphertexts", func() {
		s.NotEqual(c.GuiltyVotes.Handle, c.InnocentVotes.Handle)
	})
}

func (s *CaseLedgerSuite) TestCreateCaseRequiresCaller() {
	_, err := s.service.CreateCase(s.ctx, s.validRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *CaseLedgerSuite) TestCreateCaseValidation() {
	tests := []struct {
		name   string
		mutate func(*CreateCaseRequest)
	}{
		{"empty title", func(r *CreateCaseRequest) { r.Title = "  " }},
		{"empty description", func(r *CreateCaseRequest) { r.Description = "" }},
		{"too few jurors", func(r *CreateCaseRequest) { r.RequiredJurors = 2 }},
		{"too many jurors", func(r *CreateCaseRequest) { r.RequiredJurors = 13 }},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.validRequest()
			tt.mutate(&req)
			_, err := s.service.CreateCase(s.judgeCtx(), req)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}

	s.Run("rejected requests never consume an ID", func() {
		caseID, err := s.service.CreateCase(s.judgeCtx(), s.validRequest())
		s.Require().NoError(err)
		s.Equal(id.CaseID(1), caseID)
	})
}

func (s *CaseLedgerSuite) TestGetCaseInfo() {
	caseID, err := s.service.CreateCase(s.judgeCtx(), s.validRequest())
	s.Require().NoError(err)

	info, err := s.service.GetCaseInfo(s.ctx, caseID)
	s.Require().NoError(err)
	s.Equal(caseID, info.ID)
	s.True(info.Active)
	s.Nil(info.Verdict)
	s.Nil(info.GuiltyCount)

	_, err = s.service.GetCaseInfo(s.ctx, id.CaseID(42))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CaseLedgerSuite) TestCloseVoting() {
	caseID, err := s.service.CreateCase(s.judgeCtx(), s.validRequest())
	s.Require().NoError(err)

	s.Run("only the judge may close", func() {
		other := requestcontext.WithCaller(s.ctx, id.JurorID(uuid.New()))
		err := s.service.CloseVoting(other, caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotCaseJudge))
	})

	s.Run("close transitions exactly once", func() {
		s.Require().NoError(s.service.CloseVoting(s.judgeCtx(), caseID))

		c, err := s.store.Get(s.ctx, caseID)
		s.Require().NoError(err)
		s.False(c.Active)

		err = s.service.CloseVoting(s.judgeCtx(), caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeVotingClosed))
	})

	s.Run("unknown case", func() {
		err := s.service.CloseVoting(s.judgeCtx(), id.CaseID(42))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CaseLedgerSuite) TestCloseExpired() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expired := s.validRequest()
	expired.Deadline = now.Add(-time.Hour)
	expiredID, err := s.service.CreateCase(s.judgeCtx(), expired)
	s.Require().NoError(err)

	open := s.validRequest()
	open.Deadline = now.Add(time.Hour)
	openID, err := s.service.CreateCase(s.judgeCtx(), open)
	s.Require().NoError(err)

	closed, err := s.service.CloseExpired(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(1, closed)

	c, err := s.store.Get(s.ctx, expiredID)
	s.Require().NoError(err)
	s.False(c.Active)

	c, err = s.store.Get(s.ctx, openID)
	s.Require().NoError(err)
	s.True(c.Active)

	s.Run("sweep is idempotent", func() {
		closed, err := s.service.CloseExpired(s.ctx, now)
		s.Require().NoError(err)
		s.Equal(0, closed)
	})
}
