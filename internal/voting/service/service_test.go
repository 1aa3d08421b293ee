package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"verdict/internal/caseledger/models"
	caseservice "verdict/internal/caseledger/service"
	"verdict/internal/caseledger/store"
	"verdict/internal/encryption"
	"verdict/internal/events"
	eventsmemory "verdict/internal/events/memory"
	"verdict/internal/voting/commitments"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/requestcontext"
)

const testPrincipal = encryption.Principal("test-core")

// testKeyBits keeps key generation fast; production sizing happens in main.
const testKeyBits = 512

type VotingSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.Memory
	sink   *eventsmemory.Sink
	cases  *caseservice.Service
	engine *Service
	judge  id.JurorID
}

func TestVotingSuite(t *testing.T) {
	suite.Run(t, new(VotingSuite))
}

func (s *VotingSuite) SetupTest() {
	provider, err := encryption.NewPaillier(testKeyBits)
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.store = store.NewMemory()
	s.sink = eventsmemory.NewSink()
	s.judge = id.JurorID(uuid.New())
	s.cases = caseservice.New(s.store, provider, testPrincipal)
	s.engine = New(s.store, provider, testPrincipal,
		WithPublisher(s.sink),
		WithCommitmentRecorder(commitments.NewMemory()),
	)
}

func (s *VotingSuite) judgeCtx() context.Context {
	return requestcontext.WithCaller(s.ctx, s.judge)
}

// newCase creates a case judged by s.judge with the given jurors authorized.
func (s *VotingSuite) newCase(jurors ...id.JurorID) id.CaseID {
	caseID, err := s.cases.CreateCase(s.judgeCtx(), caseservice.CreateCaseRequest{
		Title:          "State v. Doe",
		Description:    "armed robbery",
		RequiredJurors: 3,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Mutate(s.ctx, caseID, func(c *models.LegalCase) error {
		for _, j := range jurors {
			c.Authorized[j] = struct{}{}
		}
		return nil
	}))
	return caseID
}

func (s *VotingSuite) vote(caseID id.CaseID, juror id.JurorID, choice uint8) error {
	return s.engine.CastVote(requestcontext.WithCaller(s.ctx, juror), caseID, choice, nil)
}

func (s *VotingSuite) TestTallyAndReveal() {
	jurors := []id.JurorID{id.JurorID(uuid.New()), id.JurorID(uuid.New()), id.JurorID(uuid.New())}
	caseID := s.newCase(jurors...)

	s.Require().NoError(s.vote(caseID, jurors[0], 1))
	s.Require().NoError(s.vote(caseID, jurors[1], 1))
	s.Require().NoError(s.vote(caseID, jurors[2], 0))

	s.Run("tallies stay hidden before reveal", func() {
		c, err := s.store.Get(s.ctx, caseID)
		s.Require().NoError(err)
		info := c.Snapshot()
		s.Nil(info.GuiltyCount)
		s.Nil(info.InnocentCount)
		s.Nil(info.Verdict)
		s.Equal(3, info.VotesCast)
	})

	s.Run("reveal decrypts both counters", func() {
		result, err := s.engine.RevealResults(s.judgeCtx(), caseID)
		s.Require().NoError(err)
		s.True(result.Verdict)
		s.Equal(uint32(2), result.GuiltyCount)
		s.Equal(uint32(1), result.InnocentCount)
		s.Equal(uint32(3), result.JurorsVoted)
	})

	s.Run("revealed snapshot exposes the tallies", func() {
		c, err := s.store.Get(s.ctx, caseID)
		s.Require().NoError(err)
		info := c.Snapshot()
		s.Require().NotNil(info.Verdict)
		s.True(*info.Verdict)
		s.Equal(uint32(2), *info.GuiltyCount)
		s.Equal(uint32(1), *info.InnocentCount)
		s.False(info.Active)
	})
}

func (s *VotingSuite) TestCastVoteRejections() {
	juror := id.JurorID(uuid.New())
	caseID := s.newCase(juror)

	s.Run("unauthenticated caller", func() {
		err := s.engine.CastVote(s.ctx, caseID, 1, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown case", func() {
		err := s.vote(id.CaseID(999), juror, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid choice", func() {
		err := s.vote(caseID, juror, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidVote))
	})

	s.Run("unauthorized juror", func() {
		err := s.vote(caseID, id.JurorID(uuid.New()), 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("second vote by same juror", func() {
		s.Require().NoError(s.vote(caseID, juror, 1))
		err := s.vote(caseID, juror, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVoted))
	})

	s.Run("rejected votes leave no record", func() {
		c, err := s.store.Get(s.ctx, caseID)
		s.Require().NoError(err)
		s.Equal(1, c.VoteCount())
	})

	s.Run("closed case", func() {
		closedID := s.newCase(juror)
		s.Require().NoError(s.cases.CloseVoting(s.judgeCtx(), closedID))
		err := s.vote(closedID, juror, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeVotingClosed))
	})
}

func (s *VotingSuite) TestRevealGuards() {
	juror := id.JurorID(uuid.New())
	caseID := s.newCase(juror)
	s.Require().NoError(s.vote(caseID, juror, 1))

	s.Run("unauthenticated caller", func() {
		_, err := s.engine.RevealResults(s.ctx, caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("non-judge caller", func() {
		_, err := s.engine.RevealResults(requestcontext.WithCaller(s.ctx, juror), caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotCaseJudge))
	})

	s.Run("first reveal succeeds and closes the case", func() {
		result, err := s.engine.RevealResults(s.judgeCtx(), caseID)
		s.Require().NoError(err)
		s.True(result.Verdict)

		c, err := s.store.Get(s.ctx, caseID)
		s.Require().NoError(err)
		s.False(c.Active)
		s.True(c.Revealed)
	})

	s.Run("second reveal fails and re-emits nothing", func() {
		_, err := s.engine.RevealResults(s.judgeCtx(), caseID)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevealed))
		s.Len(s.sink.ByKind(events.KindCaseRevealed), 1)
	})
}

func (s *VotingSuite) TestZeroVoteRevealResolvesToInnocent() {
	caseID := s.newCase()

	result, err := s.engine.RevealResults(s.judgeCtx(), caseID)
	s.Require().NoError(err)
	s.False(result.Verdict)
	s.Equal(uint32(0), result.GuiltyCount)
	s.Equal(uint32(0), result.InnocentCount)
}

func (s *VotingSuite) TestTieResolvesToInnocent() {
	jurors := []id.JurorID{id.JurorID(uuid.New()), id.JurorID(uuid.New())}
	caseID := s.newCase(jurors...)
	s.Require().NoError(s.vote(caseID, jurors[0], 1))
	s.Require().NoError(s.vote(caseID, jurors[1], 0))

	result, err := s.engine.RevealResults(s.judgeCtx(), caseID)
	s.Require().NoError(err)
	s.False(result.Verdict)
	s.Equal(uint32(1), result.GuiltyCount)
	s.Equal(uint32(1), result.InnocentCount)
}

func (s *VotingSuite) TestFirstVoteFreezesAuthorization() {
	juror := id.JurorID(uuid.New())
	caseID := s.newCase(juror)

	c, err := s.store.Get(s.ctx, caseID)
	s.Require().NoError(err)
	s.False(c.AuthorizationFrozen)

	s.Require().NoError(s.vote(caseID, juror, 0))

	c, err = s.store.Get(s.ctx, caseID)
	s.Require().NoError(err)
	s.True(c.AuthorizationFrozen)
}

func (s *VotingSuite) TestVoteCastEventCarriesNoChoice() {
	juror := id.JurorID(uuid.New())
	caseID := s.newCase(juror)
	commitment := commitments.Digest(caseID, juror, 1, []byte("salt"))

	err := s.engine.CastVote(requestcontext.WithCaller(s.ctx, juror), caseID, 1, commitment)
	s.Require().NoError(err)

	cast := s.sink.ByKind(events.KindVoteCast)
	s.Require().Len(cast, 1)
	s.Equal(caseID, cast[0].CaseID)
	s.Equal(juror, cast[0].Juror)

	payload, err := json.Marshal(cast[0])
	s.Require().NoError(err)
	s.NotContains(string(payload), "choice")
}

func (s *VotingSuite) TestConcurrentVotesAllLand() {
	const jurorCount = 8
	jurors := make([]id.JurorID, jurorCount)
	for i := range jurors {
		jurors[i] = id.JurorID(uuid.New())
	}
	caseID := s.newCase(jurors...)

	var wg sync.WaitGroup
	errs := make([]error, jurorCount)
	for i, j := range jurors {
		wg.Add(1)
		go func(i int, j id.JurorID) {
			defer wg.Done()
			errs[i] = s.vote(caseID, j, uint8(i%2))
		}(i, j)
	}
	wg.Wait()

	for _, err := range errs {
		s.Require().NoError(err)
	}

	result, err := s.engine.RevealResults(s.judgeCtx(), caseID)
	s.Require().NoError(err)
	s.Equal(uint32(jurorCount), result.GuiltyCount+result.InnocentCount)
	s.Equal(uint32(jurorCount/2), result.GuiltyCount)
}

func (s *VotingSuite) TestRepeatedCommitmentStillAccepted() {
	jurors := []id.JurorID{id.JurorID(uuid.New()), id.JurorID(uuid.New())}
	caseID := s.newCase(jurors...)
	commitment := []byte("identical-commitment")

	s.Require().NoError(s.engine.CastVote(requestcontext.WithCaller(s.ctx, jurors[0]), caseID, 1, commitment))
	s.Require().NoError(s.engine.CastVote(requestcontext.WithCaller(s.ctx, jurors[1]), caseID, 0, commitment))

	c, err := s.store.Get(s.ctx, caseID)
	s.Require().NoError(err)
	s.Equal(2, c.VoteCount())
}
