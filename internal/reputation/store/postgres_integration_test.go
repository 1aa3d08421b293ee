//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
	"verdict/pkg/testutil/containers"
)

type DisclosureStoreSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *Postgres
}

func TestDisclosureStoreSuite(t *testing.T) {
	suite.Run(t, new(DisclosureStoreSuite))
}

func (s *DisclosureStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *DisclosureStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

// seedCase satisfies the foreign key from disclosures to cases.
func (s *DisclosureStoreSuite) seedCase() id.CaseID {
	var caseID int64
	err := s.pg.DB.QueryRowContext(s.ctx, `
		INSERT INTO cases (
			title, description, evidence_ref, judge, created_at, deadline,
			required_jurors, active, revealed, verdict, guilty_count, innocent_count,
			guilty_ct, guilty_handle, innocent_ct, innocent_handle, auth_frozen
		)
		VALUES ('t', 'd', '', $1, $2, $3, 3, false, true, true, 2, 1, $4, $5, $6, $7, true)
		RETURNING id
	`, uuid.New(), time.Now(), time.Now(), []byte{1}, uuid.New(), []byte{2}, uuid.New()).Scan(&caseID)
	s.Require().NoError(err)
	return id.CaseID(caseID)
}

func (s *DisclosureStoreSuite) TestRecord() {
	caseID := s.seedCase()
	juror := id.JurorID(uuid.New())

	s.Require().NoError(s.store.Record(s.ctx, caseID, juror, true))

	s.Run("duplicate disclosure conflicts", func() {
		err := s.store.Record(s.ctx, caseID, juror, true)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("same juror on another case is fine", func() {
		other := s.seedCase()
		s.Require().NoError(s.store.Record(s.ctx, other, juror, false))
	})
}
