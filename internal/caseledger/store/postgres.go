package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"verdict/internal/caseledger/models"
	"verdict/internal/encryption"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

// Adopter re-registers ciphertexts loaded from disk with the encryption
// provider, restoring the core's access grant. The provider's grant table is
// process-local; persisted counters outlive the process.
type Adopter interface {
	Adopt(ct encryption.Ciphertext, principals ...encryption.Principal)
}

// Postgres persists case aggregates across the cases, case_jurors and
// vote_records tables. This store is pure I/O; all precondition checks
// belong in the services.
type Postgres struct {
	db        *sql.DB
	adopter   Adopter
	principal encryption.Principal
}

// NewPostgres constructs a PostgreSQL-backed case store. adopter may be nil
// in tests that never decrypt.
func NewPostgres(db *sql.DB, adopter Adopter, principal encryption.Principal) *Postgres {
	return &Postgres{db: db, adopter: adopter, principal: principal}
}

func (s *Postgres) Create(ctx context.Context, c *models.LegalCase) (id.CaseID, error) {
	query := `
		INSERT INTO cases (
			title, description, evidence_ref, judge, created_at, deadline,
			required_jurors, active, revealed, verdict, guilty_count, innocent_count,
			guilty_ct, guilty_handle, innocent_ct, innocent_handle, auth_frozen
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	var caseID int64
	err := s.db.QueryRowContext(ctx, query,
		c.Title, c.Description, c.EvidenceRef, uuid.UUID(c.Judge), c.CreatedAt, c.Deadline,
		c.RequiredJurors, c.Active, c.Revealed, c.Verdict, int64(c.GuiltyCount), int64(c.InnocentCount),
		c.GuiltyVotes.Bytes, c.GuiltyVotes.Handle, c.InnocentVotes.Bytes, c.InnocentVotes.Handle,
		c.AuthorizationFrozen,
	).Scan(&caseID)
	if err != nil {
		return 0, fmt.Errorf("create case: %w", err)
	}
	c.ID = id.CaseID(caseID)
	return c.ID, nil
}

func (s *Postgres) Get(ctx context.Context, caseID id.CaseID) (*models.LegalCase, error) {
	return s.load(ctx, s.db, caseID, false)
}

// Mutate loads the aggregate under a row lock, applies fn, and writes the
// whole aggregate back in the same transaction. Any error rolls back, so a
// failed operation commits nothing.
func (s *Postgres) Mutate(ctx context.Context, caseID id.CaseID, fn func(*models.LegalCase) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mutate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := s.load(ctx, tx, caseID, true)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	if err := s.save(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mutate: %w", err)
	}
	return nil
}

func (s *Postgres) ListOpenPastDeadline(ctx context.Context, now time.Time) ([]id.CaseID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM cases WHERE active AND deadline < $1`, now)
	if err != nil {
		return nil, fmt.Errorf("list expired cases: %w", err)
	}
	defer rows.Close()

	var out []id.CaseID
	for rows.Next() {
		var cid int64
		if err := rows.Scan(&cid); err != nil {
			return nil, fmt.Errorf("scan expired case: %w", err)
		}
		out = append(out, id.CaseID(cid))
	}
	return out, rows.Err()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) load(ctx context.Context, q querier, caseID id.CaseID, forUpdate bool) (*models.LegalCase, error) {
	query := `
		SELECT id, title, description, evidence_ref, judge, created_at, deadline,
		       required_jurors, active, revealed, verdict, guilty_count, innocent_count,
		       guilty_ct, guilty_handle, innocent_ct, innocent_handle, auth_frozen
		FROM cases WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	c := &models.LegalCase{
		Authorized: make(map[id.JurorID]struct{}),
		Votes:      make(map[id.JurorID]*models.VoteRecord),
	}
	var (
		cid                          int64
		judge                        uuid.UUID
		guiltyCount, innocentCount   int64
		guiltyHandle, innocentHandle uuid.UUID
	)
	err := q.QueryRowContext(ctx, query, int64(caseID)).Scan(
		&cid, &c.Title, &c.Description, &c.EvidenceRef, &judge, &c.CreatedAt, &c.Deadline,
		&c.RequiredJurors, &c.Active, &c.Revealed, &c.Verdict, &guiltyCount, &innocentCount,
		&c.GuiltyVotes.Bytes, &guiltyHandle, &c.InnocentVotes.Bytes, &innocentHandle,
		&c.AuthorizationFrozen,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("case %d: %w", caseID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("load case: %w", err)
	}
	c.ID = id.CaseID(cid)
	c.Judge = id.JurorID(judge)
	c.GuiltyCount = uint32(guiltyCount)
	c.InnocentCount = uint32(innocentCount)
	c.GuiltyVotes.Handle = guiltyHandle
	c.InnocentVotes.Handle = innocentHandle

	jRows, err := q.QueryContext(ctx,
		`SELECT juror_id FROM case_jurors WHERE case_id = $1`, cid)
	if err != nil {
		return nil, fmt.Errorf("load authorized jurors: %w", err)
	}
	defer jRows.Close()
	for jRows.Next() {
		var juror uuid.UUID
		if err := jRows.Scan(&juror); err != nil {
			return nil, fmt.Errorf("scan authorized juror: %w", err)
		}
		c.Authorized[id.JurorID(juror)] = struct{}{}
	}
	if err := jRows.Err(); err != nil {
		return nil, err
	}

	vRows, err := q.QueryContext(ctx,
		`SELECT juror_id, ciphertext, handle, commitment, cast_at
		 FROM vote_records WHERE case_id = $1`, cid)
	if err != nil {
		return nil, fmt.Errorf("load vote records: %w", err)
	}
	defer vRows.Close()
	for vRows.Next() {
		rec := &models.VoteRecord{HasVoted: true}
		var juror, handle uuid.UUID
		if err := vRows.Scan(&juror, &rec.Choice.Bytes, &handle, &rec.Commitment, &rec.CastAt); err != nil {
			return nil, fmt.Errorf("scan vote record: %w", err)
		}
		rec.Juror = id.JurorID(juror)
		rec.Choice.Handle = handle
		c.Votes[rec.Juror] = rec
	}
	if err := vRows.Err(); err != nil {
		return nil, err
	}

	if s.adopter != nil {
		s.adopter.Adopt(c.GuiltyVotes, s.principal)
		s.adopter.Adopt(c.InnocentVotes, s.principal)
	}
	return c, nil
}

func (s *Postgres) save(ctx context.Context, q querier, c *models.LegalCase) error {
	_, err := q.ExecContext(ctx, `
		UPDATE cases SET
			active = $2, revealed = $3, verdict = $4,
			guilty_count = $5, innocent_count = $6,
			guilty_ct = $7, guilty_handle = $8,
			innocent_ct = $9, innocent_handle = $10,
			auth_frozen = $11
		WHERE id = $1
	`,
		int64(c.ID), c.Active, c.Revealed, c.Verdict,
		int64(c.GuiltyCount), int64(c.InnocentCount),
		c.GuiltyVotes.Bytes, c.GuiltyVotes.Handle,
		c.InnocentVotes.Bytes, c.InnocentVotes.Handle,
		c.AuthorizationFrozen,
	)
	if err != nil {
		return fmt.Errorf("save case: %w", err)
	}

	// The authorized set only grows and vote records are immutable, so
	// idempotent inserts are sufficient for both.
	for juror := range c.Authorized {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO case_jurors (case_id, juror_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, int64(c.ID), uuid.UUID(juror)); err != nil {
			return fmt.Errorf("save authorized juror: %w", err)
		}
	}
	for _, rec := range c.Votes {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO vote_records (case_id, juror_id, ciphertext, handle, commitment, cast_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`, int64(c.ID), uuid.UUID(rec.Juror), rec.Choice.Bytes, rec.Choice.Handle, rec.Commitment, rec.CastAt); err != nil {
			return fmt.Errorf("save vote record: %w", err)
		}
	}
	return nil
}
