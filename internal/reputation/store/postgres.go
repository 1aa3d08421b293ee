package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

// Postgres persists alignment disclosures.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Record(ctx context.Context, caseID id.CaseID, juror id.JurorID, aligned bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alignment_disclosures (case_id, juror_id, aligned)
		VALUES ($1, $2, $3)
	`, int64(caseID), uuid.UUID(juror), aligned)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on the (case_id, juror_id) primary key.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("disclosure for case %d juror %s: %w", caseID, juror, sentinel.ErrConflict)
		}
		return fmt.Errorf("record disclosure: %w", err)
	}
	return nil
}
