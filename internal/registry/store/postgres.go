package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"verdict/internal/registry/models"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

// Postgres persists juror records. Pure I/O; certification and reputation
// rules live in the services.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Put(ctx context.Context, juror *models.Juror) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jurors (id, certified, reputation, certified_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			certified = EXCLUDED.certified,
			reputation = EXCLUDED.reputation
	`, uuid.UUID(juror.ID), juror.Certified, juror.Reputation, juror.CertifiedAt)
	if err != nil {
		return fmt.Errorf("put juror: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, jurorID id.JurorID) (*models.Juror, error) {
	j := &models.Juror{}
	var jid uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, certified, reputation, certified_at FROM jurors WHERE id = $1
	`, uuid.UUID(jurorID)).Scan(&jid, &j.Certified, &j.Reputation, &j.CertifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("juror %s: %w", jurorID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get juror: %w", err)
	}
	j.ID = id.JurorID(jid)
	return j, nil
}
