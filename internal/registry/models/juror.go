package models

import (
	"time"

	id "verdict/pkg/domain"
)

// Juror is a certified participant. Created on certification, never
// deleted; Reputation is mutated only by the reputation ledger after a case
// reveal.
type Juror struct {
	ID          id.JurorID
	Certified   bool
	Reputation  int
	CertifiedAt time.Time
}
