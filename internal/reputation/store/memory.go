// Package store persists alignment disclosures, one per (case, juror).
package store

import (
	"context"
	"fmt"
	"sync"

	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

type key struct {
	caseID id.CaseID
	juror  id.JurorID
}

// Memory is the in-memory disclosure store.
type Memory struct {
	mu        sync.Mutex
	disclosed map[key]bool
}

func NewMemory() *Memory {
	return &Memory{disclosed: make(map[key]bool)}
}

// Record stores a disclosure. Returns ErrConflict when the juror already
// disclosed for this case.
func (s *Memory) Record(ctx context.Context, caseID id.CaseID, juror id.JurorID, aligned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{caseID: caseID, juror: juror}
	if _, ok := s.disclosed[k]; ok {
		return fmt.Errorf("disclosure for case %d juror %s: %w", caseID, juror, sentinel.ErrConflict)
	}
	s.disclosed[k] = aligned
	return nil
}
