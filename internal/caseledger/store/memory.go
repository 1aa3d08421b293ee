// Package store persists legal case aggregates.
//
// Both implementations give the same guarantee: Mutate applies a change to
// one case atomically, and Get returns a consistent snapshot that shares no
// memory with the stored aggregate.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"verdict/internal/caseledger/models"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

// Memory is the in-memory case store. A single mutex serializes all
// mutations, which directly models the one-transition-at-a-time ledger the
// protocol assumes.
type Memory struct {
	mu     sync.RWMutex
	cases  map[id.CaseID]*models.LegalCase
	nextID id.CaseID
}

func NewMemory() *Memory {
	return &Memory{
		cases:  make(map[id.CaseID]*models.LegalCase),
		nextID: 1,
	}
}

// Create assigns the next sequential ID and stores the aggregate.
func (s *Memory) Create(ctx context.Context, c *models.LegalCase) (id.CaseID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextID
	s.nextID++
	s.cases[c.ID] = c.Clone()
	return c.ID, nil
}

// Get returns a deep-copied snapshot of the aggregate.
func (s *Memory) Get(ctx context.Context, caseID id.CaseID) (*models.LegalCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("case %d: %w", caseID, sentinel.ErrNotFound)
	}
	return c.Clone(), nil
}

// Mutate runs fn against a working copy of the aggregate and commits the
// copy only when fn succeeds. A failed fn leaves the stored state untouched,
// and no reader ever observes the working copy.
func (s *Memory) Mutate(ctx context.Context, caseID id.CaseID, fn func(*models.LegalCase) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[caseID]
	if !ok {
		return fmt.Errorf("case %d: %w", caseID, sentinel.ErrNotFound)
	}
	working := c.Clone()
	if err := fn(working); err != nil {
		return err
	}
	s.cases[caseID] = working
	return nil
}

// ListOpenPastDeadline returns IDs of active cases whose voting deadline has
// passed. The deadline sweeper drives closeVoting from this.
func (s *Memory) ListOpenPastDeadline(ctx context.Context, now time.Time) ([]id.CaseID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []id.CaseID
	for cid, c := range s.cases {
		if c.Active && !c.Deadline.IsZero() && c.Deadline.Before(now) {
			out = append(out, cid)
		}
	}
	return out, nil
}
