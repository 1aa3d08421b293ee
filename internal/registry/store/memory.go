// Package store persists juror records.
package store

import (
	"context"
	"fmt"
	"sync"

	"verdict/internal/registry/models"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

// Memory is the in-memory juror store.
type Memory struct {
	mu     sync.RWMutex
	jurors map[id.JurorID]*models.Juror
}

func NewMemory() *Memory {
	return &Memory{jurors: make(map[id.JurorID]*models.Juror)}
}

// Put upserts a juror record.
func (s *Memory) Put(ctx context.Context, juror *models.Juror) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *juror
	s.jurors[juror.ID] = &cp
	return nil
}

// Get returns a copy of the juror record.
func (s *Memory) Get(ctx context.Context, jurorID id.JurorID) (*models.Juror, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jurors[jurorID]
	if !ok {
		return nil, fmt.Errorf("juror %s: %w", jurorID, sentinel.ErrNotFound)
	}
	cp := *j
	return &cp, nil
}
