// Package memory is the in-process rule-set store used in development and
// tests. Activation swaps the active rule set under a single lock.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/sentinel"
)

type Store struct {
	mu       sync.RWMutex
	sets     map[id.RuleSetID]*models.RuleSet
	versions map[string]id.RuleSetID
	active   *id.RuleSetID
}

func New() *Store {
	return &Store{
		sets:     make(map[id.RuleSetID]*models.RuleSet),
		versions: make(map[string]id.RuleSetID),
	}
}

// Create stores a new rule set. Versions are unique.
func (s *Store) Create(_ context.Context, rs *models.RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[rs.Version]; ok {
		return fmt.Errorf("rule set version %q: %w", rs.Version, sentinel.ErrConflict)
	}
	if _, ok := s.sets[rs.ID]; ok {
		return fmt.Errorf("rule set %s: %w", rs.ID, sentinel.ErrConflict)
	}
	s.sets[rs.ID] = rs.Clone()
	s.versions[rs.Version] = rs.ID
	if rs.IsActive() {
		s.archiveActiveLocked(rs.UpdatedAt)
		activeID := rs.ID
		s.active = &activeID
	}
	return nil
}

func (s *Store) FindByID(_ context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.sets[ruleSetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rs.Clone(), nil
}

// Active returns the rule set currently in force.
func (s *Store) Active(_ context.Context) (*models.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.sets[*s.active].Clone(), nil
}

// List returns every rule set, newest effective date first.
func (s *Store) List(_ context.Context) ([]*models.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.RuleSet, 0, len(s.sets))
	for _, rs := range s.sets {
		out = append(out, rs.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveFrom.Equal(out[j].EffectiveFrom) {
			return out[i].EffectiveFrom.After(out[j].EffectiveFrom)
		}
		return out[i].Version > out[j].Version
	})
	return out, nil
}

// Update applies fn to a copy of the rule set and stores it when fn succeeds.
func (s *Store) Update(_ context.Context, ruleSetID id.RuleSetID, fn func(*models.RuleSet) error) (*models.RuleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sets[ruleSetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	if working.IsActive() && (s.active == nil || *s.active != ruleSetID) {
		return nil, fmt.Errorf("rule set %s cannot become active through update: %w", ruleSetID, sentinel.ErrInvalidState)
	}
	if stored.IsActive() && !working.IsActive() {
		s.active = nil
	}
	s.sets[ruleSetID] = working.Clone()
	return working, nil
}

// Activate makes the rule set active and archives the previous one in the
// same critical section.
func (s *Store) Activate(_ context.Context, ruleSetID id.RuleSetID, now time.Time) (*models.RuleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.sets[ruleSetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := rs.CanActivate(); err != nil {
		return nil, err
	}
	s.archiveActiveLocked(now)
	rs.Status = models.RuleSetStatusActive
	rs.UpdatedAt = now
	activeID := ruleSetID
	s.active = &activeID
	return rs.Clone(), nil
}

func (s *Store) archiveActiveLocked(now time.Time) {
	if s.active == nil {
		return
	}
	prev := s.sets[*s.active]
	prev.Status = models.RuleSetStatusArchived
	prev.UpdatedAt = now
	s.active = nil
}

// MarkReferenced flags the rule set as used by a persisted evaluation.
func (s *Store) MarkReferenced(_ context.Context, ruleSetID id.RuleSetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.sets[ruleSetID]
	if !ok {
		return sentinel.ErrNotFound
	}
	rs.Referenced = true
	return nil
}
