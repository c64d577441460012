// Package store holds an in-memory copy of the business data the compliance
// engine reads: profiles, bookkeeping transactions, checklist tasks and filed
// periods. The server uses it in development and tests seed it directly.
package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/sentinel"
)

type InMemory struct {
	mu           sync.RWMutex
	profiles     map[id.BusinessID]models.Profile
	transactions map[id.BusinessID]map[string]models.Transaction
	tasks        map[id.BusinessID]map[string]models.ComplianceTask
	fulfilled    map[id.BusinessID]map[models.PeriodKey]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		profiles:     make(map[id.BusinessID]models.Profile),
		transactions: make(map[id.BusinessID]map[string]models.Transaction),
		tasks:        make(map[id.BusinessID]map[string]models.ComplianceTask),
		fulfilled:    make(map[id.BusinessID]map[models.PeriodKey]struct{}),
	}
}

// PutProfile replaces the business profile.
func (s *InMemory) PutProfile(_ context.Context, businessID id.BusinessID, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[businessID] = maps.Clone(profile)
	return nil
}

// PutTransactions inserts or replaces transactions by ID.
func (s *InMemory) PutTransactions(_ context.Context, businessID id.BusinessID, txs ...models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.transactions[businessID]
	if !ok {
		byID = make(map[string]models.Transaction)
		s.transactions[businessID] = byID
	}
	for _, tx := range txs {
		tx.BusinessID = businessID
		tx.EvidenceIDs = slices.Clone(tx.EvidenceIDs)
		byID[tx.ID] = tx
	}
	return nil
}

// PutTasks inserts or replaces checklist tasks by ID.
func (s *InMemory) PutTasks(_ context.Context, businessID id.BusinessID, tasks ...models.ComplianceTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.tasks[businessID]
	if !ok {
		byID = make(map[string]models.ComplianceTask)
		s.tasks[businessID] = byID
	}
	for _, task := range tasks {
		task.BusinessID = businessID
		task.DocumentIDs = slices.Clone(task.DocumentIDs)
		byID[task.ID] = task
	}
	return nil
}

// MarkFulfilled records that the periods were filed. Marking twice is a no-op.
func (s *InMemory) MarkFulfilled(_ context.Context, businessID id.BusinessID, keys ...models.PeriodKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.fulfilled[businessID]
	if !ok {
		set = make(map[models.PeriodKey]struct{})
		s.fulfilled[businessID] = set
	}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return nil
}

func (s *InMemory) GetProfile(_ context.Context, businessID id.BusinessID) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[businessID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return maps.Clone(profile), nil
}

// ListTransactions returns the transactions dated in taxYear, oldest first.
func (s *InMemory) ListTransactions(_ context.Context, businessID id.BusinessID, taxYear int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, 0)
	for _, tx := range s.transactions[businessID] {
		if tx.Date.UTC().Year() != taxYear {
			continue
		}
		tx.EvidenceIDs = slices.Clone(tx.EvidenceIDs)
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemory) ListTasks(_ context.Context, businessID id.BusinessID, taxYear int) ([]models.ComplianceTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ComplianceTask, 0)
	for _, task := range s.tasks[businessID] {
		if task.TaxYear != taxYear {
			continue
		}
		task.DocumentIDs = slices.Clone(task.DocumentIDs)
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListFulfilled returns the subset of keys that were filed, in the order
// given, without repeats.
func (s *InMemory) ListFulfilled(_ context.Context, businessID id.BusinessID, keys []models.PeriodKey) ([]models.PeriodKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filed := s.fulfilled[businessID]
	out := make([]models.PeriodKey, 0)
	seen := make(map[models.PeriodKey]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := filed[k]; ok {
			out = append(out, k)
		}
	}
	return out, nil
}

// BusinessIDs lists every business with a profile, in a stable order.
func (s *InMemory) BusinessIDs() []id.BusinessID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.BusinessID, 0, len(s.profiles))
	for businessID := range s.profiles {
		out = append(out, businessID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
