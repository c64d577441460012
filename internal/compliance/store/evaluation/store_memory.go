package evaluation

import (
	"context"
	"sync"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/sentinel"
)

type yearKey struct {
	businessID id.BusinessID
	taxYear    int
}

// InMemory keeps every evaluation snapshot; Latest returns the most recent
// per business and year.
type InMemory struct {
	mu      sync.RWMutex
	history map[yearKey][]models.Evaluation
}

func NewInMemory() *InMemory {
	return &InMemory{history: make(map[yearKey][]models.Evaluation)}
}

func (s *InMemory) Save(_ context.Context, evaluation *models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := yearKey{businessID: evaluation.BusinessID, taxYear: evaluation.TaxYear}
	s.history[k] = append(s.history[k], *evaluation)
	return nil
}

func (s *InMemory) Latest(_ context.Context, businessID id.BusinessID, taxYear int) (*models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.history[yearKey{businessID: businessID, taxYear: taxYear}]
	if len(h) == 0 {
		return nil, sentinel.ErrNotFound
	}
	latest := h[len(h)-1]
	return &latest, nil
}

// Count returns the number of snapshots kept for a business and year.
func (s *InMemory) Count(businessID id.BusinessID, taxYear int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history[yearKey{businessID: businessID, taxYear: taxYear}])
}
