package score

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

// InMemory keeps the latest score snapshot per business and tax year.
// Snapshots are replaced whole, never merged.
type InMemory struct {
	mu     sync.RWMutex
	scores map[yearKey]models.TaxSafetyScore
}

func NewInMemory() *InMemory {
	return &InMemory{scores: make(map[yearKey]models.TaxSafetyScore)}
}

func (s *InMemory) Save(_ context.Context, score *models.TaxSafetyScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[yearKey{businessID: score.BusinessID, taxYear: score.TaxYear}] = *score
	return nil
}

func (s *InMemory) Latest(_ context.Context, businessID id.BusinessID, taxYear int) (*models.TaxSafetyScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[yearKey{businessID: businessID, taxYear: taxYear}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &score, nil
}
