package obligation

import (
	"context"
	"sort"
	"sync"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
)

type yearKey struct {
	businessID id.BusinessID
	taxYear    int
}

// InMemory holds the obligations of the latest evaluation per business and
// tax year. An unknown business simply has none.
type InMemory struct {
	mu     sync.RWMutex
	byYear map[yearKey][]models.Obligation
}

func NewInMemory() *InMemory {
	return &InMemory{byYear: make(map[yearKey][]models.Obligation)}
}

func (s *InMemory) ReplaceForYear(_ context.Context, businessID id.BusinessID, taxYear int, obligations []models.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byYear[yearKey{businessID: businessID, taxYear: taxYear}] = append([]models.Obligation(nil), obligations...)
	return nil
}

func (s *InMemory) ListByYear(_ context.Context, businessID id.BusinessID, taxYear int) ([]models.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Obligation{}, s.byYear[yearKey{businessID: businessID, taxYear: taxYear}]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}
