package issue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/sentinel"
)

// openKey identifies the single open issue allowed per detected entity.
type openKey struct {
	businessID id.BusinessID
	taxYear    int
	issueType  models.IssueType
	entityKey  string
}

func keyOf(i *models.ReviewIssue) openKey {
	return openKey{businessID: i.BusinessID, taxYear: i.TaxYear, issueType: i.Type, entityKey: i.EntityKey}
}

// InMemory is a mutex-guarded issue store. It enforces the same
// one-open-issue-per-entity constraint as the partial unique index in
// PostgreSQL.
type InMemory struct {
	mu     sync.RWMutex
	issues map[id.IssueID]models.ReviewIssue
	open   map[openKey]id.IssueID
}

func NewInMemory() *InMemory {
	return &InMemory{
		issues: make(map[id.IssueID]models.ReviewIssue),
		open:   make(map[openKey]id.IssueID),
	}
}

func (s *InMemory) ListByYear(_ context.Context, businessID id.BusinessID, taxYear int) ([]models.ReviewIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ReviewIssue{}
	for _, i := range s.issues {
		if i.BusinessID == businessID && i.TaxYear == taxYear {
			out = append(out, i.Clone())
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID.String() < out[b].ID.String()
	})
	return out, nil
}

// ApplyScan inserts created and overwrites changed in one step. Nothing is
// written when any issue would break the open-issue constraint or refers to
// an unknown id.
func (s *InMemory) ApplyScan(_ context.Context, created, changed []models.ReviewIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := make(map[openKey]id.IssueID, len(s.open))
	for k, v := range s.open {
		open[k] = v
	}
	for i := range changed {
		c := &changed[i]
		prev, ok := s.issues[c.ID]
		if !ok {
			return fmt.Errorf("update issue %s: %w", c.ID, sentinel.ErrNotFound)
		}
		if prev.IsOpen() && open[keyOf(&prev)] == prev.ID {
			delete(open, keyOf(&prev))
		}
		if c.IsOpen() {
			if other, taken := open[keyOf(c)]; taken && other != c.ID {
				return fmt.Errorf("update issue %s: %w", c.ID, sentinel.ErrConflict)
			}
			open[keyOf(c)] = c.ID
		}
	}
	for i := range created {
		c := &created[i]
		if _, exists := s.issues[c.ID]; exists {
			return fmt.Errorf("create issue %s: %w", c.ID, sentinel.ErrConflict)
		}
		if c.IsOpen() {
			if _, taken := open[keyOf(c)]; taken {
				return fmt.Errorf("create issue %s: %w", c.ID, sentinel.ErrConflict)
			}
			open[keyOf(c)] = c.ID
		}
	}

	for _, c := range changed {
		s.issues[c.ID] = c.Clone()
	}
	for _, c := range created {
		s.issues[c.ID] = c.Clone()
	}
	s.open = open
	return nil
}

// Execute runs validate and mutate against the stored issue under the
// store lock and persists the result.
func (s *InMemory) Execute(_ context.Context, issueID id.IssueID, validate func(*models.ReviewIssue) error, mutate func(*models.ReviewIssue)) (*models.ReviewIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.issues[issueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	issue := stored.Clone()
	if err := validate(&issue); err != nil {
		return nil, err
	}
	mutate(&issue)

	if stored.IsOpen() && !issue.IsOpen() {
		delete(s.open, keyOf(&stored))
	}
	s.issues[issueID] = issue.Clone()
	return &issue, nil
}

// FindByID returns a copy of one issue.
func (s *InMemory) FindByID(_ context.Context, issueID id.IssueID) (*models.ReviewIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.issues[issueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := stored.Clone()
	return &out, nil
}
