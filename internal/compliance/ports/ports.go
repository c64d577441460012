// Package ports declares what the compliance engine consumes from its
// collaborators. Readers return sentinel.ErrNotFound for missing records.
package ports

import (
	"context"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/audit"
)

// ProfileReader loads the flat business profile rules are evaluated against.
type ProfileReader interface {
	GetProfile(ctx context.Context, businessID id.BusinessID) (models.Profile, error)
}

// TransactionReader lists bookkeeping entries for a tax year.
type TransactionReader interface {
	ListTransactions(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.Transaction, error)
}

// TaskReader lists compliance checklist items for a tax year.
type TaskReader interface {
	ListTasks(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.ComplianceTask, error)
}

// FulfillmentReader answers which of the given reporting periods are
// already filed. Lookups are by exact key, not by tax year.
type FulfillmentReader interface {
	ListFulfilled(ctx context.Context, businessID id.BusinessID, keys []models.PeriodKey) ([]models.PeriodKey, error)
}

// RuleSetReader answers which rule set is in force. Active returns
// sentinel.ErrNotFound when no rule set is active.
type RuleSetReader interface {
	Active(ctx context.Context) (*models.RuleSet, error)
	FindByID(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error)
	MarkReferenced(ctx context.Context, ruleSetID id.RuleSetID) error
}

type EvaluationStore interface {
	Save(ctx context.Context, evaluation *models.Evaluation) error
	Latest(ctx context.Context, businessID id.BusinessID, taxYear int) (*models.Evaluation, error)
}

// ObligationStore keeps the obligations of the latest evaluation per year.
type ObligationStore interface {
	ReplaceForYear(ctx context.Context, businessID id.BusinessID, taxYear int, obligations []models.Obligation) error
	ListByYear(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.Obligation, error)
}

// IssueStore persists review issues. ApplyScan writes the outcome of one
// scan atomically.
type IssueStore interface {
	ListByYear(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.ReviewIssue, error)
	ApplyScan(ctx context.Context, created, changed []models.ReviewIssue) error
	Execute(ctx context.Context, issueID id.IssueID, validate func(*models.ReviewIssue) error, mutate func(*models.ReviewIssue)) (*models.ReviewIssue, error)
}

type ScoreStore interface {
	Save(ctx context.Context, score *models.TaxSafetyScore) error
	Latest(ctx context.Context, businessID id.BusinessID, taxYear int) (*models.TaxSafetyScore, error)
}

// ExpansionCache memoizes deadline expansion. A miss is reported with
// found=false and a nil error.
type ExpansionCache interface {
	Get(ctx context.Context, key string) (instances []models.DeadlineInstance, found bool, err error)
	Set(ctx context.Context, key string, instances []models.DeadlineInstance) error
}

// AuditPort matches audit.Emitter; it is declared here to keep the engine's
// dependencies in one place.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
