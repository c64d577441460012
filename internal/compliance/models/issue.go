package models

import (
	"time"

	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
)

type IssueType string

const (
	IssueUncategorized         IssueType = "uncategorized"
	IssueUnknownClassification IssueType = "unknown_classification"
	IssueMissingMonth          IssueType = "missing_month"
	IssueMissingEvidence       IssueType = "missing_evidence"
	IssuePossibleDuplicate     IssueType = "possible_duplicate"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type IssueStatus string

const (
	IssueOpen      IssueStatus = "open"
	IssueDismissed IssueStatus = "dismissed"
	IssueResolved  IssueStatus = "resolved"
)

// IssueMeta carries the data an issue was raised about.
type IssueMeta struct {
	TransactionIDs []string `json:"transaction_ids,omitempty"`
	Month          string   `json:"month,omitempty"`
	TaskID         string   `json:"task_id,omitempty"`
	Amount         string   `json:"amount,omitempty"`
	Exact          bool     `json:"exact,omitempty"`
}

// ReviewIssue is a data-quality defect that must be handled before filing.
//
// Invariants:
//   - At most one open issue exists per (business, tax year, type, entity key)
//   - Dismissed and resolved issues are never reopened; a new issue is raised instead
//   - Fingerprint digests the affected data so material changes can be detected
type ReviewIssue struct {
	ID          id.IssueID    `json:"id"`
	BusinessID  id.BusinessID `json:"business_id"`
	TaxYear     int           `json:"tax_year"`
	Type        IssueType     `json:"type"`
	Severity    Severity      `json:"severity"`
	Status      IssueStatus   `json:"status"`
	EntityKey   string        `json:"entity_key"`
	Fingerprint string        `json:"fingerprint"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Meta        IssueMeta     `json:"meta"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
}

func (i *ReviewIssue) IsOpen() bool { return i.Status == IssueOpen }

// CanDismiss checks that the issue is still open.
func (i *ReviewIssue) CanDismiss() error {
	if i.Status != IssueOpen {
		return dErrors.New(dErrors.CodeInvalidState, "only open issues can be dismissed")
	}
	return nil
}

func (i *ReviewIssue) ApplyDismissal(now time.Time) {
	i.Status = IssueDismissed
	i.UpdatedAt = now
}

func (i *ReviewIssue) ApplyResolution(now time.Time) {
	i.Status = IssueResolved
	i.UpdatedAt = now
	resolved := now
	i.ResolvedAt = &resolved
}

func (i ReviewIssue) Clone() ReviewIssue {
	out := i
	out.Meta.TransactionIDs = append([]string(nil), i.Meta.TransactionIDs...)
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}
