package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/review"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/audit"
	"taxsafe/pkg/platform/sentinel"
)

// Scan runs the review scanner over the year's data, persists the
// reconciliation and returns the issues open afterwards.
func (s *Service) Scan(ctx context.Context, businessID id.BusinessID, taxYear int) (_ []models.ReviewIssue, err error) {
	ctx, end := s.track(ctx, "compliance.Scan", businessAttrs(businessID, taxYear)...)
	defer func() { end(err) }()

	if err := validateTaxYear(taxYear); err != nil {
		return nil, err
	}

	txs, err := s.deps.Transactions.ListTransactions(ctx, businessID, taxYear)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transactions")
	}
	tasks, err := s.deps.Tasks.ListTasks(ctx, businessID, taxYear)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load compliance tasks")
	}
	existing, err := s.deps.Issues.ListByYear(ctx, businessID, taxYear)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review issues")
	}

	res := review.Scan(review.Input{
		BusinessID:   businessID,
		TaxYear:      taxYear,
		Transactions: txs,
		Tasks:        tasks,
		Existing:     existing,
		Now:          s.now(ctx),
		NewID:        s.newIssueID,
	})

	if res.Changed() {
		changed := append(append([]models.ReviewIssue{}, res.Updated...), res.Resolved...)
		if err := s.deps.Issues.ApplyScan(ctx, res.Created, changed); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save review issues")
		}
	}

	for _, issue := range res.Created {
		s.metrics.IncrementIssueCreated(string(issue.Type))
	}
	s.metrics.AddIssuesResolved(len(res.Resolved))
	s.logAudit(ctx, audit.EventScanCompleted, audit.Event{
		Subject:    businessID.String(),
		BusinessID: businessID.String(),
		TaxYear:    taxYear,
		Detail:     fmt.Sprintf("created=%d updated=%d resolved=%d", len(res.Created), len(res.Updated), len(res.Resolved)),
	}, "business_id", businessID.String(), "tax_year", taxYear,
		"created", len(res.Created), "updated", len(res.Updated), "resolved", len(res.Resolved))

	return res.Open, nil
}

// ListIssues returns every issue raised for the year, whatever its status.
func (s *Service) ListIssues(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.ReviewIssue, error) {
	if err := validateTaxYear(taxYear); err != nil {
		return nil, err
	}
	issues, err := s.deps.Issues.ListByYear(ctx, businessID, taxYear)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review issues")
	}
	return issues, nil
}

// DismissIssue records that a human reviewed an open issue and accepted it.
// Later scans leave it dismissed until its affected data changes.
func (s *Service) DismissIssue(ctx context.Context, issueID id.IssueID) (_ *models.ReviewIssue, err error) {
	ctx, end := s.track(ctx, "compliance.DismissIssue", attribute.String("issue_id", issueID.String()))
	defer func() { end(err) }()

	now := s.now(ctx)
	issue, err := s.deps.Issues.Execute(ctx, issueID,
		func(i *models.ReviewIssue) error { return i.CanDismiss() },
		func(i *models.ReviewIssue) { i.ApplyDismissal(now) },
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "review issue not found")
		case dErrors.HasCode(err, dErrors.CodeInvalidState):
			return nil, err
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to dismiss review issue")
		}
	}

	s.logAudit(ctx, audit.EventIssueDismissed, audit.Event{
		Subject:    issue.ID.String(),
		BusinessID: issue.BusinessID.String(),
		TaxYear:    issue.TaxYear,
		Detail:     string(issue.Type) + " " + issue.EntityKey,
	}, "issue_id", issue.ID.String(), "business_id", issue.BusinessID.String(), "type", string(issue.Type))

	return issue, nil
}
