package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
)

// RefreshResult reports the outcome for one business. Err is set when any
// step failed; earlier steps may still have been persisted.
type RefreshResult struct {
	BusinessID id.BusinessID          `json:"business_id"`
	Score      *models.TaxSafetyScore `json:"score,omitempty"`
	OpenIssues int                    `json:"open_issues"`
	Err        error                  `json:"-"`
}

// Refresh re-evaluates, rescans and rescores many businesses through a
// bounded worker pool. A failing business does not stop the others; only
// cancellation of ctx fails the whole batch. Results keep the input order.
func (s *Service) Refresh(ctx context.Context, businessIDs []id.BusinessID, taxYear int) (_ []RefreshResult, err error) {
	ctx, end := s.track(ctx, "compliance.Refresh",
		attribute.Int("tax_year", taxYear), attribute.Int("businesses", len(businessIDs)))
	defer func() { end(err) }()

	if err := validateTaxYear(taxYear); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]RefreshResult, len(businessIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.refreshConcurrency)
	for i, businessID := range businessIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.refreshOne(gctx, businessID, taxYear)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "refresh cancelled")
	}

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			s.logger.WarnContext(ctx, "refresh failed", "business_id", r.BusinessID.String(), "error", r.Err)
		}
	}
	s.metrics.ObserveRefresh(start, failures)
	s.logger.InfoContext(ctx, "refresh completed", "tax_year", taxYear, "businesses", len(businessIDs), "failures", failures)

	return results, nil
}

func (s *Service) refreshOne(ctx context.Context, businessID id.BusinessID, taxYear int) RefreshResult {
	res := RefreshResult{BusinessID: businessID}
	if _, err := s.Evaluate(ctx, businessID, taxYear); err != nil {
		res.Err = err
		return res
	}
	open, err := s.Scan(ctx, businessID, taxYear)
	if err != nil {
		res.Err = err
		return res
	}
	res.OpenIssues = len(open)
	score, err := s.Score(ctx, businessID, taxYear)
	if err != nil {
		res.Err = err
		return res
	}
	res.Score = score
	return res
}
