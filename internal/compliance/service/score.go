package service

import (
	"context"
	"errors"
	"fmt"

	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/obligation"
	"taxsafe/internal/compliance/scoring"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/audit"
	"taxsafe/pkg/platform/sentinel"
)

// Score computes a fresh tax-safety snapshot from the latest evaluation,
// its obligations and the year's transactions, and stores it.
func (s *Service) Score(ctx context.Context, businessID id.BusinessID, taxYear int) (_ *models.TaxSafetyScore, err error) {
	ctx, end := s.track(ctx, "compliance.Score", businessAttrs(businessID, taxYear)...)
	defer func() { end(err) }()

	if err := validateTaxYear(taxYear); err != nil {
		return nil, err
	}

	hasEligibility := true
	if _, err := s.deps.Evaluations.Latest(ctx, businessID, taxYear); err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evaluation")
		}
		hasEligibility = false
	}

	obligations, err := s.deps.Obligations.ListByYear(ctx, businessID, taxYear)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load obligations")
	}
	now := s.now(ctx)
	obligations = obligation.Reclassify(obligations, now)
	txs, err := s.deps.Transactions.ListTransactions(ctx, businessID, taxYear)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transactions")
	}

	score := scoring.Score(scoring.Input{
		BusinessID:     businessID,
		TaxYear:        taxYear,
		HasEligibility: hasEligibility,
		Obligations:    obligations,
		Transactions:   txs,
		Now:            now,
	})
	if err := s.deps.Scores.Save(ctx, &score); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save score")
	}

	s.logAudit(ctx, audit.EventScoreComputed, audit.Event{
		Subject:    businessID.String(),
		BusinessID: businessID.String(),
		TaxYear:    taxYear,
		Detail:     fmt.Sprintf("score=%d band=%s", score.Score, score.Band),
	}, "business_id", businessID.String(), "tax_year", taxYear, "score", score.Score, "band", string(score.Band))
	s.metrics.IncrementScore(string(score.Band))

	return &score, nil
}

// LatestScore returns the last stored snapshot without recomputing.
func (s *Service) LatestScore(ctx context.Context, businessID id.BusinessID, taxYear int) (*models.TaxSafetyScore, error) {
	score, err := s.deps.Scores.Latest(ctx, businessID, taxYear)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "score not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load score")
	}
	return score, nil
}
