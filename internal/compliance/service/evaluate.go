package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/obligation"
	"taxsafe/internal/compliance/resolver"
	"taxsafe/internal/compliance/scheduler"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/audit"
	"taxsafe/pkg/platform/sentinel"
)

const expansionKeyPrefix = "taxsafe:expand:"

// DryRunRequest evaluates a synthetic profile. A nil RuleSetID targets the
// active rule set; any status, drafts included, may be targeted explicitly.
type DryRunRequest struct {
	Profile   models.Profile
	TaxYear   int
	RuleSetID *id.RuleSetID
}

// Evaluate resolves, expands and classifies the business profile against the
// active rule set and persists the snapshot with its obligations.
func (s *Service) Evaluate(ctx context.Context, businessID id.BusinessID, taxYear int) (_ *models.Evaluation, err error) {
	ctx, end := s.track(ctx, "compliance.Evaluate", businessAttrs(businessID, taxYear)...)
	defer func() { end(err) }()

	if err := validateTaxYear(taxYear); err != nil {
		return nil, err
	}
	profile, err := s.deps.Profiles.GetProfile(ctx, businessID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "business profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load business profile")
	}

	rs, err := s.activeRuleSet(ctx)
	if err != nil {
		return nil, err
	}

	lookup := func(instances []models.DeadlineInstance) (obligation.FulfillmentLookup, error) {
		keys := make([]models.PeriodKey, 0, len(instances))
		for _, inst := range instances {
			keys = append(keys, inst.PeriodKey())
		}
		filed, err := s.deps.Fulfillments.ListFulfilled(ctx, businessID, keys)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fulfillments")
		}
		set := make(obligation.FulfillmentSet, len(filed))
		for _, k := range filed {
			set[k] = true
		}
		return set, nil
	}

	now := s.now(ctx)
	eval, err := s.evaluateProfile(ctx, rs, profile, taxYear, businessID, lookup, now)
	if err != nil {
		return nil, err
	}
	eval.ID = s.newEvaluationID()

	if err := s.deps.Evaluations.Save(ctx, eval); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save evaluation")
	}
	if err := s.deps.Obligations.ReplaceForYear(ctx, businessID, taxYear, eval.Obligations); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save obligations")
	}
	if rs != nil && !rs.Referenced {
		if err := s.deps.RuleSets.MarkReferenced(ctx, rs.ID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark rule set referenced")
		}
	}

	s.logAudit(ctx, audit.EventEvaluationRecorded, audit.Event{
		Subject:        eval.ID.String(),
		BusinessID:     businessID.String(),
		TaxYear:        taxYear,
		RuleSetVersion: eval.RuleSetVersion,
		Detail:         fmt.Sprintf("%d obligations", len(eval.Obligations)),
	}, "business_id", businessID.String(), "tax_year", taxYear, "rule_set_version", eval.RuleSetVersion)
	s.metrics.IncrementEvaluation(false)

	return eval, nil
}

// DryRun runs the production evaluation path against a synthetic profile
// without persisting anything.
func (s *Service) DryRun(ctx context.Context, req DryRunRequest) (_ *models.Evaluation, err error) {
	ctx, end := s.track(ctx, "compliance.DryRun", attribute.Int("tax_year", req.TaxYear))
	defer func() { end(err) }()

	if err := validateTaxYear(req.TaxYear); err != nil {
		return nil, err
	}

	var rs *models.RuleSet
	if req.RuleSetID != nil {
		rs, err = s.deps.RuleSets.FindByID(ctx, *req.RuleSetID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "rule set not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rule set")
		}
	} else if rs, err = s.activeRuleSet(ctx); err != nil {
		return nil, err
	}

	eval, err := s.evaluateProfile(ctx, rs, req.Profile, req.TaxYear, id.BusinessID{}, nil, s.now(ctx))
	if err != nil {
		return nil, err
	}
	eval.DryRun = true
	s.metrics.IncrementEvaluation(true)
	return eval, nil
}

func validateTaxYear(taxYear int) error {
	if _, err := id.NewTaxYear(taxYear); err != nil {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return nil
}

// activeRuleSet returns nil without error when nothing is active.
func (s *Service) activeRuleSet(ctx context.Context) (*models.RuleSet, error) {
	rs, err := s.deps.RuleSets.Active(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active rule set")
	}
	return rs, nil
}

// fulfillmentLoader reports which of the expanded periods are filed. It is
// asked for exact period keys, so a one-time duty filed in an earlier year
// stays fulfilled whichever tax year is evaluated.
type fulfillmentLoader func(instances []models.DeadlineInstance) (obligation.FulfillmentLookup, error)

// evaluateProfile is the single code path shared by Evaluate and DryRun.
func (s *Service) evaluateProfile(
	ctx context.Context,
	rs *models.RuleSet,
	profile models.Profile,
	taxYear int,
	businessID id.BusinessID,
	lookup fulfillmentLoader,
	now time.Time,
) (*models.Evaluation, error) {
	start := time.Now()
	defer s.metrics.ObserveEvaluate(start)

	resolved := resolver.Resolve(rs, profile)
	deadlines := s.expand(ctx, rs, profile, taxYear)
	var filed obligation.FulfillmentLookup
	if lookup != nil {
		var err error
		if filed, err = lookup(deadlines); err != nil {
			return nil, err
		}
	}

	eval := &models.Evaluation{
		BusinessID:     businessID,
		TaxYear:        taxYear,
		Outcome:        resolved.Outcome,
		Explanations:   resolved.Explanations,
		MatchedRules:   resolved.MatchedRules,
		RuleSetVersion: resolved.RuleSetVersion,
		Deadlines:      deadlines,
		Obligations:    obligation.Classify(businessID, deadlines, filed, now),
		EvaluatedAt:    now,
	}
	if rs != nil {
		rsID := rs.ID
		eval.RuleSetID = &rsID
	}
	return eval, nil
}

// expand runs the scheduler through the cache. Drafts are never cached since
// they can still change. Cache failures fall back to computing.
func (s *Service) expand(ctx context.Context, rs *models.RuleSet, profile models.Profile, taxYear int) []models.DeadlineInstance {
	if rs == nil || s.deps.ExpansionCache == nil || rs.Status == models.RuleSetStatusDraft {
		return scheduler.Expand(rs, profile, taxYear)
	}

	key := ExpansionKey(rs, profile, taxYear)
	cached, found, err := s.deps.ExpansionCache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncrementExpansionCache("error")
		s.logger.WarnContext(ctx, "expansion cache read failed", "key", key, "error", err)
	case found:
		s.metrics.IncrementExpansionCache("hit")
		return cached
	default:
		s.metrics.IncrementExpansionCache("miss")
	}

	instances := scheduler.Expand(rs, profile, taxYear)
	if err := s.deps.ExpansionCache.Set(ctx, key, instances); err != nil {
		s.logger.WarnContext(ctx, "expansion cache write failed", "key", key, "error", err)
	}
	return instances
}

// ExpansionKey identifies a deadline expansion. The digest covers the
// outcome of each template guard against the profile, which is the only
// profile input expansion reads.
func ExpansionKey(rs *models.RuleSet, profile models.Profile, taxYear int) string {
	h := sha256.New()
	for _, tmpl := range rs.Deadlines {
		applies := tmpl.AppliesWhen == nil || condition.Evaluate(tmpl.AppliesWhen, profile)
		bit := byte('0')
		if applies {
			bit = '1'
		}
		h.Write([]byte(tmpl.Key))
		h.Write([]byte{0, bit})
	}
	return fmt.Sprintf("%s%s:%d:%s", expansionKeyPrefix, rs.Version, taxYear, hex.EncodeToString(h.Sum(nil)))
}
