package handler

import (
	"strings"

	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/service"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
)

const (
	maxProfileFields   = 100
	maxRefreshBatch    = 500
	maxProfileKeyBytes = 64
)

// EvaluateRequest is the body for POST /compliance/evaluate.
type EvaluateRequest struct {
	BusinessID string `json:"business_id"`
	TaxYear    int    `json:"tax_year"`

	parsedBusinessID id.BusinessID
}

func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	businessID, err := id.ParseBusinessID(strings.TrimSpace(r.BusinessID))
	if err != nil {
		return err
	}
	if _, err := id.NewTaxYear(r.TaxYear); err != nil {
		return err
	}
	r.parsedBusinessID = businessID
	return nil
}

func (r *EvaluateRequest) ParsedBusinessID() id.BusinessID {
	return r.parsedBusinessID
}

// DryRunRequest is the body for POST /compliance/dry-run. Profile holds the
// synthetic profile fields the rules read.
type DryRunRequest struct {
	Profile   map[string]any `json:"profile"`
	TaxYear   int            `json:"tax_year"`
	RuleSetID *string        `json:"rule_set_id,omitempty"`

	parsedRuleSetID *id.RuleSetID
}

func (r *DryRunRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Profile) > maxProfileFields {
		return dErrors.New(dErrors.CodeValidation, "profile must have at most 100 fields")
	}
	for k := range r.Profile {
		if strings.TrimSpace(k) == "" || len(k) > maxProfileKeyBytes {
			return dErrors.New(dErrors.CodeValidation, "profile field names must be 1 to 64 characters")
		}
	}
	if _, err := id.NewTaxYear(r.TaxYear); err != nil {
		return err
	}
	if r.RuleSetID != nil && strings.TrimSpace(*r.RuleSetID) != "" {
		ruleSetID, err := id.ParseRuleSetID(strings.TrimSpace(*r.RuleSetID))
		if err != nil {
			return err
		}
		r.parsedRuleSetID = &ruleSetID
	}
	return nil
}

func (r *DryRunRequest) ServiceRequest() service.DryRunRequest {
	profile := models.Profile{}
	for k, v := range r.Profile {
		profile[k] = v
	}
	return service.DryRunRequest{
		Profile:   profile,
		TaxYear:   r.TaxYear,
		RuleSetID: r.parsedRuleSetID,
	}
}

// RefreshRequest is the body for POST /compliance/refresh.
type RefreshRequest struct {
	BusinessIDs []string `json:"business_ids"`
	TaxYear     int      `json:"tax_year"`

	parsedBusinessIDs []id.BusinessID
}

func (r *RefreshRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.BusinessIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "business_ids is required")
	}
	if len(r.BusinessIDs) > maxRefreshBatch {
		return dErrors.New(dErrors.CodeValidation, "business_ids must have at most 500 entries")
	}
	if _, err := id.NewTaxYear(r.TaxYear); err != nil {
		return err
	}
	seen := make(map[id.BusinessID]struct{}, len(r.BusinessIDs))
	r.parsedBusinessIDs = make([]id.BusinessID, 0, len(r.BusinessIDs))
	for _, raw := range r.BusinessIDs {
		businessID, err := id.ParseBusinessID(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		if _, dup := seen[businessID]; dup {
			continue
		}
		seen[businessID] = struct{}{}
		r.parsedBusinessIDs = append(r.parsedBusinessIDs, businessID)
	}
	return nil
}

func (r *RefreshRequest) ParsedBusinessIDs() []id.BusinessID {
	return r.parsedBusinessIDs
}
