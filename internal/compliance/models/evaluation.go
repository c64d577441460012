package models

import (
	"time"

	id "taxsafe/pkg/domain"
)

// NoRuleSetVersion is reported when no rule set was active.
const NoRuleSetVersion = "none"

// Evaluation is the snapshot produced by resolving, expanding and classifying
// a profile against one rule set. Dry runs carry DryRun=true and a nil
// BusinessID and are never persisted.
type Evaluation struct {
	ID             id.EvaluationID    `json:"id"`
	BusinessID     id.BusinessID      `json:"business_id"`
	TaxYear        int                `json:"tax_year"`
	Outcome        Outcome            `json:"outcome"`
	Explanations   Explanations       `json:"explanations"`
	MatchedRules   []string           `json:"matched_rules"`
	RuleSetID      *id.RuleSetID      `json:"rule_set_id,omitempty"`
	RuleSetVersion string             `json:"rule_set_version"`
	Deadlines      []DeadlineInstance `json:"deadlines"`
	Obligations    []Obligation       `json:"obligations"`
	EvaluatedAt    time.Time          `json:"evaluated_at"`
	DryRun         bool               `json:"dry_run"`
}
