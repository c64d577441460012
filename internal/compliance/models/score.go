package models

import (
	"time"

	id "taxsafe/pkg/domain"
)

type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// ReasonCode explains a score deduction.
type ReasonCode string

const (
	ReasonMissingEligibility    ReasonCode = "MISSING_ELIGIBILITY"
	ReasonLowRecordsCoverage    ReasonCode = "LOW_RECORDS_COVERAGE"
	ReasonMediumRecordsCoverage ReasonCode = "MEDIUM_RECORDS_COVERAGE"
	ReasonLowReceiptCoverage    ReasonCode = "LOW_RECEIPT_COVERAGE"
	ReasonMediumReceiptCoverage ReasonCode = "MEDIUM_RECEIPT_COVERAGE"
	ReasonOverdueObligation     ReasonCode = "OVERDUE_OBLIGATION"
	ReasonDeadlineVerySoon      ReasonCode = "DEADLINE_VERY_SOON"
	ReasonDeadlineSoon          ReasonCode = "DEADLINE_SOON"
)

// Deduction is one applied penalty.
type Deduction struct {
	Reason ReasonCode `json:"reason"`
	Points int        `json:"points"`
}

// ScoreBreakdown carries the inputs behind a score. Nil ratios have not been
// evaluated yet (no elapsed months, or too few expenses).
type ScoreBreakdown struct {
	HasEligibility         bool        `json:"has_eligibility"`
	MonthsElapsed          int         `json:"months_elapsed"`
	MonthsWithTransactions int         `json:"months_with_transactions"`
	RecordsCoverageRatio   *float64    `json:"records_coverage_ratio"`
	ExpenseCount           int         `json:"expense_count"`
	ExpensesWithEvidence   int         `json:"expenses_with_evidence"`
	ReceiptCoverageRatio   *float64    `json:"receipt_coverage_ratio"`
	OverdueCount           int         `json:"overdue_count"`
	NearestDueInDays       *int        `json:"nearest_due_in_days"`
	Deductions             []Deduction `json:"deductions"`
}

// TaxSafetyScore is a fully determined snapshot; it is never updated in part.
type TaxSafetyScore struct {
	BusinessID id.BusinessID  `json:"business_id"`
	TaxYear    int            `json:"tax_year"`
	Score      int            `json:"score"`
	Band       Band           `json:"band"`
	Reasons    []ReasonCode   `json:"reasons"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	ComputedAt time.Time      `json:"computed_at"`
}

// HasReason reports whether code is among the score's reasons.
func (s *TaxSafetyScore) HasReason(code ReasonCode) bool {
	for _, r := range s.Reasons {
		if r == code {
			return true
		}
	}
	return false
}
