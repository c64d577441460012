package models

import (
	"time"

	"github.com/shopspring/decimal"

	"taxsafe/internal/compliance/condition"
	id "taxsafe/pkg/domain"
)

type TransactionKind string

const (
	KindIncome   TransactionKind = "income"
	KindExpense  TransactionKind = "expense"
	KindTransfer TransactionKind = "transfer"
)

type Classification string

const (
	ClassificationBusiness Classification = "business"
	ClassificationPersonal Classification = "personal"
	ClassificationUnknown  Classification = "unknown"
)

// Transaction is a bookkeeping entry read from the business-data collaborator.
type Transaction struct {
	ID             string          `json:"id"`
	BusinessID     id.BusinessID   `json:"business_id"`
	Date           time.Time       `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Kind           TransactionKind `json:"kind"`
	Category       string          `json:"category,omitempty"`
	Classification Classification  `json:"classification"`
	Description    string          `json:"description"`
	EvidenceIDs    []string        `json:"evidence_ids,omitempty"`
}

// ComplianceTask is a checklist item that may require supporting documents.
type ComplianceTask struct {
	ID               string        `json:"id"`
	BusinessID       id.BusinessID `json:"business_id"`
	TaxYear          int           `json:"tax_year"`
	Title            string        `json:"title"`
	EvidenceRequired bool          `json:"evidence_required"`
	DocumentIDs      []string      `json:"document_ids,omitempty"`
}

// Profile is the flat business profile rules are evaluated against.
type Profile = condition.Profile
