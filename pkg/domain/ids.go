package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "taxsafe/pkg/domain-errors"
)

// Typed identifiers keep business, rule-set and issue IDs from being mixed up
// at compile time. All share the same parsing rules.
type (
	BusinessID   uuid.UUID
	RuleSetID    uuid.UUID
	IssueID      uuid.UUID
	EvaluationID uuid.UUID
)

func (id BusinessID) String() string   { return uuid.UUID(id).String() }
func (id RuleSetID) String() string    { return uuid.UUID(id).String() }
func (id IssueID) String() string      { return uuid.UUID(id).String() }
func (id EvaluationID) String() string { return uuid.UUID(id).String() }

func (id BusinessID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id RuleSetID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id IssueID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id EvaluationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id BusinessID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id RuleSetID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id IssueID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id EvaluationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *BusinessID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b), "business_id")
	*id = BusinessID(u)
	return err
}

func (id *RuleSetID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b), "rule_set_id")
	*id = RuleSetID(u)
	return err
}

func (id *IssueID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b), "issue_id")
	*id = IssueID(u)
	return err
}

func (id *EvaluationID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b), "evaluation_id")
	*id = EvaluationID(u)
	return err
}

func NewRuleSetID() RuleSetID       { return RuleSetID(uuid.New()) }
func NewIssueID() IssueID           { return IssueID(uuid.New()) }
func NewEvaluationID() EvaluationID { return EvaluationID(uuid.New()) }

// ParseBusinessID validates a business identifier from an untrusted source.
func ParseBusinessID(s string) (BusinessID, error) {
	u, err := parseUUID(s, "business_id")
	return BusinessID(u), err
}

// ParseRuleSetID validates a rule set identifier from an untrusted source.
func ParseRuleSetID(s string) (RuleSetID, error) {
	u, err := parseUUID(s, "rule_set_id")
	return RuleSetID(u), err
}

// ParseIssueID validates a review issue identifier from an untrusted source.
func ParseIssueID(s string) (IssueID, error) {
	u, err := parseUUID(s, "issue_id")
	return IssueID(u), err
}

// ParseEvaluationID validates an evaluation identifier from an untrusted source.
func ParseEvaluationID(s string) (EvaluationID, error) {
	u, err := parseUUID(s, "evaluation_id")
	return EvaluationID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field+" format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}

// TaxYear is a calendar tax year within the supported range.
type TaxYear int

const (
	MinTaxYear TaxYear = 2000
	MaxTaxYear TaxYear = 2100
)

// ParseTaxYear validates a tax year supplied as a string (query params, CLI flags).
func ParseTaxYear(s string) (TaxYear, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "tax_year is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "tax_year must be a number")
	}
	return NewTaxYear(n)
}

// NewTaxYear validates an integer tax year.
func NewTaxYear(n int) (TaxYear, error) {
	y := TaxYear(n)
	if y < MinTaxYear || y > MaxTaxYear {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "tax_year out of supported range")
	}
	return y, nil
}

func (y TaxYear) Int() int { return int(y) }
