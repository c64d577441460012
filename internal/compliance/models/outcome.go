package models

import (
	"strings"

	"github.com/shopspring/decimal"

	dErrors "taxsafe/pkg/domain-errors"
)

// StatusUnknown is the explicit value for a status no rule has decided.
const StatusUnknown = "unknown"

// BaselineRuleKey attributes fields that no matching rule produced.
const BaselineRuleKey = "baseline"

// BaselineNote is attached when no rule matched the profile.
const BaselineNote = "No rule in the active rule set matched this profile; statuses are unknown until more profile data is supplied."

// Outcome field names, used as explanation keys.
const (
	FieldCITStatus               = "citStatus"
	FieldVATStatus               = "vatStatus"
	FieldWHTStatus               = "whtStatus"
	FieldVATRegistrationRequired = "vatRegistrationRequired"
	FieldCITRate                 = "citRate"
	FieldTurnoverBand            = "turnoverBand"
	FieldComplianceNotes         = "complianceNotes"
	FieldRequiredDocuments       = "requiredDocuments"
)

// Outcome is the merged eligibility/obligation result for a profile. It is
// always fully formed: undecided statuses carry StatusUnknown.
type Outcome struct {
	CITStatus               string           `json:"citStatus"`
	VATStatus               string           `json:"vatStatus"`
	WHTStatus               string           `json:"whtStatus"`
	VATRegistrationRequired *bool            `json:"vatRegistrationRequired"`
	CITRate                 *decimal.Decimal `json:"citRate"`
	TurnoverBand            string           `json:"turnoverBand,omitempty"`
	ComplianceNotes         []string         `json:"complianceNotes"`
	RequiredDocuments       []string         `json:"requiredDocuments"`
}

// BaselineOutcome is the starting accumulator for every resolution.
func BaselineOutcome() Outcome {
	return Outcome{
		CITStatus:         StatusUnknown,
		VATStatus:         StatusUnknown,
		WHTStatus:         StatusUnknown,
		ComplianceNotes:   []string{},
		RequiredDocuments: []string{},
	}
}

// OutcomePatch is the partial outcome a rule contributes. Nil scalars leave
// the accumulator untouched; list fields are appended.
type OutcomePatch struct {
	CITStatus               *string          `json:"citStatus,omitempty"`
	VATStatus               *string          `json:"vatStatus,omitempty"`
	WHTStatus               *string          `json:"whtStatus,omitempty"`
	VATRegistrationRequired *bool            `json:"vatRegistrationRequired,omitempty"`
	CITRate                 *decimal.Decimal `json:"citRate,omitempty"`
	TurnoverBand            *string          `json:"turnoverBand,omitempty"`
	ComplianceNotes         []string         `json:"complianceNotes,omitempty"`
	RequiredDocuments       []string         `json:"requiredDocuments,omitempty"`
}

// Validate rejects blank scalar values and out-of-range rates.
func (p OutcomePatch) Validate() error {
	for name, v := range map[string]*string{
		FieldCITStatus:    p.CITStatus,
		FieldVATStatus:    p.VATStatus,
		FieldWHTStatus:    p.WHTStatus,
		FieldTurnoverBand: p.TurnoverBand,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "outcome "+name+" cannot be blank")
		}
	}
	if p.CITRate != nil && (p.CITRate.IsNegative() || p.CITRate.GreaterThan(decimal.NewFromInt(1))) {
		return dErrors.New(dErrors.CodeInvariantViolation, "outcome citRate must be a fraction between 0 and 1")
	}
	for _, n := range p.ComplianceNotes {
		if strings.TrimSpace(n) == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "outcome complianceNotes cannot contain blank entries")
		}
	}
	for _, d := range p.RequiredDocuments {
		if strings.TrimSpace(d) == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "outcome requiredDocuments cannot contain blank entries")
		}
	}
	return nil
}

// IsEmpty reports whether the patch contributes nothing.
func (p OutcomePatch) IsEmpty() bool {
	return p.CITStatus == nil && p.VATStatus == nil && p.WHTStatus == nil &&
		p.VATRegistrationRequired == nil && p.CITRate == nil && p.TurnoverBand == nil &&
		len(p.ComplianceNotes) == 0 && len(p.RequiredDocuments) == 0
}

func (p OutcomePatch) Clone() OutcomePatch {
	out := p
	out.ComplianceNotes = append([]string(nil), p.ComplianceNotes...)
	out.RequiredDocuments = append([]string(nil), p.RequiredDocuments...)
	return out
}

// Attribution records which rule produced (part of) an outcome field.
type Attribution struct {
	RuleKey     string `json:"ruleKey"`
	Explanation string `json:"explanation"`
}

// Explanations maps an outcome field name to the rules that produced it, in
// merge order. Scalars hold one entry; lists hold one per contribution.
type Explanations map[string][]Attribution
