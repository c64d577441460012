package resolver

import "taxsafe/internal/compliance/models"

// fieldMerge folds one outcome field. apply reports whether the patch
// contributed to the field.
type fieldMerge struct {
	field string
	list  bool
	apply func(acc *models.Outcome, p models.OutcomePatch) bool
}

var merges = []fieldMerge{
	{field: models.FieldCITStatus, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		return overrideString(&acc.CITStatus, p.CITStatus)
	}},
	{field: models.FieldVATStatus, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		return overrideString(&acc.VATStatus, p.VATStatus)
	}},
	{field: models.FieldWHTStatus, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		return overrideString(&acc.WHTStatus, p.WHTStatus)
	}},
	{field: models.FieldVATRegistrationRequired, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		if p.VATRegistrationRequired == nil {
			return false
		}
		v := *p.VATRegistrationRequired
		acc.VATRegistrationRequired = &v
		return true
	}},
	{field: models.FieldCITRate, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		if p.CITRate == nil {
			return false
		}
		v := *p.CITRate
		acc.CITRate = &v
		return true
	}},
	{field: models.FieldTurnoverBand, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		return overrideString(&acc.TurnoverBand, p.TurnoverBand)
	}},
	{field: models.FieldComplianceNotes, list: true, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		return appendAll(&acc.ComplianceNotes, p.ComplianceNotes)
	}},
	{field: models.FieldRequiredDocuments, list: true, apply: func(acc *models.Outcome, p models.OutcomePatch) bool {
		return appendAll(&acc.RequiredDocuments, p.RequiredDocuments)
	}},
}

func overrideString(dst *string, v *string) bool {
	if v == nil {
		return false
	}
	*dst = *v
	return true
}

func appendAll(dst *[]string, items []string) bool {
	if len(items) == 0 {
		return false
	}
	*dst = append(*dst, items...)
	return true
}
