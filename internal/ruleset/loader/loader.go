// Package loader reads rule-set bundles from YAML. A bundle carries one
// complete rule set: its header, rules and deadline templates.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
)

// Bundle is the on-disk shape of a rule set.
type Bundle struct {
	Version       string        `yaml:"version"`
	Name          string        `yaml:"name"`
	EffectiveFrom string        `yaml:"effective_from"`
	EffectiveTo   string        `yaml:"effective_to,omitempty"`
	Description   string        `yaml:"description,omitempty"`
	Rules         []RuleDoc     `yaml:"rules"`
	Deadlines     []DeadlineDoc `yaml:"deadlines"`
}

type RuleDoc struct {
	Key         string          `yaml:"key"`
	Type        string          `yaml:"type"`
	Priority    int             `yaml:"priority"`
	Conditions  *condition.Tree `yaml:"conditions,omitempty"`
	Outcome     OutcomeDoc      `yaml:"outcome"`
	Explanation string          `yaml:"explanation,omitempty"`
}

// OutcomeDoc mirrors models.OutcomePatch. CITRate is a decimal string so
// rates never pass through float64.
type OutcomeDoc struct {
	CITStatus               *string  `yaml:"cit_status,omitempty"`
	VATStatus               *string  `yaml:"vat_status,omitempty"`
	WHTStatus               *string  `yaml:"wht_status,omitempty"`
	VATRegistrationRequired *bool    `yaml:"vat_registration_required,omitempty"`
	CITRate                 *string  `yaml:"cit_rate,omitempty"`
	TurnoverBand            *string  `yaml:"turnover_band,omitempty"`
	ComplianceNotes         []string `yaml:"compliance_notes,omitempty"`
	RequiredDocuments       []string `yaml:"required_documents,omitempty"`
}

type DeadlineDoc struct {
	Key           string          `yaml:"key"`
	TaxType       string          `yaml:"tax_type"`
	Frequency     string          `yaml:"frequency"`
	DueDayOfMonth *int            `yaml:"due_day_of_month,omitempty"`
	DueMonth      *int            `yaml:"due_month,omitempty"`
	DueDay        *int            `yaml:"due_day,omitempty"`
	DueYear       *int            `yaml:"due_year,omitempty"`
	OffsetDays    *int            `yaml:"offset_days,omitempty"`
	AppliesWhen   *condition.Tree `yaml:"applies_when,omitempty"`
	Title         string          `yaml:"title"`
	Description   string          `yaml:"description,omitempty"`
}

// Load decodes a bundle, rejecting unknown keys.
func Load(r io.Reader) (*Bundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var b Bundle
	if err := dec.Decode(&b); err != nil {
		if err == io.EOF {
			return nil, dErrors.New(dErrors.CodeValidation, "rule-set bundle is empty")
		}
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "rule-set bundle is not valid YAML")
	}
	return &b, nil
}

// LoadFile reads and decodes the bundle at path.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule-set bundle %q: %w", path, err)
	}
	return Load(bytes.NewReader(data))
}

// Build validates the bundle and produces a draft rule set. Every rule and
// template gets a fresh ID; the first invalid entry aborts the build.
func (b *Bundle) Build(ruleSetID id.RuleSetID, now time.Time) (*models.RuleSet, error) {
	from, err := parseDate(b.EffectiveFrom, "effective_from")
	if err != nil {
		return nil, err
	}
	var to *time.Time
	if strings.TrimSpace(b.EffectiveTo) != "" {
		t, err := parseDate(b.EffectiveTo, "effective_to")
		if err != nil {
			return nil, err
		}
		to = &t
	}

	rs, err := models.NewRuleSet(ruleSetID, b.Version, b.Name, from, to, b.Description, now)
	if err != nil {
		return nil, asValidation(err, "rule set")
	}
	for i, doc := range b.Rules {
		rule, err := doc.build()
		if err != nil {
			return nil, asValidation(err, fmt.Sprintf("rules[%d]", i))
		}
		if err := rs.AddRule(rule, now); err != nil {
			return nil, asValidation(err, fmt.Sprintf("rules[%d]", i))
		}
	}
	for i, doc := range b.Deadlines {
		tmpl, err := doc.build()
		if err != nil {
			return nil, asValidation(err, fmt.Sprintf("deadlines[%d]", i))
		}
		if err := rs.AddDeadline(tmpl, now); err != nil {
			return nil, asValidation(err, fmt.Sprintf("deadlines[%d]", i))
		}
	}
	return rs, nil
}

func (d RuleDoc) build() (models.Rule, error) {
	patch, err := d.Outcome.patch()
	if err != nil {
		return models.Rule{}, err
	}
	return models.NewRule(uuid.New(), d.Key, models.RuleType(d.Type), d.Priority, d.Conditions.Root(), patch, d.Explanation)
}

func (o OutcomeDoc) patch() (models.OutcomePatch, error) {
	p := models.OutcomePatch{
		CITStatus:               o.CITStatus,
		VATStatus:               o.VATStatus,
		WHTStatus:               o.WHTStatus,
		VATRegistrationRequired: o.VATRegistrationRequired,
		TurnoverBand:            o.TurnoverBand,
		ComplianceNotes:         o.ComplianceNotes,
		RequiredDocuments:       o.RequiredDocuments,
	}
	if o.CITRate != nil {
		rate, err := decimal.NewFromString(strings.TrimSpace(*o.CITRate))
		if err != nil {
			return models.OutcomePatch{}, dErrors.Wrap(err, dErrors.CodeValidation, "cit_rate must be a decimal string")
		}
		p.CITRate = &rate
	}
	return p, nil
}

func (d DeadlineDoc) build() (models.DeadlineTemplate, error) {
	return models.NewDeadlineTemplate(models.DeadlineTemplate{
		ID:            uuid.New(),
		Key:           d.Key,
		TaxType:       d.TaxType,
		Frequency:     models.Frequency(d.Frequency),
		DueDayOfMonth: d.DueDayOfMonth,
		DueMonth:      d.DueMonth,
		DueDay:        d.DueDay,
		DueYear:       d.DueYear,
		OffsetDays:    d.OffsetDays,
		AppliesWhen:   d.AppliesWhen.Root(),
		Title:         d.Title,
		Description:   strings.TrimSpace(d.Description),
	})
}

func parseDate(s, field string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeValidation, field+" must be a YYYY-MM-DD date")
	}
	return t, nil
}

// asValidation reports model invariant failures as validation errors and
// prefixes the entry they came from.
func asValidation(err error, where string) error {
	msg := dErrors.MessageOf(err)
	if msg == "" {
		msg = err.Error()
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeConflict:
		return dErrors.New(dErrors.CodeConflict, where+": "+msg)
	default:
		return dErrors.New(dErrors.CodeValidation, where+": "+msg)
	}
}
