package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"taxsafe/internal/compliance/condition"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
)

type RuleSetStatus string

const (
	RuleSetStatusDraft    RuleSetStatus = "draft"
	RuleSetStatusActive   RuleSetStatus = "active"
	RuleSetStatusArchived RuleSetStatus = "archived"
)

func (s RuleSetStatus) IsValid() bool {
	return s == RuleSetStatusDraft || s == RuleSetStatusActive || s == RuleSetStatusArchived
}

type RuleType string

const (
	RuleTypeEligibility RuleType = "eligibility"
	RuleTypeObligation  RuleType = "obligation"
	RuleTypeDeadline    RuleType = "deadline"
	RuleTypeThreshold   RuleType = "threshold"
)

func (t RuleType) IsValid() bool {
	switch t {
	case RuleTypeEligibility, RuleTypeObligation, RuleTypeDeadline, RuleTypeThreshold:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
	FrequencyOneTime   Frequency = "one_time"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual, FrequencyOneTime:
		return true
	}
	return false
}

const maxKeyLength = 64

// RuleSet is a versioned bundle of rules and deadline templates.
//
// Invariants:
//   - Version is non-empty and unique across rule sets
//   - At most one rule set is active; activation archives the previous one
//   - Only drafts accept new rules or templates
//   - A referenced rule set is never edited; changes go into a new version
//   - Rule keys and template keys are unique within the set
type RuleSet struct {
	ID            id.RuleSetID       `json:"id"`
	Version       string             `json:"version"`
	Name          string             `json:"name"`
	Status        RuleSetStatus      `json:"status"`
	EffectiveFrom time.Time          `json:"effective_from"`
	EffectiveTo   *time.Time         `json:"effective_to,omitempty"`
	Description   string             `json:"description,omitempty"`
	Rules         []Rule             `json:"rules"`
	Deadlines     []DeadlineTemplate `json:"deadlines"`
	Referenced    bool               `json:"referenced"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Rule contributes an outcome patch when its conditions match a profile.
// Rules are merged in ascending Priority; a higher number is applied later
// and wins scalar conflicts.
type Rule struct {
	ID          uuid.UUID      `json:"id"`
	Key         string         `json:"key"`
	Type        RuleType       `json:"type"`
	Priority    int            `json:"priority"`
	Conditions  condition.Node `json:"-"`
	Outcome     OutcomePatch   `json:"outcome"`
	Explanation string         `json:"explanation"`
}

// DeadlineTemplate describes a recurring or one-time filing deadline.
type DeadlineTemplate struct {
	ID            uuid.UUID      `json:"id"`
	Key           string         `json:"key"`
	TaxType       string         `json:"tax_type"`
	Frequency     Frequency      `json:"frequency"`
	DueDayOfMonth *int           `json:"due_day_of_month,omitempty"`
	DueMonth      *int           `json:"due_month,omitempty"`
	DueDay        *int           `json:"due_day,omitempty"`
	DueYear       *int           `json:"due_year,omitempty"`
	OffsetDays    *int           `json:"offset_days,omitempty"`
	AppliesWhen   condition.Node `json:"-"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
}

func NewRuleSet(ruleSetID id.RuleSetID, version, name string, effectiveFrom time.Time, effectiveTo *time.Time, description string, now time.Time) (*RuleSet, error) {
	version = strings.TrimSpace(version)
	name = strings.TrimSpace(name)
	if version == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule set version cannot be empty")
	}
	if len(version) > maxKeyLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule set version must be 64 characters or less")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule set name cannot be empty")
	}
	if effectiveFrom.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule set effective_from is required")
	}
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule set effective_to must be after effective_from")
	}
	return &RuleSet{
		ID:            ruleSetID,
		Version:       version,
		Name:          name,
		Status:        RuleSetStatusDraft,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		Description:   strings.TrimSpace(description),
		Rules:         []Rule{},
		Deadlines:     []DeadlineTemplate{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (rs *RuleSet) IsActive() bool { return rs.Status == RuleSetStatusActive }

// CanEdit reports whether rules or templates may still be added.
func (rs *RuleSet) CanEdit() error {
	if rs.Status != RuleSetStatusDraft {
		return dErrors.New(dErrors.CodeInvalidState, "only draft rule sets can be edited")
	}
	if rs.Referenced {
		return dErrors.New(dErrors.CodeInvalidState, "rule set is referenced by an evaluation; create a new version")
	}
	return nil
}

func (rs *RuleSet) CanActivate() error {
	if rs.Status == RuleSetStatusActive {
		return dErrors.New(dErrors.CodeInvalidState, "rule set is already active")
	}
	return nil
}

func (rs *RuleSet) CanArchive() error {
	if rs.Status == RuleSetStatusArchived {
		return dErrors.New(dErrors.CodeInvalidState, "rule set is already archived")
	}
	return nil
}

// AddRule appends rule after checking key uniqueness.
func (rs *RuleSet) AddRule(rule Rule, now time.Time) error {
	if err := rs.CanEdit(); err != nil {
		return err
	}
	for _, r := range rs.Rules {
		if r.Key == rule.Key {
			return dErrors.New(dErrors.CodeConflict, "rule key already exists in rule set")
		}
	}
	rs.Rules = append(rs.Rules, rule)
	rs.UpdatedAt = now
	return nil
}

// AddDeadline appends tmpl after checking key uniqueness.
func (rs *RuleSet) AddDeadline(tmpl DeadlineTemplate, now time.Time) error {
	if err := rs.CanEdit(); err != nil {
		return err
	}
	for _, d := range rs.Deadlines {
		if d.Key == tmpl.Key {
			return dErrors.New(dErrors.CodeConflict, "deadline template key already exists in rule set")
		}
	}
	rs.Deadlines = append(rs.Deadlines, tmpl)
	rs.UpdatedAt = now
	return nil
}

// Clone returns a deep copy safe to hand across store boundaries. Condition
// trees are immutable once built and are shared.
func (rs *RuleSet) Clone() *RuleSet {
	if rs == nil {
		return nil
	}
	out := *rs
	if rs.EffectiveTo != nil {
		t := *rs.EffectiveTo
		out.EffectiveTo = &t
	}
	out.Rules = make([]Rule, len(rs.Rules))
	for i, r := range rs.Rules {
		r.Outcome = r.Outcome.Clone()
		out.Rules[i] = r
	}
	out.Deadlines = make([]DeadlineTemplate, len(rs.Deadlines))
	for i, d := range rs.Deadlines {
		d.DueDayOfMonth = cloneInt(d.DueDayOfMonth)
		d.DueMonth = cloneInt(d.DueMonth)
		d.DueDay = cloneInt(d.DueDay)
		d.DueYear = cloneInt(d.DueYear)
		d.OffsetDays = cloneInt(d.OffsetDays)
		out.Deadlines[i] = d
	}
	return &out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NewRule validates and builds a rule. A nil conditions tree matches every profile.
func NewRule(ruleID uuid.UUID, key string, ruleType RuleType, priority int, conditions condition.Node, outcome OutcomePatch, explanation string) (Rule, error) {
	key = strings.TrimSpace(key)
	if err := validateKey(key, "rule"); err != nil {
		return Rule{}, err
	}
	if !ruleType.IsValid() {
		return Rule{}, dErrors.New(dErrors.CodeInvariantViolation, "rule type must be one of eligibility, obligation, deadline, threshold")
	}
	if err := outcome.Validate(); err != nil {
		return Rule{}, err
	}
	if conditions == nil {
		conditions = condition.Always{}
	}
	return Rule{
		ID:          ruleID,
		Key:         key,
		Type:        ruleType,
		Priority:    priority,
		Conditions:  conditions,
		Outcome:     outcome,
		Explanation: strings.TrimSpace(explanation),
	}, nil
}

// NewDeadlineTemplate validates the date shape required by the frequency.
func NewDeadlineTemplate(tmpl DeadlineTemplate) (DeadlineTemplate, error) {
	tmpl.Key = strings.TrimSpace(tmpl.Key)
	tmpl.TaxType = strings.TrimSpace(tmpl.TaxType)
	tmpl.Title = strings.TrimSpace(tmpl.Title)
	if err := validateKey(tmpl.Key, "deadline template"); err != nil {
		return DeadlineTemplate{}, err
	}
	if tmpl.TaxType == "" {
		return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "deadline template tax_type cannot be empty")
	}
	if tmpl.Title == "" {
		return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "deadline template title cannot be empty")
	}
	if tmpl.OffsetDays != nil && (*tmpl.OffsetDays < -366 || *tmpl.OffsetDays > 366) {
		return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "offset_days must be within one year")
	}

	switch tmpl.Frequency {
	case FrequencyMonthly:
		if d := tmpl.DueDayOfMonth; d != nil && (*d < 1 || *d > 31) {
			return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "due_day_of_month must be between 1 and 31")
		}
	case FrequencyQuarterly:
	case FrequencyAnnual, FrequencyOneTime:
		if tmpl.DueMonth == nil || *tmpl.DueMonth < 1 || *tmpl.DueMonth > 12 {
			return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "due_month must be between 1 and 12")
		}
		if tmpl.DueDay == nil || *tmpl.DueDay < 1 || *tmpl.DueDay > 31 {
			return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "due_day must be between 1 and 31")
		}
		if tmpl.DueYear != nil {
			if tmpl.Frequency != FrequencyOneTime {
				return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "due_year is only valid for one_time templates")
			}
			if *tmpl.DueYear < int(id.MinTaxYear) || *tmpl.DueYear > int(id.MaxTaxYear) {
				return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "due_year is out of range")
			}
		}
	default:
		return DeadlineTemplate{}, dErrors.New(dErrors.CodeInvariantViolation, "frequency must be one of monthly, quarterly, annual, one_time")
	}
	return tmpl, nil
}

func validateKey(key, kind string) error {
	if key == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, kind+" key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return dErrors.New(dErrors.CodeInvariantViolation, kind+" key must be 64 characters or less")
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-' || r == '.') {
			return dErrors.New(dErrors.CodeInvariantViolation, kind+" key may only contain lowercase letters, digits, '_', '-' and '.'")
		}
	}
	return nil
}
