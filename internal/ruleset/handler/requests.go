package handler

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
	"taxsafe/internal/ruleset/service"
	dErrors "taxsafe/pkg/domain-errors"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 2000
)

// CreateRuleSetRequest is the body for POST /admin/rulesets.
type CreateRuleSetRequest struct {
	Version       string  `json:"version"`
	Name          string  `json:"name"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	Description   string  `json:"description,omitempty"`

	parsedFrom time.Time
	parsedTo   *time.Time
}

func (r *CreateRuleSetRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 200 characters")
	}
	if len(r.Description) > maxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description must be at most 2000 characters")
	}
	r.Version = strings.TrimSpace(r.Version)
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Version == "" {
		return dErrors.New(dErrors.CodeValidation, "version is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}

	from, err := parseDate(r.EffectiveFrom, "effective_from")
	if err != nil {
		return err
	}
	r.parsedFrom = from
	if r.EffectiveTo != nil && strings.TrimSpace(*r.EffectiveTo) != "" {
		to, err := parseDate(*r.EffectiveTo, "effective_to")
		if err != nil {
			return err
		}
		r.parsedTo = &to
	}
	return nil
}

func (r *CreateRuleSetRequest) Input() service.CreateRuleSetInput {
	return service.CreateRuleSetInput{
		Version:       r.Version,
		Name:          r.Name,
		EffectiveFrom: r.parsedFrom,
		EffectiveTo:   r.parsedTo,
		Description:   r.Description,
	}
}

// AddRuleRequest is the body for POST /admin/rulesets/{ruleSetID}/rules.
// Conditions use the JSON tree shape; an absent or empty tree matches every
// profile.
type AddRuleRequest struct {
	Key         string              `json:"key"`
	Type        string              `json:"type"`
	Priority    int                 `json:"priority"`
	Conditions  json.RawMessage     `json:"conditions,omitempty"`
	Outcome     models.OutcomePatch `json:"outcome"`
	Explanation string              `json:"explanation,omitempty"`

	parsedConditions condition.Node
}

func (r *AddRuleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Explanation) > maxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "explanation must be at most 2000 characters")
	}
	r.Key = strings.TrimSpace(r.Key)
	r.Type = strings.TrimSpace(r.Type)
	if r.Key == "" {
		return dErrors.New(dErrors.CodeValidation, "key is required")
	}
	if !models.RuleType(r.Type).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "type must be one of eligibility, obligation, deadline, threshold")
	}
	node, err := parseConditions(r.Conditions, "conditions")
	if err != nil {
		return err
	}
	r.parsedConditions = node
	return nil
}

func (r *AddRuleRequest) Input() service.RuleInput {
	return service.RuleInput{
		Key:         r.Key,
		Type:        models.RuleType(r.Type),
		Priority:    r.Priority,
		Conditions:  r.parsedConditions,
		Outcome:     r.Outcome,
		Explanation: r.Explanation,
	}
}

// AddDeadlineRequest is the body for POST /admin/rulesets/{ruleSetID}/deadlines.
type AddDeadlineRequest struct {
	Key           string          `json:"key"`
	TaxType       string          `json:"tax_type"`
	Frequency     string          `json:"frequency"`
	DueDayOfMonth *int            `json:"due_day_of_month,omitempty"`
	DueMonth      *int            `json:"due_month,omitempty"`
	DueDay        *int            `json:"due_day,omitempty"`
	DueYear       *int            `json:"due_year,omitempty"`
	OffsetDays    *int            `json:"offset_days,omitempty"`
	AppliesWhen   json.RawMessage `json:"applies_when,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`

	parsedAppliesWhen condition.Node
}

func (r *AddDeadlineRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Title) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "title must be at most 200 characters")
	}
	if len(r.Description) > maxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description must be at most 2000 characters")
	}
	r.Key = strings.TrimSpace(r.Key)
	r.Frequency = strings.TrimSpace(r.Frequency)
	if r.Key == "" {
		return dErrors.New(dErrors.CodeValidation, "key is required")
	}
	if !models.Frequency(r.Frequency).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "frequency must be one of monthly, quarterly, annual, one_time")
	}
	if len(bytes.TrimSpace(r.AppliesWhen)) > 0 && !isJSONNull(r.AppliesWhen) {
		node, err := parseConditions(r.AppliesWhen, "applies_when")
		if err != nil {
			return err
		}
		r.parsedAppliesWhen = node
	}
	return nil
}

func (r *AddDeadlineRequest) Template() models.DeadlineTemplate {
	return models.DeadlineTemplate{
		Key:           r.Key,
		TaxType:       r.TaxType,
		Frequency:     models.Frequency(r.Frequency),
		DueDayOfMonth: r.DueDayOfMonth,
		DueMonth:      r.DueMonth,
		DueDay:        r.DueDay,
		DueYear:       r.DueYear,
		OffsetDays:    r.OffsetDays,
		AppliesWhen:   r.parsedAppliesWhen,
		Title:         r.Title,
		Description:   strings.TrimSpace(r.Description),
	}
}

func parseDate(s, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be a YYYY-MM-DD date")
	}
	return t, nil
}

// parseConditions returns nil for an absent tree so the rule matches every
// profile.
func parseConditions(raw json.RawMessage, field string) (condition.Node, error) {
	if len(bytes.TrimSpace(raw)) == 0 || isJSONNull(raw) {
		return nil, nil
	}
	node, err := condition.Parse(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, field+": "+dErrors.MessageOf(err))
	}
	return node, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
