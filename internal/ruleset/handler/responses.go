package handler

import (
	"time"

	"github.com/google/uuid"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
)

// RuleSetResponse renders a rule set with its condition trees in their JSON
// shape.
type RuleSetResponse struct {
	ID            string             `json:"id"`
	Version       string             `json:"version"`
	Name          string             `json:"name"`
	Status        string             `json:"status"`
	EffectiveFrom string             `json:"effective_from"`
	EffectiveTo   *string            `json:"effective_to,omitempty"`
	Description   string             `json:"description,omitempty"`
	Referenced    bool               `json:"referenced"`
	Rules         []RuleResponse     `json:"rules"`
	Deadlines     []DeadlineResponse `json:"deadlines"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type RuleResponse struct {
	ID          uuid.UUID           `json:"id"`
	Key         string              `json:"key"`
	Type        string              `json:"type"`
	Priority    int                 `json:"priority"`
	Conditions  any                 `json:"conditions"`
	Outcome     models.OutcomePatch `json:"outcome"`
	Explanation string              `json:"explanation,omitempty"`
}

type DeadlineResponse struct {
	ID            uuid.UUID `json:"id"`
	Key           string    `json:"key"`
	TaxType       string    `json:"tax_type"`
	Frequency     string    `json:"frequency"`
	DueDayOfMonth *int      `json:"due_day_of_month,omitempty"`
	DueMonth      *int      `json:"due_month,omitempty"`
	DueDay        *int      `json:"due_day,omitempty"`
	DueYear       *int      `json:"due_year,omitempty"`
	OffsetDays    *int      `json:"offset_days,omitempty"`
	AppliesWhen   any       `json:"applies_when,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
}

// RuleSetSummary is the list view of a rule set.
type RuleSetSummary struct {
	ID            string `json:"id"`
	Version       string `json:"version"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	EffectiveFrom string `json:"effective_from"`
	Rules         int    `json:"rules"`
	Deadlines     int    `json:"deadlines"`
	Referenced    bool   `json:"referenced"`
}

type ListResponse struct {
	RuleSets []RuleSetSummary `json:"rule_sets"`
}

func FromRuleSet(rs *models.RuleSet) *RuleSetResponse {
	resp := &RuleSetResponse{
		ID:            rs.ID.String(),
		Version:       rs.Version,
		Name:          rs.Name,
		Status:        string(rs.Status),
		EffectiveFrom: rs.EffectiveFrom.Format(time.DateOnly),
		Description:   rs.Description,
		Referenced:    rs.Referenced,
		Rules:         make([]RuleResponse, 0, len(rs.Rules)),
		Deadlines:     make([]DeadlineResponse, 0, len(rs.Deadlines)),
		CreatedAt:     rs.CreatedAt,
		UpdatedAt:     rs.UpdatedAt,
	}
	if rs.EffectiveTo != nil {
		to := rs.EffectiveTo.Format(time.DateOnly)
		resp.EffectiveTo = &to
	}
	for _, r := range rs.Rules {
		resp.Rules = append(resp.Rules, RuleResponse{
			ID:          r.ID,
			Key:         r.Key,
			Type:        string(r.Type),
			Priority:    r.Priority,
			Conditions:  condition.ToValue(r.Conditions),
			Outcome:     r.Outcome,
			Explanation: r.Explanation,
		})
	}
	for _, d := range rs.Deadlines {
		dr := DeadlineResponse{
			ID:            d.ID,
			Key:           d.Key,
			TaxType:       d.TaxType,
			Frequency:     string(d.Frequency),
			DueDayOfMonth: d.DueDayOfMonth,
			DueMonth:      d.DueMonth,
			DueDay:        d.DueDay,
			DueYear:       d.DueYear,
			OffsetDays:    d.OffsetDays,
			Title:         d.Title,
			Description:   d.Description,
		}
		if d.AppliesWhen != nil {
			dr.AppliesWhen = condition.ToValue(d.AppliesWhen)
		}
		resp.Deadlines = append(resp.Deadlines, dr)
	}
	return resp
}

func FromRuleSets(sets []*models.RuleSet) *ListResponse {
	out := &ListResponse{RuleSets: make([]RuleSetSummary, 0, len(sets))}
	for _, rs := range sets {
		out.RuleSets = append(out.RuleSets, RuleSetSummary{
			ID:            rs.ID.String(),
			Version:       rs.Version,
			Name:          rs.Name,
			Status:        string(rs.Status),
			EffectiveFrom: rs.EffectiveFrom.Format(time.DateOnly),
			Rules:         len(rs.Rules),
			Deadlines:     len(rs.Deadlines),
			Referenced:    rs.Referenced,
		})
	}
	return out
}
