// Package resolver merges the rules of a rule set that match a profile into a
// single outcome.
//
// Matching rules are folded in ascending priority, ties broken by rule key.
// A rule applied later overrides scalar fields set earlier, so the highest
// priority number wins a conflict. List fields concatenate in fold order.
package resolver

import (
	"sort"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
)

// Result is the resolved outcome with per-field attribution.
type Result struct {
	Outcome        models.Outcome
	Explanations   models.Explanations
	MatchedRules   []string
	RuleSetVersion string
}

type options struct {
	types map[models.RuleType]struct{}
}

type Option func(*options)

// WithTypes restricts resolution to rules of the given types.
func WithTypes(types ...models.RuleType) Option {
	return func(o *options) {
		if o.types == nil {
			o.types = make(map[models.RuleType]struct{}, len(types))
		}
		for _, t := range types {
			o.types[t] = struct{}{}
		}
	}
}

// Resolve evaluates every rule in rs against profile and merges the matches.
// A nil rule set yields the baseline outcome.
func Resolve(rs *models.RuleSet, profile condition.Profile, opts ...Option) Result {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	res := Result{
		Outcome:        models.BaselineOutcome(),
		Explanations:   models.Explanations{},
		MatchedRules:   []string{},
		RuleSetVersion: models.NoRuleSetVersion,
	}
	if rs == nil {
		applyBaseline(&res, true)
		return res
	}
	res.RuleSetVersion = rs.Version

	matched := make([]models.Rule, 0, len(rs.Rules))
	for _, rule := range rs.Rules {
		if o.types != nil {
			if _, ok := o.types[rule.Type]; !ok {
				continue
			}
		}
		if condition.Evaluate(rule.Conditions, profile) {
			matched = append(matched, rule)
		}
	}
	sortForFold(matched)

	for _, rule := range matched {
		res.MatchedRules = append(res.MatchedRules, rule.Key)
		attr := models.Attribution{RuleKey: rule.Key, Explanation: explanationFor(rule)}
		for _, m := range merges {
			if !m.apply(&res.Outcome, rule.Outcome) {
				continue
			}
			if m.list {
				res.Explanations[m.field] = append(res.Explanations[m.field], attr)
			} else {
				res.Explanations[m.field] = []models.Attribution{attr}
			}
		}
	}

	applyBaseline(&res, len(matched) == 0)
	return res
}

// sortForFold orders rules by ascending priority, then key.
func sortForFold(rules []models.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].Key < rules[j].Key
	})
}

func explanationFor(rule models.Rule) string {
	if rule.Explanation != "" {
		return rule.Explanation
	}
	return "matched rule " + rule.Key
}

// applyBaseline attributes undecided statuses to the baseline pseudo-rule and,
// when nothing matched, attaches the baseline note.
func applyBaseline(res *Result, noMatch bool) {
	for _, field := range []string{models.FieldCITStatus, models.FieldVATStatus, models.FieldWHTStatus} {
		if _, ok := res.Explanations[field]; ok {
			continue
		}
		res.Explanations[field] = []models.Attribution{{
			RuleKey:     models.BaselineRuleKey,
			Explanation: "no matching rule decided this field",
		}}
	}
	if noMatch {
		res.Outcome.ComplianceNotes = append(res.Outcome.ComplianceNotes, models.BaselineNote)
		res.Explanations[models.FieldComplianceNotes] = append(res.Explanations[models.FieldComplianceNotes], models.Attribution{
			RuleKey:     models.BaselineRuleKey,
			Explanation: models.BaselineNote,
		})
	}
}
