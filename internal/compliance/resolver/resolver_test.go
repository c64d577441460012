package resolver

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/testutil"
)

func str(s string) *string { return &s }

func rule(t *testing.T, key string, priority int, cond condition.Node, patch models.OutcomePatch) models.Rule {
	t.Helper()
	r, err := models.NewRule(uuid.New(), key, models.RuleTypeEligibility, priority, cond, patch, "explains "+key)
	require.NoError(t, err)
	return r
}

func ruleSet(rules ...models.Rule) *models.RuleSet {
	return &models.RuleSet{
		ID:            id.RuleSetID(uuid.New()),
		Version:       "2025.1",
		Status:        models.RuleSetStatusActive,
		Rules:         rules,
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolve_SmallCompanyExemption(t *testing.T) {
	testutil.Given(t, "an active rule set with a turnover exemption", func(t *testing.T) {
		rs := ruleSet(rule(t, "cit_exempt", 10,
			condition.Leaf{Field: "annualTurnoverNGN", Op: condition.OpLte, Value: 25_000_000},
			models.OutcomePatch{CITStatus: str("exempt")}))

		testutil.When(t, "a small business is resolved", func(t *testing.T) {
			res := Resolve(rs, condition.Profile{"annualTurnoverNGN": 10_000_000})

			testutil.Then(t, "CIT is exempt and attributed to the rule", func(t *testing.T) {
				assert.Equal(t, "exempt", res.Outcome.CITStatus)
				require.Len(t, res.Explanations[models.FieldCITStatus], 1)
				assert.Equal(t, "cit_exempt", res.Explanations[models.FieldCITStatus][0].RuleKey)
				assert.Equal(t, "2025.1", res.RuleSetVersion)
				assert.Equal(t, []string{"cit_exempt"}, res.MatchedRules)
			})

			testutil.Then(t, "undecided statuses stay unknown and point at the baseline", func(t *testing.T) {
				assert.Equal(t, models.StatusUnknown, res.Outcome.VATStatus)
				assert.Equal(t, models.BaselineRuleKey, res.Explanations[models.FieldVATStatus][0].RuleKey)
				assert.NotContains(t, res.Outcome.ComplianceNotes, models.BaselineNote)
			})
		})
	})
}

func TestResolve_NoActiveRuleSet(t *testing.T) {
	res := Resolve(nil, condition.Profile{"annualTurnoverNGN": 10_000_000})

	assert.Equal(t, models.StatusUnknown, res.Outcome.CITStatus)
	assert.Equal(t, models.StatusUnknown, res.Outcome.VATStatus)
	assert.Equal(t, models.StatusUnknown, res.Outcome.WHTStatus)
	assert.Equal(t, models.NoRuleSetVersion, res.RuleSetVersion)
	assert.Equal(t, []string{models.BaselineNote}, res.Outcome.ComplianceNotes)
	assert.Equal(t, models.BaselineRuleKey, res.Explanations[models.FieldComplianceNotes][0].RuleKey)
	assert.Empty(t, res.MatchedRules)
}

func TestResolve_NoMatchingRule(t *testing.T) {
	rs := ruleSet(rule(t, "large_company", 1,
		condition.Leaf{Field: "annualTurnoverNGN", Op: condition.OpGt, Value: 100_000_000},
		models.OutcomePatch{CITStatus: str("liable")}))

	res := Resolve(rs, condition.Profile{})
	assert.Equal(t, models.StatusUnknown, res.Outcome.CITStatus)
	assert.Contains(t, res.Outcome.ComplianceNotes, models.BaselineNote)
	assert.Equal(t, "2025.1", res.RuleSetVersion)
}

func TestResolve_PriorityOrdering(t *testing.T) {
	t.Run("higher priority number wins scalar conflicts", func(t *testing.T) {
		rs := ruleSet(
			rule(t, "vat_specific", 20, nil, models.OutcomePatch{VATStatus: str("registered")}),
			rule(t, "vat_default", 1, nil, models.OutcomePatch{VATStatus: str("not_required")}),
		)
		res := Resolve(rs, condition.Profile{})
		assert.Equal(t, "registered", res.Outcome.VATStatus)
		assert.Equal(t, "vat_specific", res.Explanations[models.FieldVATStatus][0].RuleKey)
		assert.Equal(t, []string{"vat_default", "vat_specific"}, res.MatchedRules)
	})

	t.Run("equal priority breaks ties by key", func(t *testing.T) {
		rs := ruleSet(
			rule(t, "b_rule", 5, nil, models.OutcomePatch{WHTStatus: str("b")}),
			rule(t, "a_rule", 5, nil, models.OutcomePatch{WHTStatus: str("a")}),
		)
		res := Resolve(rs, condition.Profile{})
		assert.Equal(t, "b", res.Outcome.WHTStatus)
		assert.Equal(t, []string{"a_rule", "b_rule"}, res.MatchedRules)
	})

	t.Run("order of rules in the set does not matter", func(t *testing.T) {
		a := rule(t, "low", 1, nil, models.OutcomePatch{CITStatus: str("low")})
		b := rule(t, "high", 9, nil, models.OutcomePatch{CITStatus: str("high")})
		assert.Equal(t, Resolve(ruleSet(a, b), nil).Outcome, Resolve(ruleSet(b, a), nil).Outcome)
	})
}

func TestResolve_ListFieldsConcatenate(t *testing.T) {
	rs := ruleSet(
		rule(t, "second", 2, nil, models.OutcomePatch{ComplianceNotes: []string{"file VAT monthly"}, RequiredDocuments: []string{"vat_certificate"}}),
		rule(t, "first", 1, nil, models.OutcomePatch{ComplianceNotes: []string{"keep receipts", "register for TIN"}}),
	)
	res := Resolve(rs, condition.Profile{})

	assert.Equal(t, []string{"keep receipts", "register for TIN", "file VAT monthly"}, res.Outcome.ComplianceNotes)
	assert.Equal(t, []string{"vat_certificate"}, res.Outcome.RequiredDocuments)
	notes := res.Explanations[models.FieldComplianceNotes]
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].RuleKey)
	assert.Equal(t, "second", notes[1].RuleKey)
}

func TestResolve_TypeFilter(t *testing.T) {
	threshold, err := models.NewRule(uuid.New(), "vat_threshold", models.RuleTypeThreshold, 1, nil,
		models.OutcomePatch{TurnoverBand: str("small")}, "")
	require.NoError(t, err)
	rs := ruleSet(threshold, rule(t, "cit", 1, nil, models.OutcomePatch{CITStatus: str("liable")}))

	res := Resolve(rs, condition.Profile{}, WithTypes(models.RuleTypeThreshold))
	assert.Equal(t, "small", res.Outcome.TurnoverBand)
	assert.Equal(t, models.StatusUnknown, res.Outcome.CITStatus)
	assert.Equal(t, "matched rule vat_threshold", res.Explanations[models.FieldTurnoverBand][0].Explanation)
}

func TestResolve_InvalidConditionFailsClosed(t *testing.T) {
	rs := ruleSet(
		rule(t, "broken", 1, condition.ParseLenient([]byte(`{"field":"x","op":"approx","value":1}`)), models.OutcomePatch{CITStatus: str("exempt")}),
		rule(t, "healthy", 2, nil, models.OutcomePatch{VATStatus: str("registered")}),
	)
	res := Resolve(rs, condition.Profile{"x": 1})
	assert.Equal(t, models.StatusUnknown, res.Outcome.CITStatus)
	assert.Equal(t, "registered", res.Outcome.VATStatus)
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	rs := ruleSet(
		rule(t, "z", 9, nil, models.OutcomePatch{ComplianceNotes: []string{"z"}}),
		rule(t, "a", 1, nil, models.OutcomePatch{ComplianceNotes: []string{"a"}}),
	)
	profile := condition.Profile{"k": "v"}
	_ = Resolve(rs, profile)
	assert.Equal(t, "z", rs.Rules[0].Key)
	assert.Equal(t, []string{"z"}, rs.Rules[0].Outcome.ComplianceNotes)
	assert.Equal(t, condition.Profile{"k": "v"}, profile)
}
