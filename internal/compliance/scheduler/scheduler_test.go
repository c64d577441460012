package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
)

func intPtr(i int) *int { return &i }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// Deadline Scheduler Test Suite
// =============================================================================

type SchedulerSuite struct {
	suite.Suite
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) TestMonthly() {
	s.Run("day 31 clamps to month end", func() {
		tmpl := models.DeadlineTemplate{Key: "vat", TaxType: "VAT", Frequency: models.FrequencyMonthly, DueDayOfMonth: intPtr(31)}

		got := ExpandTemplate(tmpl, nil, 2025)
		s.Require().Len(got, 12)
		s.Equal(day(2025, time.January, 31), got[0].DueDate)
		s.Equal(day(2025, time.February, 28), got[1].DueDate)
		s.Equal(day(2025, time.April, 30), got[3].DueDate)

		leap := ExpandTemplate(tmpl, nil, 2024)
		s.Equal(day(2024, time.February, 29), leap[1].DueDate)
	})

	s.Run("period is the calendar month", func() {
		tmpl := models.DeadlineTemplate{Key: "vat", Frequency: models.FrequencyMonthly, DueDayOfMonth: intPtr(21)}
		got := ExpandTemplate(tmpl, nil, 2025)
		s.Equal(day(2025, time.February, 1), got[1].PeriodStart)
		s.Equal(day(2025, time.February, 28), got[1].PeriodEnd)
		s.Equal(day(2025, time.February, 21), got[1].DueDate)
	})

	s.Run("omitted day means month end plus offset", func() {
		tmpl := models.DeadlineTemplate{Key: "paye", Frequency: models.FrequencyMonthly, OffsetDays: intPtr(10)}
		got := ExpandTemplate(tmpl, nil, 2025)
		s.Equal(day(2025, time.February, 10), got[0].DueDate)
		s.Equal(day(2026, time.January, 10), got[11].DueDate)
	})
}

func (s *SchedulerSuite) TestQuarterly() {
	tmpl := models.DeadlineTemplate{Key: "wht", TaxType: "WHT", Frequency: models.FrequencyQuarterly, OffsetDays: intPtr(21)}
	got := ExpandTemplate(tmpl, nil, 2025)

	s.Require().Len(got, 4)
	s.Equal(day(2025, time.April, 21), got[0].DueDate)
	s.Equal(day(2025, time.January, 1), got[0].PeriodStart)
	s.Equal(day(2025, time.March, 31), got[0].PeriodEnd)
	s.Equal(day(2025, time.July, 1), got[2].PeriodStart)
	s.Equal(day(2025, time.September, 30), got[2].PeriodEnd)
	s.Equal(day(2026, time.January, 21), got[3].DueDate)
}

func (s *SchedulerSuite) TestAnnual() {
	s.Run("uses tax year", func() {
		tmpl := models.DeadlineTemplate{Key: "cit", Frequency: models.FrequencyAnnual, DueMonth: intPtr(6), DueDay: intPtr(30)}
		got := ExpandTemplate(tmpl, nil, 2025)
		s.Require().Len(got, 1)
		s.Equal(day(2025, time.June, 30), got[0].DueDate)
		s.Equal(day(2025, time.January, 1), got[0].PeriodStart)
		s.Equal(day(2025, time.December, 31), got[0].PeriodEnd)
	})

	s.Run("clamps and offsets", func() {
		tmpl := models.DeadlineTemplate{Key: "cit", Frequency: models.FrequencyAnnual, DueMonth: intPtr(2), DueDay: intPtr(30), OffsetDays: intPtr(1)}
		got := ExpandTemplate(tmpl, nil, 2025)
		s.Equal(day(2025, time.March, 1), got[0].DueDate)
	})
}

func (s *SchedulerSuite) TestOneTime() {
	tmpl := models.DeadlineTemplate{Key: "tin", Frequency: models.FrequencyOneTime, DueMonth: intPtr(3), DueDay: intPtr(31), DueYear: intPtr(2025)}

	s.Run("literal year is static", func() {
		a := ExpandTemplate(tmpl, nil, 2025)
		b := ExpandTemplate(tmpl, nil, 2027)
		s.Require().Len(a, 1)
		s.Equal(a, b)
		s.Equal(day(2025, time.March, 31), b[0].DueDate)
		s.Equal(day(2025, time.January, 1), b[0].PeriodStart)
	})

	s.Run("without literal year uses tax year", func() {
		noYear := tmpl
		noYear.DueYear = nil
		got := ExpandTemplate(noYear, nil, 2026)
		s.Equal(day(2026, time.March, 31), got[0].DueDate)
	})
}

func (s *SchedulerSuite) TestAppliesWhen() {
	tmpl := models.DeadlineTemplate{
		Key:         "vat",
		Frequency:   models.FrequencyMonthly,
		AppliesWhen: condition.Leaf{Field: "vatRegistered", Op: condition.OpEq, Value: true},
	}
	s.Len(ExpandTemplate(tmpl, condition.Profile{"vatRegistered": true}, 2025), 12)
	s.Empty(ExpandTemplate(tmpl, condition.Profile{"vatRegistered": false}, 2025))
	s.Empty(ExpandTemplate(tmpl, condition.Profile{}, 2025), "missing field fails closed")
}

func TestExpand_SortedAcrossTemplates(t *testing.T) {
	rs := &models.RuleSet{Deadlines: []models.DeadlineTemplate{
		{Key: "cit", Frequency: models.FrequencyAnnual, DueMonth: intPtr(1), DueDay: intPtr(31)},
		{Key: "b_vat", Frequency: models.FrequencyMonthly},
		{Key: "a_vat", Frequency: models.FrequencyMonthly},
	}}
	got := Expand(rs, nil, 2025)
	require.Len(t, got, 25)

	assert.Equal(t, "a_vat", got[0].TemplateKey)
	assert.Equal(t, "b_vat", got[1].TemplateKey)
	assert.Equal(t, "cit", got[2].TemplateKey)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].DueDate.Before(got[i-1].DueDate), "instances must be sorted by due date")
	}
}

func TestExpand_NilRuleSet(t *testing.T) {
	got := Expand(nil, nil, 2025)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
