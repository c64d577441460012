// Package scheduler expands deadline templates into concrete due dates for a
// tax year. Expansion is a pure function of the templates, the profile and
// the year, so its output can be cached and regenerated safely.
package scheduler

import (
	"sort"
	"time"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
)

// Expand returns the deadline instances of every template in rs that applies
// to profile, sorted by due date, template key and period start.
func Expand(rs *models.RuleSet, profile condition.Profile, taxYear int) []models.DeadlineInstance {
	out := []models.DeadlineInstance{}
	if rs == nil {
		return out
	}
	for _, tmpl := range rs.Deadlines {
		out = append(out, ExpandTemplate(tmpl, profile, taxYear)...)
	}
	Sort(out)
	return out
}

// ExpandTemplate expands a single template. A template whose AppliesWhen
// guard is false yields nothing.
func ExpandTemplate(tmpl models.DeadlineTemplate, profile condition.Profile, taxYear int) []models.DeadlineInstance {
	if tmpl.AppliesWhen != nil && !condition.Evaluate(tmpl.AppliesWhen, profile) {
		return nil
	}
	offset := 0
	if tmpl.OffsetDays != nil {
		offset = *tmpl.OffsetDays
	}

	switch tmpl.Frequency {
	case models.FrequencyMonthly:
		out := make([]models.DeadlineInstance, 0, 12)
		for m := time.January; m <= time.December; m++ {
			last := daysIn(taxYear, m)
			day := last
			if tmpl.DueDayOfMonth != nil {
				day = min(*tmpl.DueDayOfMonth, last)
			}
			out = append(out, instance(tmpl,
				date(taxYear, m, 1), date(taxYear, m, last),
				date(taxYear, m, day).AddDate(0, 0, offset)))
		}
		return out

	case models.FrequencyQuarterly:
		out := make([]models.DeadlineInstance, 0, 4)
		for q := 0; q < 4; q++ {
			first := time.Month(q*3 + 1)
			lastMonth := first + 2
			end := date(taxYear, lastMonth, daysIn(taxYear, lastMonth))
			out = append(out, instance(tmpl, date(taxYear, first, 1), end, end.AddDate(0, 0, offset)))
		}
		return out

	case models.FrequencyAnnual:
		if tmpl.DueMonth == nil || tmpl.DueDay == nil {
			return nil
		}
		due := clampedDate(taxYear, *tmpl.DueMonth, *tmpl.DueDay).AddDate(0, 0, offset)
		return []models.DeadlineInstance{instance(tmpl, yearStart(taxYear), yearEnd(taxYear), due)}

	case models.FrequencyOneTime:
		if tmpl.DueMonth == nil || tmpl.DueDay == nil {
			return nil
		}
		year := taxYear
		if tmpl.DueYear != nil {
			year = *tmpl.DueYear
		}
		due := clampedDate(year, *tmpl.DueMonth, *tmpl.DueDay).AddDate(0, 0, offset)
		return []models.DeadlineInstance{instance(tmpl, yearStart(year), yearEnd(year), due)}
	}
	return nil
}

// Sort orders instances by due date, template key and period start.
func Sort(instances []models.DeadlineInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if a.TemplateKey != b.TemplateKey {
			return a.TemplateKey < b.TemplateKey
		}
		return a.PeriodStart.Before(b.PeriodStart)
	})
}

func instance(tmpl models.DeadlineTemplate, start, end, due time.Time) models.DeadlineInstance {
	return models.DeadlineInstance{
		TemplateKey: tmpl.Key,
		TaxType:     tmpl.TaxType,
		Title:       tmpl.Title,
		Frequency:   tmpl.Frequency,
		PeriodStart: start,
		PeriodEnd:   end,
		DueDate:     due,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return date(year, month+1, 0).Day()
}

func clampedDate(year, month, day int) time.Time {
	m := time.Month(month)
	return date(year, m, min(day, daysIn(year, m)))
}

func yearStart(year int) time.Time { return date(year, time.January, 1) }
func yearEnd(year int) time.Time   { return date(year, time.December, 31) }
