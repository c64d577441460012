// Package obligation turns deadline instances into status-tagged obligations.
//
// Status precedence: fulfilled, then overdue (due date before today), then
// due (within DueSoonDays), then upcoming. Comparisons are made on UTC
// calendar days.
package obligation

import (
	"time"

	"github.com/google/uuid"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
)

// DueSoonDays is the window in which an obligation counts as due.
const DueSoonDays = 30

// namespace seeds deterministic obligation IDs.
var namespace = uuid.MustParse("7d0f6c1e-4f1a-5c3b-9a57-3b4c2e1f9d80")

// FulfillmentLookup reports whether a reporting period has been filed.
type FulfillmentLookup interface {
	IsFulfilled(key models.PeriodKey) bool
}

// FulfillmentSet is an in-memory FulfillmentLookup.
type FulfillmentSet map[models.PeriodKey]bool

func (s FulfillmentSet) IsFulfilled(key models.PeriodKey) bool {
	return s[key]
}

// Classify builds one obligation per instance. A nil lookup means nothing
// has been filed.
func Classify(businessID id.BusinessID, instances []models.DeadlineInstance, lookup FulfillmentLookup, now time.Time) []models.Obligation {
	out := make([]models.Obligation, 0, len(instances))
	for _, inst := range instances {
		fulfilled := lookup != nil && lookup.IsFulfilled(inst.PeriodKey())
		out = append(out, models.Obligation{
			ID:          ID(businessID, inst.TemplateKey, inst.PeriodStart),
			BusinessID:  businessID,
			TemplateKey: inst.TemplateKey,
			TaxType:     inst.TaxType,
			Title:       inst.Title,
			PeriodStart: inst.PeriodStart,
			PeriodEnd:   inst.PeriodEnd,
			DueDate:     inst.DueDate,
			Fulfilled:   fulfilled,
			Status:      Status(inst.DueDate, fulfilled, now),
		})
	}
	return out
}

// Reclassify recomputes the status of stored obligations against now. Only
// the fulfillment flag is trusted.
func Reclassify(obligations []models.Obligation, now time.Time) []models.Obligation {
	out := make([]models.Obligation, len(obligations))
	for i, o := range obligations {
		o.Status = Status(o.DueDate, o.Fulfilled, now)
		out[i] = o
	}
	return out
}

// Status derives an obligation status.
func Status(dueDate time.Time, fulfilled bool, now time.Time) models.ObligationStatus {
	if fulfilled {
		return models.ObligationFulfilled
	}
	days := DaysUntil(dueDate, now)
	switch {
	case days < 0:
		return models.ObligationOverdue
	case days <= DueSoonDays:
		return models.ObligationDue
	default:
		return models.ObligationUpcoming
	}
}

// DaysUntil counts whole UTC calendar days from now to due. Negative values
// mean the due date has passed.
func DaysUntil(due, now time.Time) int {
	return int(truncateDay(due).Sub(truncateDay(now)).Hours() / 24)
}

// ID derives a stable obligation ID so regeneration is idempotent.
func ID(businessID id.BusinessID, templateKey string, periodStart time.Time) uuid.UUID {
	name := businessID.String() + "/" + templateKey + "/" + periodStart.UTC().Format(time.DateOnly)
	return uuid.NewSHA1(namespace, []byte(name))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
