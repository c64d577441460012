package models

import (
	"time"

	"github.com/google/uuid"

	id "taxsafe/pkg/domain"
)

type ObligationStatus string

const (
	ObligationUpcoming  ObligationStatus = "upcoming"
	ObligationDue       ObligationStatus = "due"
	ObligationOverdue   ObligationStatus = "overdue"
	ObligationFulfilled ObligationStatus = "fulfilled"
)

// DeadlineInstance is one concrete due date expanded from a template.
type DeadlineInstance struct {
	TemplateKey string    `json:"template_key"`
	TaxType     string    `json:"tax_type"`
	Title       string    `json:"title"`
	Frequency   Frequency `json:"frequency"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	DueDate     time.Time `json:"due_date"`
}

// PeriodKey identifies the reporting period a fulfillment refers to.
type PeriodKey struct {
	TemplateKey string
	PeriodStart string
}

// NewPeriodKey builds a key with the period start at day granularity.
func NewPeriodKey(templateKey string, periodStart time.Time) PeriodKey {
	return PeriodKey{TemplateKey: templateKey, PeriodStart: periodStart.UTC().Format(time.DateOnly)}
}

func (i DeadlineInstance) PeriodKey() PeriodKey {
	return NewPeriodKey(i.TemplateKey, i.PeriodStart)
}

// Obligation is a dated, status-tagged instance of a tax duty. Status is
// derived from DueDate, the clock and Fulfilled; only Fulfilled is a source
// of truth.
type Obligation struct {
	ID          uuid.UUID        `json:"id"`
	BusinessID  id.BusinessID    `json:"business_id"`
	TemplateKey string           `json:"template_key"`
	TaxType     string           `json:"tax_type"`
	Title       string           `json:"title"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	DueDate     time.Time        `json:"due_date"`
	Fulfilled   bool             `json:"fulfilled"`
	Status      ObligationStatus `json:"status"`
}
