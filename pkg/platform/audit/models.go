package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events that change what the engine decides:
	// rule-set lifecycle and persisted evaluations.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine engine activity such as scans and scores.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain services to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category       EventCategory
	Timestamp      time.Time
	Action         string
	Subject        string
	BusinessID     string
	TaxYear        int
	RuleSetVersion string
	Detail         string
	RequestID      string
	ActorID        string
}

type AuditEvent string

const (
	// Rule-set lifecycle
	EventRuleSetCreated        AuditEvent = "rule_set_created"
	EventRuleAdded             AuditEvent = "rule_added"
	EventDeadlineTemplateAdded AuditEvent = "deadline_template_added"
	EventRuleSetActivated      AuditEvent = "rule_set_activated"
	EventRuleSetArchived       AuditEvent = "rule_set_archived"
	EventRuleSetImported       AuditEvent = "rule_set_imported"

	// Engine
	EventEvaluationRecorded AuditEvent = "evaluation_recorded"
	EventScoreComputed      AuditEvent = "score_computed"
	EventScanCompleted      AuditEvent = "scan_completed"
	EventIssueDismissed     AuditEvent = "issue_dismissed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRuleSetCreated:        CategoryCompliance,
	EventRuleAdded:             CategoryCompliance,
	EventDeadlineTemplateAdded: CategoryCompliance,
	EventRuleSetActivated:      CategoryCompliance,
	EventRuleSetArchived:       CategoryCompliance,
	EventRuleSetImported:       CategoryCompliance,
	EventEvaluationRecorded:    CategoryCompliance,
	EventIssueDismissed:        CategoryCompliance,

	EventScoreComputed: CategoryOperations,
	EventScanCompleted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is the port domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
