package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks rule-set administration.
type Metrics struct {
	RuleSetsCreated  prometheus.Counter
	RuleSetActivated prometheus.Counter
	RuleSetsArchived prometheus.Counter
	RulesAdded       *prometheus.CounterVec
	TemplatesAdded   *prometheus.CounterVec
	ImportsByOutcome *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		RuleSetsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsafe_rule_sets_created_total",
			Help: "Total number of rule sets created",
		}),
		RuleSetActivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsafe_rule_set_activations_total",
			Help: "Total number of rule-set activations",
		}),
		RuleSetsArchived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsafe_rule_sets_archived_total",
			Help: "Total number of rule sets archived explicitly",
		}),
		RulesAdded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsafe_rules_added_total",
			Help: "Total number of rules added to draft rule sets by type",
		}, []string{"type"}),
		TemplatesAdded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsafe_deadline_templates_added_total",
			Help: "Total number of deadline templates added by frequency",
		}, []string{"frequency"}),
		ImportsByOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsafe_rule_set_imports_total",
			Help: "Total number of rule-set bundle imports by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.RuleSetsCreated.Inc()
}

func (m *Metrics) IncrementActivated() {
	if m == nil {
		return
	}
	m.RuleSetActivated.Inc()
}

func (m *Metrics) IncrementArchived() {
	if m == nil {
		return
	}
	m.RuleSetsArchived.Inc()
}

func (m *Metrics) IncrementRuleAdded(ruleType string) {
	if m == nil {
		return
	}
	m.RulesAdded.WithLabelValues(ruleType).Inc()
}

func (m *Metrics) IncrementTemplateAdded(frequency string) {
	if m == nil {
		return
	}
	m.TemplatesAdded.WithLabelValues(frequency).Inc()
}

// IncrementImport records an import as "ok" or "rejected".
func (m *Metrics) IncrementImport(ok bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "ok"
	}
	m.ImportsByOutcome.WithLabelValues(outcome).Inc()
}
