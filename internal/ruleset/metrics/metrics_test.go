package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.IncrementCreated()
		nilMetrics.IncrementImport(true)
	})

	m := New()
	m.IncrementRuleAdded("eligibility")
	m.IncrementRuleAdded("eligibility")
	m.IncrementImport(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RulesAdded.WithLabelValues("eligibility")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportsByOutcome.WithLabelValues("rejected")))
}
