package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventRuleSetActivated.Category())
	assert.Equal(t, CategoryCompliance, EventEvaluationRecorded.Category())
	assert.Equal(t, CategoryOperations, EventScanCompleted.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}
