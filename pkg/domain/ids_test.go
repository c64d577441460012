package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taxsafe/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseBusinessID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseBusinessID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseBusinessID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseBusinessID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, BusinessID(validUUID), id)
	})
}

func TestParseID_BoundaryInputs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE businesses;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRuleSetID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errBusiness := ParseBusinessID(validUUID)
		_, errRuleSet := ParseRuleSetID(validUUID)
		_, errIssue := ParseIssueID(validUUID)
		_, errEvaluation := ParseEvaluationID(validUUID)

		require.NoError(t, errBusiness)
		require.NoError(t, errRuleSet)
		require.NoError(t, errIssue)
		require.NoError(t, errEvaluation)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errBusiness := ParseBusinessID(input)
			_, errRuleSet := ParseRuleSetID(input)
			_, errIssue := ParseIssueID(input)
			_, errEvaluation := ParseEvaluationID(input)

			require.Error(t, errBusiness)
			require.Error(t, errRuleSet)
			require.Error(t, errIssue)
			require.Error(t, errEvaluation)
		})
	}
}

func TestIDText_RoundTrip(t *testing.T) {
	original := BusinessID(uuid.New())
	text, err := original.MarshalText()
	require.NoError(t, err)

	var parsed BusinessID
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, original, parsed)

	var bad BusinessID
	assert.Error(t, bad.UnmarshalText([]byte("nope")))
}

func TestParseTaxYear(t *testing.T) {
	t.Run("accepts year in range", func(t *testing.T) {
		y, err := ParseTaxYear(" 2025 ")
		require.NoError(t, err)
		assert.Equal(t, 2025, y.Int())
	})

	t.Run("rejects non numeric", func(t *testing.T) {
		_, err := ParseTaxYear("twenty")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects out of range", func(t *testing.T) {
		_, err := ParseTaxYear("1999")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = NewTaxYear(2101)
		assert.Error(t, err)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseTaxYear("")
		assert.Error(t, err)
	})
}
