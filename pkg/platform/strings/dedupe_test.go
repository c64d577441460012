package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil stays nil", input: nil, want: nil},
		{name: "trims and drops repeats", input: []string{" rcpt-1 ", "rcpt-2", "rcpt-1"}, want: []string{"rcpt-1", "rcpt-2"}},
		{name: "drops blanks", input: []string{"", "  ", "inv-9"}, want: []string{"inv-9"}},
		{name: "case sensitive", input: []string{"INV-1", "inv-1"}, want: []string{"INV-1", "inv-1"}},
		{name: "all blank", input: []string{" ", "\t"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestAnyNonBlank(t *testing.T) {
	assert.False(t, AnyNonBlank(nil))
	assert.False(t, AnyNonBlank([]string{"", "  "}))
	assert.True(t, AnyNonBlank([]string{"", "rcpt-1"}))
}
