package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "lowercases", input: "OFFICE RENT", expected: "office rent"},
		{name: "collapses whitespace", input: "  office \t  rent ", expected: "office rent"},
		{name: "drops punctuation", input: "Office-rent, (March)!", expected: "office rent march"},
		{name: "keeps digits", input: "POS 1234 #77", expected: "pos 1234 77"},
		{name: "only punctuation", input: "--", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}
