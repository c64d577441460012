// Package strings cleans the free-text references and descriptions that
// arrive with ledger data.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each reference and drops blanks and repeats, keeping
// first-seen order.
//
// Example:
//
//	DedupeAndTrim([]string{" rcpt-1 ", "rcpt-2", "rcpt-1", ""})
//	// Returns: []string{"rcpt-1", "rcpt-2"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// AnyNonBlank reports whether at least one value has non-whitespace content.
func AnyNonBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
