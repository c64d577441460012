package models

import "time"

// CompletedMonths counts fully elapsed months of taxYear as of now: twelve
// for past years, none for future years.
func CompletedMonths(taxYear int, now time.Time) int {
	now = now.UTC()
	switch {
	case taxYear < now.Year():
		return 12
	case taxYear > now.Year():
		return 0
	default:
		return int(now.Month()) - 1
	}
}
