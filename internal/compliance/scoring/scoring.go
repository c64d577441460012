// Package scoring computes the tax-safety score of a business for a tax year.
package scoring

import (
	"time"

	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/obligation"
	id "taxsafe/pkg/domain"
	strutil "taxsafe/pkg/platform/strings"
)

const (
	maxScore = 100

	missingEligibilityPoints = 20

	lowRecordsThreshold    = 0.5
	mediumRecordsThreshold = 0.75
	lowRecordsPoints       = 20
	mediumRecordsPoints    = 10

	// MinExpensesForReceipts is the expense count below which receipt
	// coverage is not judged.
	MinExpensesForReceipts = 5
	lowReceiptThreshold    = 0.5
	mediumReceiptThreshold = 0.8
	lowReceiptPoints       = 20
	mediumReceiptPoints    = 10

	overduePoints  = 30
	verySoonDays   = 7
	verySoonPoints = 15
	soonDays       = 30
	soonPoints     = 5

	lowBandUpperBound    = 50
	mediumBandUpperBound = 80
)

// Input is everything the scorer looks at. HasEligibility is true when an
// evaluation is on file for the business and year.
type Input struct {
	BusinessID     id.BusinessID
	TaxYear        int
	HasEligibility bool
	Obligations    []models.Obligation
	Transactions   []models.Transaction
	Now            time.Time
}

// Score applies the deductions in a fixed order and returns a complete
// snapshot.
func Score(in Input) models.TaxSafetyScore {
	b := models.ScoreBreakdown{HasEligibility: in.HasEligibility, Deductions: []models.Deduction{}}
	deduct := func(reason models.ReasonCode, points int) {
		b.Deductions = append(b.Deductions, models.Deduction{Reason: reason, Points: points})
	}

	if !in.HasEligibility {
		deduct(models.ReasonMissingEligibility, missingEligibilityPoints)
	}

	b.MonthsElapsed = models.CompletedMonths(in.TaxYear, in.Now)
	b.MonthsWithTransactions = monthsWithTransactions(in.Transactions, in.TaxYear, b.MonthsElapsed)
	if b.MonthsElapsed > 0 {
		ratio := float64(b.MonthsWithTransactions) / float64(b.MonthsElapsed)
		b.RecordsCoverageRatio = &ratio
		// Half the months covered already counts as low.
		switch {
		case ratio <= lowRecordsThreshold:
			deduct(models.ReasonLowRecordsCoverage, lowRecordsPoints)
		case ratio < mediumRecordsThreshold:
			deduct(models.ReasonMediumRecordsCoverage, mediumRecordsPoints)
		}
	}

	b.ExpenseCount, b.ExpensesWithEvidence = expenseCoverage(in.Transactions, in.TaxYear)
	if b.ExpenseCount >= MinExpensesForReceipts {
		ratio := float64(b.ExpensesWithEvidence) / float64(b.ExpenseCount)
		b.ReceiptCoverageRatio = &ratio
		switch {
		case ratio < lowReceiptThreshold:
			deduct(models.ReasonLowReceiptCoverage, lowReceiptPoints)
		case ratio < mediumReceiptThreshold:
			deduct(models.ReasonMediumReceiptCoverage, mediumReceiptPoints)
		}
	}

	b.OverdueCount, b.NearestDueInDays = deadlinePressure(in.Obligations, in.Now)
	switch {
	case b.OverdueCount > 0:
		deduct(models.ReasonOverdueObligation, overduePoints)
	case b.NearestDueInDays != nil && *b.NearestDueInDays <= verySoonDays:
		deduct(models.ReasonDeadlineVerySoon, verySoonPoints)
	case b.NearestDueInDays != nil && *b.NearestDueInDays <= soonDays:
		deduct(models.ReasonDeadlineSoon, soonPoints)
	}

	score := maxScore
	reasons := make([]models.ReasonCode, 0, len(b.Deductions))
	for _, d := range b.Deductions {
		score -= d.Points
		reasons = append(reasons, d.Reason)
	}
	score = max(0, min(maxScore, score))

	return models.TaxSafetyScore{
		BusinessID: in.BusinessID,
		TaxYear:    in.TaxYear,
		Score:      score,
		Band:       BandFor(score),
		Reasons:    reasons,
		Breakdown:  b,
		ComputedAt: in.Now,
	}
}

// BandFor maps a score to its band.
func BandFor(score int) models.Band {
	switch {
	case score < lowBandUpperBound:
		return models.BandLow
	case score < mediumBandUpperBound:
		return models.BandMedium
	default:
		return models.BandHigh
	}
}

func monthsWithTransactions(txs []models.Transaction, taxYear, completed int) int {
	seen := make(map[time.Month]struct{})
	for _, tx := range txs {
		d := tx.Date.UTC()
		if d.Year() != taxYear || int(d.Month()) > completed {
			continue
		}
		seen[d.Month()] = struct{}{}
	}
	return len(seen)
}

func expenseCoverage(txs []models.Transaction, taxYear int) (expenses, withEvidence int) {
	for _, tx := range txs {
		if tx.Kind != models.KindExpense || tx.Date.UTC().Year() != taxYear {
			continue
		}
		expenses++
		if strutil.AnyNonBlank(tx.EvidenceIDs) {
			withEvidence++
		}
	}
	return expenses, withEvidence
}

// deadlinePressure recomputes statuses against now rather than trusting the
// stored ones.
func deadlinePressure(obligations []models.Obligation, now time.Time) (overdue int, nearest *int) {
	for _, o := range obligations {
		if o.Fulfilled {
			continue
		}
		days := obligation.DaysUntil(o.DueDate, now)
		if days < 0 {
			overdue++
			continue
		}
		if nearest == nil || days < *nearest {
			d := days
			nearest = &d
		}
	}
	return overdue, nearest
}
