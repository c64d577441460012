package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/testutil"
)

var (
	business = id.BusinessID(uuid.MustParse("3f8e2f4a-1b6d-4f0e-8d1c-2a9b7c6e5d40"))
	// July 10th: six completed months of 2025.
	julyTenth = time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)
)

type ScorerSuite struct {
	suite.Suite
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func tx(n int, kind models.TransactionKind, date time.Time, evidence ...string) models.Transaction {
	return models.Transaction{
		ID:          fmt.Sprintf("tx-%d", n),
		BusinessID:  business,
		Date:        date,
		Amount:      decimal.NewFromInt(50000),
		Kind:        kind,
		Category:    "rent",
		Description: "office rent",
		EvidenceIDs: evidence,
	}
}

// oneTxPerMonth covers every completed month so records coverage stays clean.
func oneTxPerMonth(months int) []models.Transaction {
	out := make([]models.Transaction, 0, months)
	for m := 1; m <= months; m++ {
		out = append(out, tx(100+m, models.KindIncome, time.Date(2025, time.Month(m), 5, 0, 0, 0, 0, time.UTC)))
	}
	return out
}

func due(days int, fulfilled bool) models.Obligation {
	return models.Obligation{DueDate: julyTenth.AddDate(0, 0, days), Fulfilled: fulfilled}
}

func (s *ScorerSuite) TestCleanBusiness() {
	got := Score(Input{
		BusinessID:     business,
		TaxYear:        2025,
		HasEligibility: true,
		Transactions:   oneTxPerMonth(6),
		Obligations:    []models.Obligation{due(90, false)},
		Now:            julyTenth,
	})

	s.Equal(100, got.Score)
	s.Equal(models.BandHigh, got.Band)
	s.Empty(got.Reasons)
	s.Equal(julyTenth, got.ComputedAt)
	s.Require().NotNil(got.Breakdown.RecordsCoverageRatio)
	s.InDelta(1.0, *got.Breakdown.RecordsCoverageRatio, 1e-9)
	s.Nil(got.Breakdown.ReceiptCoverageRatio)
}

// =============================================================================
// Records coverage
// =============================================================================

func (s *ScorerSuite) TestRecordsCoverage() {
	s.Run("three of six months is low coverage", func() {
		txs := []models.Transaction{
			tx(1, models.KindIncome, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)),
			tx(2, models.KindIncome, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)),
			tx(3, models.KindIncome, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)),
			tx(4, models.KindIncome, time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)),
			// current month is not completed yet
			tx(5, models.KindIncome, time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)),
		}
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Transactions: txs, Now: julyTenth})

		s.Equal(6, got.Breakdown.MonthsElapsed)
		s.Equal(3, got.Breakdown.MonthsWithTransactions)
		s.Require().NotNil(got.Breakdown.RecordsCoverageRatio)
		s.InDelta(0.5, *got.Breakdown.RecordsCoverageRatio, 1e-9)
		s.Equal([]models.ReasonCode{models.ReasonLowRecordsCoverage}, got.Reasons)
		s.Equal(80, got.Score)
	})

	s.Run("four of six months is medium coverage", func() {
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Transactions: oneTxPerMonth(4), Now: julyTenth})
		s.Equal([]models.ReasonCode{models.ReasonMediumRecordsCoverage}, got.Reasons)
		s.Equal(90, got.Score)
	})

	s.Run("january has no completed months", func() {
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Now: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)})
		s.Equal(0, got.Breakdown.MonthsElapsed)
		s.Nil(got.Breakdown.RecordsCoverageRatio)
		s.Empty(got.Reasons)
	})

	s.Run("transactions from other years are ignored", func() {
		txs := append(oneTxPerMonth(6), tx(9, models.KindIncome, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Transactions: txs, Now: julyTenth})
		s.Equal(6, got.Breakdown.MonthsWithTransactions)
	})
}

// =============================================================================
// Receipt coverage
// Expense count below the minimum is reported as not evaluated.
// =============================================================================

func (s *ScorerSuite) TestReceiptCoverage() {
	expenses := func(n, withEvidence int) []models.Transaction {
		out := oneTxPerMonth(6)
		for i := 0; i < n; i++ {
			var ev []string
			if i < withEvidence {
				ev = []string{fmt.Sprintf("doc-%d", i)}
			}
			out = append(out, tx(i, models.KindExpense, time.Date(2025, 2, 1+i, 0, 0, 0, 0, time.UTC), ev...))
		}
		return out
	}

	s.Run("four expenses without evidence are not judged", func() {
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Transactions: expenses(4, 0), Now: julyTenth})
		s.False(got.HasReason(models.ReasonLowReceiptCoverage))
		s.Nil(got.Breakdown.ReceiptCoverageRatio)
		s.Equal(4, got.Breakdown.ExpenseCount)
	})

	s.Run("five expenses without evidence are low coverage", func() {
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Transactions: expenses(5, 0), Now: julyTenth})
		s.True(got.HasReason(models.ReasonLowReceiptCoverage))
		s.Require().NotNil(got.Breakdown.ReceiptCoverageRatio)
		s.InDelta(0.0, *got.Breakdown.ReceiptCoverageRatio, 1e-9)
	})

	s.Run("three of five is medium coverage", func() {
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Transactions: expenses(5, 3), Now: julyTenth})
		s.Equal([]models.ReasonCode{models.ReasonMediumReceiptCoverage}, got.Reasons)
	})

	s.Run("blank evidence ids do not count", func() {
		txs := expenses(5, 5)
		txs[len(txs)-1].EvidenceIDs = []string{"  ", ""}
		got := Score(Input{TaxYear: 2025, HasEligibility: true, Transactions: txs, Now: julyTenth})
		s.Equal(4, got.Breakdown.ExpensesWithEvidence)
		s.Empty(got.Reasons)
	})
}

// =============================================================================
// Obligation pressure
// =============================================================================

func (s *ScorerSuite) TestObligationPressure() {
	base := Input{TaxYear: 2025, HasEligibility: true, Transactions: oneTxPerMonth(6), Now: julyTenth}

	cases := []struct {
		name        string
		obligations []models.Obligation
		reasons     []models.ReasonCode
		score       int
	}{
		{"overdue suppresses proximity", []models.Obligation{due(-3, false), due(2, false)}, []models.ReasonCode{models.ReasonOverdueObligation}, 70},
		{"fulfilled overdue is ignored", []models.Obligation{due(-3, true)}, []models.ReasonCode{}, 100},
		{"due within a week", []models.Obligation{due(7, false), due(20, false)}, []models.ReasonCode{models.ReasonDeadlineVerySoon}, 85},
		{"due within a month", []models.Obligation{due(8, false)}, []models.ReasonCode{models.ReasonDeadlineSoon}, 95},
		{"due later", []models.Obligation{due(31, false)}, []models.ReasonCode{}, 100},
		{"nearest fulfilled one is skipped", []models.Obligation{due(1, true), due(45, false)}, []models.ReasonCode{}, 100},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := base
			in.Obligations = tc.obligations
			got := Score(in)
			s.Equal(tc.reasons, got.Reasons)
			s.Equal(tc.score, got.Score)
		})
	}
}

func (s *ScorerSuite) TestReasonsKeepEvaluationOrder() {
	txs := []models.Transaction{}
	for i := 0; i < 5; i++ {
		txs = append(txs, tx(i, models.KindExpense, time.Date(2025, 1, 2+i, 0, 0, 0, 0, time.UTC)))
	}
	got := Score(Input{TaxYear: 2025, Transactions: txs, Obligations: []models.Obligation{due(-1, false)}, Now: julyTenth})

	s.Equal([]models.ReasonCode{
		models.ReasonMissingEligibility,
		models.ReasonLowRecordsCoverage,
		models.ReasonLowReceiptCoverage,
		models.ReasonOverdueObligation,
	}, got.Reasons)
	s.Equal(10, got.Score)
	s.Equal(models.BandLow, got.Band)
	s.Len(got.Breakdown.Deductions, 4)
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, models.BandLow, BandFor(49))
	assert.Equal(t, models.BandMedium, BandFor(50))
	assert.Equal(t, models.BandMedium, BandFor(79))
	assert.Equal(t, models.BandHigh, BandFor(80))
}

func TestScoreScenario(t *testing.T) {
	testutil.Given(t, "a business that filed nothing and kept no records last year", func(t *testing.T) {
		in := Input{
			BusinessID:  business,
			TaxYear:     2024,
			Obligations: []models.Obligation{{DueDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)}},
			Now:         julyTenth,
		}
		testutil.When(t, "the score is computed", func(t *testing.T) {
			got := Score(in)
			testutil.Then(t, "every axis deducts and the band is low", func(t *testing.T) {
				require.NotNil(t, got.Breakdown.RecordsCoverageRatio)
				assert.Equal(t, 12, got.Breakdown.MonthsElapsed)
				assert.Equal(t, 30, got.Score)
				assert.Equal(t, models.BandLow, got.Band)
				assert.Equal(t, 1, got.Breakdown.OverdueCount)
			})
		})
	})
}
