package obligation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
)

var (
	business = id.BusinessID(uuid.MustParse("3f8e2f4a-1b6d-4f0e-8d1c-2a9b7c6e5d40"))
	now      = time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inst(key string, start, due time.Time) models.DeadlineInstance {
	return models.DeadlineInstance{TemplateKey: key, TaxType: "VAT", PeriodStart: start, PeriodEnd: start.AddDate(0, 1, -1), DueDate: due}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		due       time.Time
		fulfilled bool
		want      models.ObligationStatus
	}{
		{"fulfilled wins over overdue", day(2025, 1, 21), true, models.ObligationFulfilled},
		{"fulfilled in the future", day(2025, 12, 31), true, models.ObligationFulfilled},
		{"yesterday is overdue", day(2025, 6, 14), false, models.ObligationOverdue},
		{"today is due, not overdue", day(2025, 6, 15), false, models.ObligationDue},
		{"30 days out is due", day(2025, 7, 15), false, models.ObligationDue},
		{"31 days out is upcoming", day(2025, 7, 16), false, models.ObligationUpcoming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.due, tt.fulfilled, now))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(day(2025, 6, 15), now))
	assert.Equal(t, -1, DaysUntil(day(2025, 6, 14), now))
	assert.Equal(t, 7, DaysUntil(day(2025, 6, 22), now))

	lagos := time.FixedZone("WAT", 3600)
	lateEvening := time.Date(2025, 6, 16, 0, 30, 0, 0, lagos)
	assert.Equal(t, 0, DaysUntil(day(2025, 6, 15), lateEvening), "compares UTC calendar days")
}

func TestClassify(t *testing.T) {
	may := inst("vat_monthly", day(2025, 5, 1), day(2025, 5, 21))
	june := inst("vat_monthly", day(2025, 6, 1), day(2025, 6, 21))
	august := inst("vat_monthly", day(2025, 8, 1), day(2025, 8, 21))

	t.Run("fulfillment lookup by period", func(t *testing.T) {
		lookup := FulfillmentSet{models.NewPeriodKey("vat_monthly", day(2025, 5, 1)): true}
		got := Classify(business, []models.DeadlineInstance{may, june, august}, lookup, now)

		require.Len(t, got, 3)
		assert.Equal(t, models.ObligationFulfilled, got[0].Status)
		assert.True(t, got[0].Fulfilled)
		assert.Equal(t, models.ObligationDue, got[1].Status)
		assert.Equal(t, models.ObligationUpcoming, got[2].Status)
		assert.Equal(t, business, got[1].BusinessID)
	})

	t.Run("nil lookup means nothing filed", func(t *testing.T) {
		got := Classify(business, []models.DeadlineInstance{may}, nil, now)
		assert.Equal(t, models.ObligationOverdue, got[0].Status)
	})

	t.Run("ids are deterministic per business and period", func(t *testing.T) {
		a := Classify(business, []models.DeadlineInstance{may, june}, nil, now)
		b := Classify(business, []models.DeadlineInstance{may, june}, nil, now.AddDate(0, 2, 0))
		assert.Equal(t, a[0].ID, b[0].ID)
		assert.NotEqual(t, a[0].ID, a[1].ID)

		other := id.BusinessID(uuid.New())
		c := Classify(other, []models.DeadlineInstance{may}, nil, now)
		assert.NotEqual(t, a[0].ID, c[0].ID)
	})
}

func TestReclassify(t *testing.T) {
	stored := []models.Obligation{
		{DueDate: day(2025, 6, 21), Status: models.ObligationUpcoming},
		{DueDate: day(2025, 1, 21), Fulfilled: true, Status: models.ObligationOverdue},
	}
	got := Reclassify(stored, now)
	assert.Equal(t, models.ObligationDue, got[0].Status)
	assert.Equal(t, models.ObligationFulfilled, got[1].Status)
	assert.Equal(t, models.ObligationUpcoming, stored[0].Status, "input is not mutated")
}
