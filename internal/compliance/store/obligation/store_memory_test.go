package obligation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	business := id.BusinessID(uuid.New())

	got, err := store.ListByYear(ctx, business, 2025)
	require.NoError(t, err)
	assert.Empty(t, got)

	june := models.Obligation{TemplateKey: "vat", DueDate: time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)}
	may := models.Obligation{TemplateKey: "vat", DueDate: time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.ReplaceForYear(ctx, business, 2025, []models.Obligation{june, may}))

	got, err = store.ListByYear(ctx, business, 2025)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, may.DueDate, got[0].DueDate)

	require.NoError(t, store.ReplaceForYear(ctx, business, 2025, []models.Obligation{june}))
	got, err = store.ListByYear(ctx, business, 2025)
	require.NoError(t, err)
	assert.Len(t, got, 1, "replace drops obligations of the previous evaluation")
}
