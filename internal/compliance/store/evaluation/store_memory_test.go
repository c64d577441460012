package evaluation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/sentinel"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	business := id.BusinessID(uuid.New())

	_, err := store.Latest(ctx, business, 2025)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	first := &models.Evaluation{ID: id.NewEvaluationID(), BusinessID: business, TaxYear: 2025, RuleSetVersion: "2025.1"}
	second := &models.Evaluation{ID: id.NewEvaluationID(), BusinessID: business, TaxYear: 2025, RuleSetVersion: "2025.2"}
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Latest(ctx, business, 2025)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, 2, store.Count(business, 2025))

	_, err = store.Latest(ctx, business, 2024)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
