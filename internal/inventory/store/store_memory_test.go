package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayuda/internal/inventory/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()
	now := time.Now()

	supply, err := models.NewSupply(id.SupplyID(uuid.New()), "Gasas", "caja", 3, now)
	require.NoError(t, err)
	require.NoError(t, st.CreateSupply(ctx, supply))
	assert.ErrorIs(t, st.CreateSupply(ctx, supply), sentinel.ErrConflict)

	t.Run("returned supply is a copy", func(t *testing.T) {
		found, err := st.FindSupply(ctx, supply.ID)
		require.NoError(t, err)
		found.CurrentStock = 99
		again, _ := st.FindSupply(ctx, supply.ID)
		assert.Equal(t, int64(0), again.CurrentStock)
	})

	t.Run("negative stock is refused", func(t *testing.T) {
		err := st.UpdateStock(ctx, supply.ID, -1, now)
		assert.True(t, errors.Is(err, sentinel.ErrInvalidState))
	})

	t.Run("movements keep insertion order", func(t *testing.T) {
		actor := id.UserID(uuid.New())
		first, _ := models.NewMovement(id.MovementID(uuid.New()), supply.ID, models.MovementEntry, 5, models.ReasonPurchase, actor, "", nil, now)
		second, _ := models.NewMovement(id.MovementID(uuid.New()), supply.ID, models.MovementExit, 2, models.ReasonLoss, actor, "", nil, now)
		require.NoError(t, st.AppendMovement(ctx, first))
		require.NoError(t, st.AppendMovement(ctx, second))

		list, err := st.ListMovements(ctx, supply.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("unknown supply", func(t *testing.T) {
		_, err := st.ListMovements(ctx, id.SupplyID(uuid.New()))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("low stock report", func(t *testing.T) {
		low, err := st.ListLowStock(ctx)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, supply.ID, low[0].ID)
	})
}
