//go:build integration

package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/testdb"
)

func TestRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, _ := testdb.Postgres(ctx, t)
	repo := NewRepository(db)

	id, err := repo.Create(ctx, domain.InventoryItem{
		ProductName:      "bolt",
		StockQuantity:    5,
		ReorderThreshold: 1,
		Price:            decimal.RequireFromString("0.25"),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.InventoryItem{ProductName: "bolt", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.New(apperr.CodeConflict, ""))

	require.NoError(t, repo.AdjustStock(ctx, "bolt", 2))
	require.NoError(t, repo.AdjustStock(ctx, "bolt", -4))
	assert.ErrorIs(t, repo.AdjustStock(ctx, "bolt", 8), apperr.ErrInsufficientStock)
	assert.ErrorIs(t, repo.AdjustStock(ctx, "nut", 1), apperr.ErrProductNotFound)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].StockQuantity)
	assert.True(t, decimal.RequireFromString("0.25").Equal(items[0].Price))

	require.NoError(t, repo.Update(ctx, id, domain.InventoryItem{
		ProductName: "bolt", StockQuantity: 9, ReorderThreshold: 2, Price: decimal.RequireFromString("0.30"),
	}))
	assert.ErrorIs(t, repo.Update(ctx, id+100, domain.InventoryItem{ProductName: "x"}), apperr.NotFound(""))

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), apperr.NotFound(""))
}
