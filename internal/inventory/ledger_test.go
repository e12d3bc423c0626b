package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Keiter0309/EcomGrove/internal/domain"
	"github.com/Keiter0309/EcomGrove/internal/inventory"
	"github.com/Keiter0309/EcomGrove/internal/memory"
)

func seed(t *testing.T, stock int) (*memory.Store, domain.Product) {
	t.Helper()
	store := memory.NewStore()
	p := store.SeedProduct(domain.Product{
		Name:  "keyboard",
		Price: decimal.RequireFromString("49.90"),
		Stock: stock,
	})
	return store, p
}

func TestReserveDecrementsStock(t *testing.T) {
	store, p := seed(t, 10)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		got, err := inventory.Reserve(ctx, tx, p.ID, 4)
		require.NoError(t, err)
		require.Equal(t, 6, got.Stock)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 6, store.ProductStock(p.ID))
}

func TestReserveExactCeiling(t *testing.T) {
	store, p := seed(t, 10)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		_, err := inventory.Reserve(ctx, tx, p.ID, 10)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 0, store.ProductStock(p.ID))
}

func TestReserveBeyondCeiling(t *testing.T) {
	store, p := seed(t, 10)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		_, err := inventory.Reserve(ctx, tx, p.ID, 11)
		return err
	})
	require.Error(t, err)
	require.Equal(t, domain.EINSUFFICIENTSTOCK, domain.ErrorCode(err))
	// rolled back, stock untouched
	require.Equal(t, 10, store.ProductStock(p.ID))
}

func TestReserveUnknownProduct(t *testing.T) {
	store, _ := seed(t, 10)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		_, err := inventory.Reserve(ctx, tx, 999, 1)
		return err
	})
	require.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestReserveInvalidQuantity(t *testing.T) {
	store, p := seed(t, 10)
	ctx := context.Background()

	for _, qty := range []int{0, -3} {
		err := store.WithinTx(ctx, func(tx domain.Tx) error {
			_, err := inventory.Reserve(ctx, tx, p.ID, qty)
			return err
		})
		require.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	}
}

func TestReleaseRestoresStock(t *testing.T) {
	store, p := seed(t, 10)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := inventory.Reserve(ctx, tx, p.ID, 7); err != nil {
			return err
		}
		return inventory.Release(ctx, tx, p.ID, 7)
	})
	require.NoError(t, err)
	require.Equal(t, 10, store.ProductStock(p.ID))
}
