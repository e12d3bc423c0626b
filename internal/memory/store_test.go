package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Keiter0309/EcomGrove/internal/domain"
)

func TestRollbackOnError(t *testing.T) {
	store := NewStore()
	p := store.SeedProduct(domain.Product{
		Name:  "mug",
		Price: decimal.NewFromInt(5),
		Stock: 3,
	})
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		require.NoError(t, tx.AdjustStock(ctx, p.ID, -2))
		if _, err := tx.InsertCartLine(ctx, 1, p.ID, 2); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// everything inside the unit of work must have been undone
	require.Equal(t, 3, store.ProductStock(p.ID))
	err = store.WithinTx(ctx, func(tx domain.Tx) error {
		entries, err := tx.CartEntries(ctx, 1)
		require.NoError(t, err)
		require.Empty(t, entries)
		return nil
	})
	require.NoError(t, err)
}

func TestSoftDeletedProductIsHidden(t *testing.T) {
	store := NewStore()
	p := store.SeedProduct(domain.Product{
		Name:      "mug",
		Price:     decimal.NewFromInt(5),
		Stock:     3,
		IsDeleted: true,
	})
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		_, err := tx.ProductByID(ctx, p.ID)
		require.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
		_, err = tx.ProductForUpdate(ctx, p.ID)
		require.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
		return nil
	})
	require.NoError(t, err)
}

func TestUniqueCartLinePerProduct(t *testing.T) {
	store := NewStore()
	p := store.SeedProduct(domain.Product{Name: "mug", Price: decimal.NewFromInt(5), Stock: 10})
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.InsertCartLine(ctx, 1, p.ID, 1); err != nil {
			return err
		}
		_, err := tx.InsertCartLine(ctx, 1, p.ID, 2)
		return err
	})
	require.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}
