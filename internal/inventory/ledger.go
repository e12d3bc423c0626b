// Package inventory holds the stock ledger primitives. Reserve and Release
// run against the caller's transaction so that the stock mutation commits or
// rolls back together with the cart/order writes that motivated it.
package inventory

import (
	"context"

	"github.com/Keiter0309/EcomGrove/internal/domain"
)

// Reserve locks the product row, checks that qty units are still available
// and decrements stock by qty. Fails with EINSUFFICIENTSTOCK when the
// remaining stock cannot cover the request; the row lock serializes
// concurrent reservations against the same product.
func Reserve(ctx context.Context, tx domain.Tx, productID int64, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.Errorf(domain.EINVALID, "quantity must be greater than zero")
	}
	p, err := tx.ProductForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock < qty {
		return nil, domain.Errorf(domain.EINSUFFICIENTSTOCK,
			"not enough stock available: requested %d, available %d", qty, p.Stock)
	}
	if err := tx.AdjustStock(ctx, productID, -qty); err != nil {
		return nil, err
	}
	p.Stock -= qty
	return p, nil
}

// Release returns qty units of a previous reservation to the product. The
// row lock keeps the increment from racing a concurrent reserve.
func Release(ctx context.Context, tx domain.Tx, productID int64, qty int) error {
	if qty <= 0 {
		return domain.Errorf(domain.EINVALID, "quantity must be greater than zero")
	}
	if _, err := tx.ProductForUpdate(ctx, productID); err != nil {
		return err
	}
	return tx.AdjustStock(ctx, productID, qty)
}
