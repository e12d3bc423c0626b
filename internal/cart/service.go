// Package cart maintains each user's reserved cart lines. Stock is
// decremented the moment a quantity enters the cart and restored when it
// leaves, so a cart line is a reservation against the product, not a wish.
package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/Keiter0309/EcomGrove/internal/domain"
	"github.com/Keiter0309/EcomGrove/internal/inventory"
)

type Service struct {
	store domain.Store
	log   *zap.Logger
}

func NewService(store domain.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// AddToCart reserves qty units of the product for the user. A second add of
// the same product merges into the existing line instead of creating a new
// one. The reservation and the line upsert commit together.
func (s *Service) AddToCart(ctx context.Context, userID, productID int64, qty int) (*domain.CartLine, error) {
	if qty <= 0 {
		return nil, domain.Errorf(domain.EINVALID, "quantity must be greater than zero")
	}

	var line *domain.CartLine
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		// Reserve first: the row lock on the product serializes concurrent
		// adds so two carts cannot share the last units.
		if _, err := inventory.Reserve(ctx, tx, productID, qty); err != nil {
			return err
		}

		existing, err := tx.CartLineByProduct(ctx, userID, productID)
		switch {
		case err == nil:
			line, err = tx.UpdateCartLineQuantity(ctx, existing.ID, existing.Quantity+qty)
			return err
		case domain.ErrorCode(err) == domain.ENOTFOUND:
			line, err = tx.InsertCartLine(ctx, userID, productID, qty)
			return err
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// GetCart returns the user's cart lines joined with product snapshots.
func (s *Service) GetCart(ctx context.Context, userID int64) ([]domain.CartEntry, error) {
	var entries []domain.CartEntry
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		entries, err = tx.CartEntries(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateCartItem sets a line to newQty. Raising the quantity reserves the
// difference, lowering it releases the difference, and zero or less deletes
// the line and returns the whole reservation. A line owned by someone else
// reads as not found so existence never leaks across users.
func (s *Service) UpdateCartItem(ctx context.Context, userID, cartLineID int64, newQty int) (*domain.CartLine, error) {
	var line *domain.CartLine
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		existing, err := s.ownedLine(ctx, tx, userID, cartLineID)
		if err != nil {
			return err
		}

		if newQty <= 0 {
			if err := inventory.Release(ctx, tx, existing.ProductID, existing.Quantity); err != nil {
				return err
			}
			return tx.DeleteCartLine(ctx, existing.ID)
		}

		delta := newQty - existing.Quantity
		switch {
		case delta > 0:
			if _, err := inventory.Reserve(ctx, tx, existing.ProductID, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := inventory.Release(ctx, tx, existing.ProductID, -delta); err != nil {
				return err
			}
		}
		line, err = tx.UpdateCartLineQuantity(ctx, existing.ID, newQty)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveProductFromCart deletes a line and releases its full reservation.
func (s *Service) RemoveProductFromCart(ctx context.Context, userID, cartLineID int64) error {
	return s.store.WithinTx(ctx, func(tx domain.Tx) error {
		existing, err := s.ownedLine(ctx, tx, userID, cartLineID)
		if err != nil {
			return err
		}
		if err := inventory.Release(ctx, tx, existing.ProductID, existing.Quantity); err != nil {
			return err
		}
		return tx.DeleteCartLine(ctx, existing.ID)
	})
}

// ClearCart drops every line of the user and returns each reservation to its
// product, all in one unit of work.
func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	return s.store.WithinTx(ctx, func(tx domain.Tx) error {
		entries, err := tx.CartEntries(ctx, userID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return domain.Errorf(domain.ENOTFOUND, "no items in the cart to clear")
		}

		perProduct := make(map[int64]int)
		for _, e := range entries {
			perProduct[e.Line.ProductID] += e.Line.Quantity
		}
		for productID, qty := range perProduct {
			if err := inventory.Release(ctx, tx, productID, qty); err != nil {
				return err
			}
		}
		return tx.DeleteCartLines(ctx, userID)
	})
}

func (s *Service) ownedLine(ctx context.Context, tx domain.Tx, userID, cartLineID int64) (*domain.CartLine, error) {
	existing, err := tx.CartLineByID(ctx, cartLineID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, domain.Errorf(domain.ENOTFOUND, "cart item not found")
	}
	return existing, nil
}
