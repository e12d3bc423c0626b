// Package orders converts carts into orders and drives the order lifecycle.
package orders

import (
	"context"

	"github.com/shopspring/decimal"
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

// Checkout drains the user's cart into orders, one order per cart line, in a
// single unit of work. Stock was already reserved when the lines entered the
// cart, so no further decrement happens here; the products are still read
// under lock to catch ones that vanished (or were soft-deleted) since being
// carted, which fails the whole checkout. On success the cart is empty and
// the created orders are returned.
func (s *Service) Checkout(ctx context.Context, userID int64) ([]domain.Order, error) {
	var created []domain.Order
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		created = created[:0]
		entries, err := tx.CartEntries(ctx, userID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return domain.Errorf(domain.EEMPTYCART, "cart is empty for the user")
		}

		for _, e := range entries {
			p, err := tx.ProductForUpdate(ctx, e.Line.ProductID)
			if err != nil {
				return err
			}
			total := p.Price.Mul(decimal.NewFromInt(int64(e.Line.Quantity)))
			o, err := tx.InsertOrder(ctx, domain.Order{
				UserID:      userID,
				ProductID:   p.ID,
				Quantity:    e.Line.Quantity,
				TotalAmount: total,
				Status:      domain.StatusCreated,
			})
			if err != nil {
				return err
			}
			created = append(created, *o)
		}
		return tx.DeleteCartLines(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("checkout completed",
		zap.Int64("user_id", userID), zap.Int("orders", len(created)))
	return created, nil
}

// Page is one page of a user's order history.
type Page struct {
	Orders     []domain.Order
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// FindAll lists the user's orders, newest first.
func (s *Service) FindAll(ctx context.Context, userID int64, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var out Page
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		list, total, err := tx.OrdersByUser(ctx, userID, (page-1)*limit, limit)
		if err != nil {
			return err
		}
		out = Page{Orders: list, Total: total, Page: page, Limit: limit}
		out.TotalPages = (total + limit - 1) / limit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindOne returns a single order scoped to the requesting user.
func (s *Service) FindOne(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	var o *domain.Order
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		o, err = tx.OrderByUser(ctx, orderID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel flips an order to CANCELLED and returns its quantity to the product
// stock, both in the same unit of work. Only the owner may cancel, and only
// while the order has not shipped; cancelling twice is rejected so stock is
// never restored twice. The order row is locked first so a concurrent cancel
// of the same order serializes here.
func (s *Service) Cancel(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	var cancelled *domain.Order
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return domain.Errorf(domain.EFORBIDDEN, "you are not allowed to cancel this order")
		}
		if !domain.CanTransition(o.Status, domain.StatusCancelled) {
			return domain.Errorf(domain.EINVALIDTRANSITION,
				"cannot cancel an order with status %s", o.Status)
		}
		if err := inventory.Release(ctx, tx, o.ProductID, o.Quantity); err != nil {
			return err
		}
		cancelled, err = tx.UpdateOrderStatus(ctx, o.ID, domain.StatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("order cancelled",
		zap.Int64("order_id", cancelled.ID), zap.Int64("user_id", userID))
	return cancelled, nil
}
