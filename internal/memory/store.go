// Package memory is an in-memory implementation of domain.Store. A single
// mutex serializes units of work and state is snapshotted on entry, so a
// failed unit of work rolls back completely. It backs the test suite and
// local runs that have no postgres around.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Keiter0309/EcomGrove/internal/domain"
)

type Store struct {
	mu sync.Mutex

	products map[int64]domain.Product
	carts    map[int64]domain.CartLine
	orders   map[int64]domain.Order

	nextProductID int64
	nextCartID    int64
	nextOrderID   int64
}

func NewStore() *Store {
	return &Store{
		products: make(map[int64]domain.Product),
		carts:    make(map[int64]domain.CartLine),
		orders:   make(map[int64]domain.Order),
	}
}

// SeedProduct inserts a product, assigning an ID when none is set.
func (s *Store) SeedProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextProductID++
		p.ID = s.nextProductID
	} else if p.ID > s.nextProductID {
		s.nextProductID = p.ID
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = p
	return p
}

// ProductStock reports the committed stock of a product. Test helper.
func (s *Store) ProductStock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapProducts := cloneMap(s.products)
	snapCarts := cloneMap(s.carts)
	snapOrders := cloneMap(s.orders)
	snapIDs := [3]int64{s.nextProductID, s.nextCartID, s.nextOrderID}

	if err := fn(&tx{s: s}); err != nil {
		s.products = snapProducts
		s.carts = snapCarts
		s.orders = snapOrders
		s.nextProductID, s.nextCartID, s.nextOrderID = snapIDs[0], snapIDs[1], snapIDs[2]
		return err
	}
	return nil
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type tx struct{ s *Store }

func (t *tx) ProductByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := t.s.products[id]
	if !ok || p.IsDeleted {
		return nil, domain.Errorf(domain.ENOTFOUND, "product not found")
	}
	return &p, nil
}

func (t *tx) ProductForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	// The store mutex already serializes units of work.
	return t.ProductByID(ctx, id)
}

func (t *tx) AdjustStock(_ context.Context, id int64, delta int) error {
	p, ok := t.s.products[id]
	if !ok {
		return domain.Errorf(domain.ENOTFOUND, "product not found")
	}
	if p.Stock+delta < 0 {
		return domain.Errorf(domain.EINTERNAL, "stock constraint violated")
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	t.s.products[id] = p
	return nil
}

func (t *tx) CartLineByID(_ context.Context, id int64) (*domain.CartLine, error) {
	l, ok := t.s.carts[id]
	if !ok {
		return nil, domain.Errorf(domain.ENOTFOUND, "cart item not found")
	}
	return &l, nil
}

func (t *tx) CartLineByProduct(_ context.Context, userID, productID int64) (*domain.CartLine, error) {
	for _, l := range t.s.carts {
		if l.UserID == userID && l.ProductID == productID {
			line := l
			return &line, nil
		}
	}
	return nil, domain.Errorf(domain.ENOTFOUND, "cart item not found")
}

func (t *tx) CartEntries(_ context.Context, userID int64) ([]domain.CartEntry, error) {
	var out []domain.CartEntry
	for _, l := range t.s.carts {
		if l.UserID != userID {
			continue
		}
		out = append(out, domain.CartEntry{Line: l, Product: t.s.products[l.ProductID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line.ID < out[j].Line.ID })
	return out, nil
}

func (t *tx) InsertCartLine(_ context.Context, userID, productID int64, quantity int) (*domain.CartLine, error) {
	for _, l := range t.s.carts {
		if l.UserID == userID && l.ProductID == productID {
			// mirrors the UNIQUE (user_id, product_id) constraint
			return nil, domain.Errorf(domain.ECONFLICT, "cart item already exists")
		}
	}
	t.s.nextCartID++
	now := time.Now().UTC()
	l := domain.CartLine{
		ID:        t.s.nextCartID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.s.carts[l.ID] = l
	return &l, nil
}

func (t *tx) UpdateCartLineQuantity(_ context.Context, id int64, quantity int) (*domain.CartLine, error) {
	l, ok := t.s.carts[id]
	if !ok {
		return nil, domain.Errorf(domain.ENOTFOUND, "cart item not found")
	}
	l.Quantity = quantity
	l.UpdatedAt = time.Now().UTC()
	t.s.carts[id] = l
	return &l, nil
}

func (t *tx) DeleteCartLine(_ context.Context, id int64) error {
	if _, ok := t.s.carts[id]; !ok {
		return domain.Errorf(domain.ENOTFOUND, "cart item not found")
	}
	delete(t.s.carts, id)
	return nil
}

func (t *tx) DeleteCartLines(_ context.Context, userID int64) error {
	for id, l := range t.s.carts {
		if l.UserID == userID {
			delete(t.s.carts, id)
		}
	}
	return nil
}

func (t *tx) InsertOrder(_ context.Context, o domain.Order) (*domain.Order, error) {
	t.s.nextOrderID++
	o.ID = t.s.nextOrderID
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	t.s.orders[o.ID] = o
	return &o, nil
}

func (t *tx) OrderForUpdate(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, domain.Errorf(domain.ENOTFOUND, "order not found")
	}
	return &o, nil
}

func (t *tx) OrderByUser(_ context.Context, id, userID int64) (*domain.Order, error) {
	o, ok := t.s.orders[id]
	if !ok || o.UserID != userID {
		return nil, domain.Errorf(domain.ENOTFOUND, "order not found")
	}
	return &o, nil
}

func (t *tx) OrdersByUser(_ context.Context, userID int64, offset, limit int) ([]domain.Order, int, error) {
	var all []domain.Order
	for _, o := range t.s.orders {
		if o.UserID == userID {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (t *tx) UpdateOrderStatus(_ context.Context, id int64, status domain.Status) (*domain.Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, domain.Errorf(domain.ENOTFOUND, "order not found")
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	t.s.orders[id] = o
	return &o, nil
}
