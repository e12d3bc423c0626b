package domain

import "context"

// Store runs units of work. Every multi-step mutation in the cart and order
// services maps to exactly one WithinTx call: all reads and writes inside fn
// commit together or not at all.
//
// Implementations must serialize read-modify-write sequences on product
// stock (row locks or equivalent) and retry transient serialization
// failures a bounded number of times before surfacing ECONFLICT.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside one unit of work. Reads that
// find nothing return an *Error with ENOTFOUND.
type Tx interface {
	// ProductByID reads a product without locking it.
	ProductByID(ctx context.Context, id int64) (*Product, error)
	// ProductForUpdate reads a product and locks its row until commit.
	// Callers mutating stock must go through this to avoid lost updates.
	ProductForUpdate(ctx context.Context, id int64) (*Product, error)
	// AdjustStock applies stock += delta to an already locked product row.
	AdjustStock(ctx context.Context, id int64, delta int) error

	CartLineByID(ctx context.Context, id int64) (*CartLine, error)
	CartLineByProduct(ctx context.Context, userID, productID int64) (*CartLine, error)
	CartEntries(ctx context.Context, userID int64) ([]CartEntry, error)
	InsertCartLine(ctx context.Context, userID, productID int64, quantity int) (*CartLine, error)
	UpdateCartLineQuantity(ctx context.Context, id int64, quantity int) (*CartLine, error)
	DeleteCartLine(ctx context.Context, id int64) error
	DeleteCartLines(ctx context.Context, userID int64) error

	InsertOrder(ctx context.Context, o Order) (*Order, error)
	OrderForUpdate(ctx context.Context, id int64) (*Order, error)
	OrderByUser(ctx context.Context, id, userID int64) (*Order, error)
	OrdersByUser(ctx context.Context, userID int64, offset, limit int) ([]Order, int, error)
	UpdateOrderStatus(ctx context.Context, id int64, status Status) (*Order, error)
}
