package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Keiter0309/EcomGrove/internal/domain"
)

// Store implements domain.Store on top of a pgx pool. Locked reads use
// SELECT ... FOR UPDATE so read-modify-write sequences on product stock
// serialize on the row. Serialization failures and unique-constraint races
// are retried up to maxRetries before surfacing as ECONFLICT.
type Store struct {
	pool       *pgxpool.Pool
	log        *zap.Logger
	maxRetries int
	conflicts  prometheus.Counter // may be nil
}

func NewStore(pool *pgxpool.Pool, log *zap.Logger, maxRetries int, conflicts prometheus.Counter) *Store {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Store{pool: pool, log: log, maxRetries: maxRetries, conflicts: conflicts}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		var appErr *domain.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		if !retryable(err) {
			s.log.Error("transaction failed", zap.Error(err))
			return domain.Errorf(domain.EINTERNAL, "internal error")
		}
		if s.conflicts != nil {
			s.conflicts.Inc()
		}
		s.log.Warn("transaction conflict, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	return domain.Errorf(domain.ECONFLICT, "operation lost a concurrent update race, please retry")
}

func (s *Store) runTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	pgTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = pgTx.Rollback(ctx) }()

	if err := fn(&tx{tx: pgTx}); err != nil {
		return err
	}
	return pgTx.Commit(ctx)
}

// retryable reports whether the transaction can be replayed: serialization
// failure, deadlock, or a unique violation from two first-time adds of the
// same (user, product) racing each other.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

type tx struct{ tx pgx.Tx }

const productCols = `id, name, description, price, stock, image_path, category_id, is_deleted, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.ImagePath, &p.CategoryID, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ENOTFOUND, "product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *tx) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(t.tx.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1 AND is_deleted = FALSE`, id))
}

func (t *tx) ProductForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(t.tx.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1 AND is_deleted = FALSE FOR UPDATE`, id))
}

func (t *tx) AdjustStock(ctx context.Context, id int64, delta int) error {
	ct, err := t.tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id=$1`, id, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return domain.Errorf(domain.ENOTFOUND, "product not found")
	}
	return nil
}

const cartCols = `id, user_id, product_id, quantity, created_at, updated_at`

func scanCartLine(row pgx.Row) (*domain.CartLine, error) {
	var l domain.CartLine
	err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ENOTFOUND, "cart item not found")
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *tx) CartLineByID(ctx context.Context, id int64) (*domain.CartLine, error) {
	return scanCartLine(t.tx.QueryRow(ctx,
		`SELECT `+cartCols+` FROM carts WHERE id=$1`, id))
}

func (t *tx) CartLineByProduct(ctx context.Context, userID, productID int64) (*domain.CartLine, error) {
	return scanCartLine(t.tx.QueryRow(ctx,
		`SELECT `+cartCols+` FROM carts WHERE user_id=$1 AND product_id=$2`, userID, productID))
}

func (t *tx) CartEntries(ctx context.Context, userID int64) ([]domain.CartEntry, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.id, p.name, p.description, p.price, p.stock, p.image_path,
		       p.category_id, p.is_deleted, p.created_at, p.updated_at
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CartEntry
	for rows.Next() {
		var e domain.CartEntry
		if err := rows.Scan(
			&e.Line.ID, &e.Line.UserID, &e.Line.ProductID, &e.Line.Quantity,
			&e.Line.CreatedAt, &e.Line.UpdatedAt,
			&e.Product.ID, &e.Product.Name, &e.Product.Description, &e.Product.Price,
			&e.Product.Stock, &e.Product.ImagePath, &e.Product.CategoryID,
			&e.Product.IsDeleted, &e.Product.CreatedAt, &e.Product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t *tx) InsertCartLine(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error) {
	return scanCartLine(t.tx.QueryRow(ctx, `
		INSERT INTO carts(user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING `+cartCols, userID, productID, quantity))
}

func (t *tx) UpdateCartLineQuantity(ctx context.Context, id int64, quantity int) (*domain.CartLine, error) {
	return scanCartLine(t.tx.QueryRow(ctx, `
		UPDATE carts SET quantity=$2, updated_at=NOW()
		WHERE id=$1
		RETURNING `+cartCols, id, quantity))
}

func (t *tx) DeleteCartLine(ctx context.Context, id int64) error {
	ct, err := t.tx.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return domain.Errorf(domain.ENOTFOUND, "cart item not found")
	}
	return nil
}

func (t *tx) DeleteCartLines(ctx context.Context, userID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM carts WHERE user_id=$1`, userID)
	return err
}

const orderCols = `id, user_id, product_id, quantity, total_amount, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity,
		&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ENOTFOUND, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (t *tx) InsertOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	return scanOrder(t.tx.QueryRow(ctx, `
		INSERT INTO orders(user_id, product_id, quantity, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderCols,
		o.UserID, o.ProductID, o.Quantity, o.TotalAmount, o.Status))
}

func (t *tx) OrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return scanOrder(t.tx.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id))
}

func (t *tx) OrderByUser(ctx context.Context, id, userID int64) (*domain.Order, error) {
	return scanOrder(t.tx.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 AND user_id=$2`, id, userID))
}

func (t *tx) OrdersByUser(ctx context.Context, userID int64, offset, limit int) ([]domain.Order, int, error) {
	var total int
	if err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := t.tx.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity,
			&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (t *tx) UpdateOrderStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error) {
	return scanOrder(t.tx.QueryRow(ctx, `
		UPDATE orders SET status=$2, updated_at=NOW()
		WHERE id=$1
		RETURNING `+orderCols, id, status))
}
