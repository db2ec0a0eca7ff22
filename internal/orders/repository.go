package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-commerce/vitrine/internal/platform/db"
	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// ProductStock is the locked inventory snapshot used during order creation.
type ProductStock struct {
	ID        int64
	Inventory int
}

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
}

// TxRepository exposes the transactional operations used by order creation
// and deletion. Product rows are locked here so the stock check and the
// decrement are atomic against concurrent orders.
type TxRepository interface {
	ClientExists(ctx context.Context, clientID int64) (bool, error)
	InsertOrder(ctx context.Context, order Order) (int64, error)
	LockProduct(ctx context.Context, productID int64) (ProductStock, error)
	DecrementInventory(ctx context.Context, productID int64, qty int) error
	InsertItem(ctx context.Context, item Item) (int64, error)
	DeleteItems(ctx context.Context, orderID int64) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	const query = `SELECT id, client_id, status, order_date FROM orders WHERE id = $1`

	var o Order
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(&o.ID, &o.ClientID, &status, &o.OrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("orders: get: %w", err)
	}
	o.Status = OrderStatus(status)

	items, err := r.loadItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []Item{}
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, error) {
	query := `SELECT id, client_id, status, order_date FROM orders WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.ClientID != nil {
		argCount++
		query += ` AND client_id = $` + strconv.Itoa(argCount)
		args = append(args, *req.ClientID)
	}
	if req.Status != nil {
		argCount++
		query += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, string(*req.Status))
	}
	if req.DateFrom != nil {
		argCount++
		query += ` AND order_date >= $` + strconv.Itoa(argCount)
		args = append(args, *req.DateFrom)
	}
	if req.DateTo != nil {
		argCount++
		query += ` AND order_date <= $` + strconv.Itoa(argCount)
		args = append(args, *req.DateTo)
	}

	argCount++
	query += ` ORDER BY id LIMIT $` + strconv.Itoa(argCount)
	args = append(args, req.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	var orders []Order
	var ids []int64
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.ClientID, &status, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("orders: scan: %w", err)
		}
		o.Status = OrderStatus(status)
		o.Items = []Item{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if lines, ok := items[orders[i].ID]; ok {
			orders[i].Items = lines
		}
	}
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order not found", httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]Item, error) {
	const query = `
		SELECT id, order_id, product_id, quantity
		FROM items
		WHERE order_id = ANY($1)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("orders: load items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]Item)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("orders: scan item: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

type txRepo struct {
	tx pgx.Tx
}

func (t *txRepo) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, clientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("orders: client exists: %w", err)
	}
	return exists, nil
}

func (t *txRepo) InsertOrder(ctx context.Context, order Order) (int64, error) {
	const query = `
		INSERT INTO orders (client_id, status, order_date)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	err := t.tx.QueryRow(ctx, query, order.ClientID, string(order.Status), order.OrderDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: insert order: %w", err)
	}
	return id, nil
}

func (t *txRepo) LockProduct(ctx context.Context, productID int64) (ProductStock, error) {
	const query = `SELECT id, inventory FROM products WHERE id = $1 FOR UPDATE`

	var stock ProductStock
	err := t.tx.QueryRow(ctx, query, productID).Scan(&stock.ID, &stock.Inventory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductStock{}, fmt.Errorf("%w: product %d not found", httpx.ErrNotFound, productID)
		}
		return ProductStock{}, fmt.Errorf("orders: lock product: %w", err)
	}
	return stock, nil
}

func (t *txRepo) DecrementInventory(ctx context.Context, productID int64, qty int) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET inventory = inventory - $2 WHERE id = $1`, productID, qty)
	if err != nil {
		return fmt.Errorf("orders: decrement inventory: %w", err)
	}
	return nil
}

func (t *txRepo) InsertItem(ctx context.Context, item Item) (int64, error) {
	const query = `
		INSERT INTO items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	err := t.tx.QueryRow(ctx, query, item.OrderID, item.ProductID, item.Quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: insert item: %w", err)
	}
	return id, nil
}

func (t *txRepo) DeleteItems(ctx context.Context, orderID int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("orders: delete items: %w", err)
	}
	return nil
}

func (t *txRepo) DeleteOrder(ctx context.Context, orderID int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("orders: delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order not found", httpx.ErrNotFound)
	}
	return nil
}
