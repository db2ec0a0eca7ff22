package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, product Product) (*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, barcode, description, price_cents, section, inventory, expiration_date`

func (r *repository) Create(ctx context.Context, product Product) (*Product, error) {
	const query = `
		INSERT INTO products (barcode, description, price_cents, section, inventory, expiration_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		product.Barcode, product.Description, product.PriceCents,
		string(product.Section), product.Inventory, product.ExpirationDate,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: a product with this barcode already exists", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("products: create: %w", err)
	}
	return &product, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("products: get: %w", err)
	}
	return p, nil
}

func (r *repository) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("products: get by barcode: %w", err)
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.Section != "" {
		argCount++
		query += ` AND section = $` + strconv.Itoa(argCount)
		args = append(args, req.Section)
	}
	if req.MaxPrice != nil {
		argCount++
		query += ` AND price_cents <= $` + strconv.Itoa(argCount)
		args = append(args, *req.MaxPrice)
	}
	if req.MinInventory != nil {
		argCount++
		query += ` AND inventory >= $` + strconv.Itoa(argCount)
		args = append(args, *req.MinInventory)
	}

	argCount++
	query += ` ORDER BY id LIMIT $` + strconv.Itoa(argCount)
	args = append(args, req.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("products: scan: %w", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE products SET id = id"
	args := []any{}
	argCount := 0

	for _, col := range []string{"barcode", "description", "price_cents", "section", "inventory", "expiration_date"} {
		if v, ok := updates[col]; ok {
			argCount++
			query += ", " + col + " = $" + strconv.Itoa(argCount)
			args = append(args, v)
		}
	}

	argCount++
	query += " WHERE id = $" + strconv.Itoa(argCount)
	args = append(args, id)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a product with this barcode already exists", httpx.ErrDuplicate)
		}
		return fmt.Errorf("products: update: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: product is referenced by order items", httpx.ErrDuplicate)
		}
		return fmt.Errorf("products: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product not found", httpx.ErrNotFound)
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var section string
	err := row.Scan(&p.ID, &p.Barcode, &p.Description, &p.PriceCents, &section, &p.Inventory, &p.ExpirationDate)
	if err != nil {
		return nil, err
	}
	p.Section = ProductSection(section)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
