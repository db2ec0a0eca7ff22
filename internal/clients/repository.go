package clients

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// Repository defines persistence operations for clients.
type Repository interface {
	Create(ctx context.Context, client Client) (*Client, error)
	Get(ctx context.Context, id int64) (*Client, error)
	FindByEmailOrCPF(ctx context.Context, email, cpf string) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, error)
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

func (r *repository) Create(ctx context.Context, client Client) (*Client, error) {
	const query = `
		INSERT INTO clients (name, email, cpf)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, client.Name, client.Email, client.CPF).Scan(&client.ID)
	if err != nil {
		if conflict := mapConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("clients: create: %w", err)
	}
	return &client, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	const query = `SELECT id, name, email, cpf FROM clients WHERE id = $1`

	var c Client
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.CPF)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("clients: get: %w", err)
	}
	return &c, nil
}

func (r *repository) FindByEmailOrCPF(ctx context.Context, email, cpf string) (*Client, error) {
	const query = `SELECT id, name, email, cpf FROM clients WHERE email = $1 OR cpf = $2 LIMIT 1`

	var c Client
	err := r.pool.QueryRow(ctx, query, email, cpf).Scan(&c.ID, &c.Name, &c.Email, &c.CPF)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("clients: find by email or cpf: %w", err)
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, error) {
	query := `SELECT id, name, email, cpf FROM clients WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.Name != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+req.Name+"%")
	}
	if req.Email != "" {
		argCount++
		query += ` AND email ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+req.Email+"%")
	}

	argCount++
	query += ` ORDER BY id LIMIT $` + strconv.Itoa(argCount)
	args = append(args, req.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CPF); err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE clients SET id = id"
	args := []any{}
	argCount := 0

	if v, ok := updates["name"]; ok {
		argCount++
		query += ", name = $" + strconv.Itoa(argCount)
		args = append(args, v)
	}
	if v, ok := updates["email"]; ok {
		argCount++
		query += ", email = $" + strconv.Itoa(argCount)
		args = append(args, v)
	}

	argCount++
	query += " WHERE id = $" + strconv.Itoa(argCount)
	args = append(args, id)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if conflict := mapConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("clients: update: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: client has existing orders", httpx.ErrDuplicate)
		}
		return fmt.Errorf("clients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client not found", httpx.ErrNotFound)
	}
	return nil
}

// mapConflict translates unique violations on the email/cpf indexes.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "cpf") {
		return fmt.Errorf("%w: a client with this cpf already exists", httpx.ErrDuplicate)
	}
	return fmt.Errorf("%w: a client with this email already exists", httpx.ErrDuplicate)
}
