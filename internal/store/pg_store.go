package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "id, name, price, is_available, created_at, updated_at"

const (
	findByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_available`

	findPageQuery = `SELECT ` + productColumns + ` FROM products WHERE is_available
ORDER BY created_at, id OFFSET $1 LIMIT $2`

	countAvailableQuery = `SELECT count(*) FROM products WHERE is_available`

	createQuery = `INSERT INTO products (id, name, price) VALUES ($1, $2, $3) RETURNING ` + productColumns

	updateQuery = `UPDATE products
SET name = COALESCE($2, name), price = COALESCE($3, price), updated_at = now()
WHERE id = $1 AND is_available
RETURNING ` + productColumns

	markUnavailableQuery = `UPDATE products SET is_available = false, updated_at = now()
WHERE id = $1 AND is_available
RETURNING ` + productColumns

	existsQuery = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	deleteQuery = `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

var _ ProductStore = (*PgStore)(nil)

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// collectOne reads a single product from rows, mapping an empty result to ErrProductNotFound.
func collectOne(rows pgx.Rows, err error) (*Product, error) {
	if err != nil {
		return nil, err
	}
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := collectOne(p.db.Query(ctx, findByIDQuery, id))
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

func (p *PgStore) FindPage(ctx context.Context, offset int64, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx, findPageQuery, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

func (p *PgStore) CountAvailable(ctx context.Context) (int64, error) {
	var total int64
	if err := p.db.QueryRow(ctx, countAvailableQuery).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

func (p *PgStore) Create(ctx context.Context, name string, price float64) (*Product, error) {
	product, err := collectOne(p.db.Query(ctx, createQuery, uuid.New(), name, price))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (p *PgStore) Update(ctx context.Context, id uuid.UUID, changes ProductChanges) (*Product, error) {
	product, err := collectOne(p.db.Query(ctx, updateQuery, id, changes.Name, changes.Price))
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (p *PgStore) MarkUnavailable(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := collectOne(p.db.Query(ctx, markUnavailableQuery, id))
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, perrors.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to mark product unavailable: %w", err)
	}

	var exists bool
	if err := p.db.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", err)
	}
	if exists {
		return nil, perrors.ErrProductUnavailable
	}
	return nil, perrors.ErrProductNotFound
}

func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := collectOne(p.db.Query(ctx, deleteQuery, id))
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return product, nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
