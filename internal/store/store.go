// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is the persisted product record.
type Product struct {
	ID          uuid.UUID `db:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `db:"name" gorm:"size:100;not null"`
	Price       float64   `db:"price" gorm:"not null"`
	IsAvailable bool      `db:"is_available" gorm:"not null;default:true;index:idx_products_available_created_at,priority:1"`
	CreatedAt   time.Time `db:"created_at" gorm:"not null;index:idx_products_available_created_at,priority:2"`
	UpdatedAt   time.Time `db:"updated_at" gorm:"not null"`
}

// TableName pins the GORM table name.
func (Product) TableName() string {
	return "products"
}

// ProductChanges holds the fields of a partial update. Nil fields are left untouched.
type ProductChanges struct {
	Name  *string
	Price *float64
}

// ProductStore is an interface for product storage operations.
// Lookups, listing and counting only see products with IsAvailable set.
type ProductStore interface {
	// FindByID retrieves a single available product by its unique identifier.
	// Returns ErrProductNotFound if no available product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindPage returns up to limit available products after skipping offset, ordered by creation time and id.
	FindPage(ctx context.Context, offset int64, limit int32) ([]Product, error)

	// CountAvailable returns the number of available products.
	CountAvailable(ctx context.Context) (int64, error)

	// Create adds a new available product with a generated id.
	Create(ctx context.Context, name string, price float64) (*Product, error)

	// Update applies changes to an available product and refreshes UpdatedAt.
	// Returns ErrProductNotFound if no available product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, changes ProductChanges) (*Product, error)

	// MarkUnavailable flips IsAvailable to false in a single conditional write.
	// Returns ErrProductUnavailable if the product is already unavailable
	// and ErrProductNotFound if it does not exist.
	MarkUnavailable(ctx context.Context, id uuid.UUID) (*Product, error)

	// DeleteByID physically removes a product and returns the deleted record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Ping checks that the underlying data store is reachable.
	Ping(ctx context.Context) error
}
