package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements ProductStore on top of GORM. It backs the sqlite driver.
type GormStore struct {
	db *gorm.DB
}

var _ ProductStore = (*GormStore)(nil)

// NewGormStore creates a ProductStore using the given GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the products table.
func (g *GormStore) AutoMigrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&Product{}); err != nil {
		return fmt.Errorf("failed to migrate products table: %w", err)
	}
	return nil
}

func available(db *gorm.DB) *gorm.DB {
	return db.Where("is_available = ?", true)
}

func (g *GormStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := g.db.WithContext(ctx).Scopes(available).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

func (g *GormStore) FindPage(ctx context.Context, offset int64, limit int32) ([]Product, error) {
	var products []Product
	err := g.db.WithContext(ctx).Scopes(available).
		Order("created_at").Order("id").
		Offset(int(offset)).Limit(int(limit)).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (g *GormStore) CountAvailable(ctx context.Context) (int64, error) {
	var total int64
	if err := g.db.WithContext(ctx).Model(&Product{}).Scopes(available).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

func (g *GormStore) Create(ctx context.Context, name string, price float64) (*Product, error) {
	now := time.Now().UTC()
	product := Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       price,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := g.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

func (g *GormStore) Update(ctx context.Context, id uuid.UUID, changes ProductChanges) (*Product, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.Price != nil {
		updates["price"] = *changes.Price
	}

	var product Product
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Product{}).Scopes(available).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return perrors.ErrProductNotFound
		}
		return tx.Where("id = ?", id).First(&product).Error
	})
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (g *GormStore) MarkUnavailable(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Product{}).Scopes(available).Where("id = ?", id).
			Updates(map[string]any{"is_available": false, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return perrors.ErrProductUnavailable
			}
			return perrors.ErrProductNotFound
		}
		return tx.Where("id = ?", id).First(&product).Error
	})
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) || errors.Is(err, perrors.ErrProductUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to mark product unavailable: %w", err)
	}
	return &product, nil
}

func (g *GormStore) DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return perrors.ErrProductNotFound
			}
			return err
		}
		return tx.Delete(&Product{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return &product, nil
}

func (g *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
