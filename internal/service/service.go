// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// DeleteMode selects how Remove disposes of a product.
type DeleteMode string

const (
	// DeleteSoft marks the product unavailable and keeps the row.
	DeleteSoft DeleteMode = "soft"
	// DeleteHard physically deletes the row.
	DeleteHard DeleteMode = "hard"
)

// ProductService defines the methods for managing products.
// Only available products are visible to FindOne and ListPaginated.
type ProductService interface {
	// Create adds a new available product.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// ListPaginated returns one page of available products with pagination metadata.
	// Returns ErrPageOutOfRange if page lies beyond the last page.
	ListPaginated(ctx context.Context, page, limit int32) (*ProductPageDto, error)

	// FindOne retrieves a single available product.
	// Returns ErrProductNotFound if the product is absent or unavailable.
	FindOne(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// Update applies the present fields of the payload to an available product.
	// Returns ErrProductNotFound if the product is absent or unavailable.
	Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error)

	// Remove deletes a product according to the configured DeleteMode.
	// In soft mode returns ErrProductUnavailable if the product was already removed.
	Remove(ctx context.Context, id uuid.UUID) (*ProductDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository     store.ProductStore
	publisher      messaging.Publisher
	deleteMode     DeleteMode
	createdCounter metric.Int64Counter
	removedCounter metric.Int64Counter
}

var _ ProductService = (*Service)(nil)

// NewService creates a new instance of ProductService with the provided repository.
// A nil publisher disables event publishing; an empty mode means DeleteSoft.
func NewService(repo store.ProductStore, publisher messaging.Publisher, mode DeleteMode) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if mode == "" {
		mode = DeleteSoft
	}
	meter := otel.Meter("catalog-service")
	createdCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	removedCounter, err := meter.Int64Counter("products_removed", metric.WithDescription("Total number of removed products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_removed counter: %v", err))
	}
	return &Service{
		repository:     repo,
		publisher:      publisher,
		deleteMode:     mode,
		createdCounter: createdCounter,
		removedCounter: removedCounter,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name  string   `json:"name"  validate:"required,max=100"`
	Price *float64 `json:"price" validate:"required,min=0"`
}

// ProductUpdateDto represents a partial update. Absent fields are left unchanged.
type ProductUpdateDto struct {
	Name  *string  `json:"name"  validate:"omitnil,min=1,max=100"`
	Price *float64 `json:"price" validate:"omitnil,min=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PageMetaData describes the position of a page within the result set.
type PageMetaData struct {
	Page     int32 `json:"page"`
	Total    int64 `json:"total"`
	LastPage int64 `json:"lastPage"`
}

// ProductPageDto is a single page of products.
type ProductPageDto struct {
	Data     []ProductDto `json:"data"`
	MetaData PageMetaData `json:"metaData"`
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	var price float64
	if product.Price != nil {
		price = *product.Price
	}
	p, err := s.repository.Create(ctx, product.Name, price)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.createdCounter.Add(ctx, 1)
	s.publish(ctx, events.ProductCreated(ctx, p.ID, p.Name, p.Price, p.IsAvailable))
	return toDto(p), nil
}

// ListPaginated counts the available products, rejects pages past the last one
// and returns the requested slice ordered by creation time.
func (s *Service) ListPaginated(ctx context.Context, page, limit int32) (*ProductPageDto, error) {
	if page < 1 || limit < 1 {
		return nil, perrors.ErrInvalidPagination
	}
	total, err := s.repository.CountAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	lastPage := (total + int64(limit) - 1) / int64(limit)
	if int64(page) > lastPage {
		return nil, &perrors.PageOutOfRangeError{LastPage: lastPage}
	}

	products, err := s.repository.FindPage(ctx, int64(page-1)*int64(limit), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return &ProductPageDto{
		Data: productDTOs,
		MetaData: PageMetaData{
			Page:     page,
			Total:    total,
			LastPage: lastPage,
		},
	}, nil
}

// FindOne retrieves an available product by its ID.
// Returns ErrProductNotFound if no available product exists with the given ID.
func (s *Service) FindOne(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// Update checks the product exists and applies the present fields of the payload.
// Returns ErrProductNotFound if no available product exists with the given ID.
func (s *Service) Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}
	updated, err := s.repository.Update(ctx, id, store.ProductChanges{
		Name:  product.Name,
		Price: product.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ProductUpdated(ctx, updated.ID, updated.Name, updated.Price, updated.IsAvailable))
	return toDto(updated), nil
}

// Remove soft deletes the product, or physically deletes it in DeleteHard mode.
// Returns the record as it was after the change.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	var (
		removed *store.Product
		err     error
	)
	switch s.deleteMode {
	case DeleteHard:
		if _, err = s.FindOne(ctx, id); err != nil {
			return nil, err
		}
		removed, err = s.repository.DeleteByID(ctx, id)
	default:
		removed, err = s.repository.MarkUnavailable(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove product with ID %s: %w", id, err)
	}

	s.removedCounter.Add(ctx, 1)
	s.publish(ctx, events.ProductRemoved(ctx, removed.ID, removed.Name, removed.Price, removed.IsAvailable))
	return toDto(removed), nil
}

// publish sends the event and only logs a failure.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Price:       product.Price,
		IsAvailable: product.IsAvailable,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
