// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	readinessTimeout = 2 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the product catalog REST API and the liveness and readiness probes.
type Handler struct {
	service  service.ProductService
	pinger   Pinger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
// The pinger backs the readiness probe.
func NewHandler(service service.ProductService, pinger Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		pinger:   pinger,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListPaginated)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindOne)
			r.Patch("/", h.Update)
			r.Delete("/", h.Remove)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)
}

// FindOne retrieves an available product by its ID.
func (h *Handler) FindOne(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id, "retrieve")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// ListPaginated retrieves one page of available products.
func (h *Handler) ListPaginated(w http.ResponseWriter, r *http.Request) {
	page, ok := web.ParseValidateGtOr(r, w, h.logger, "page", 0, defaultPage)
	if !ok {
		return
	}
	limit, ok := web.ParseValidateRangeOr(r, w, h.logger, "limit", 1, maxLimit, defaultLimit)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to list products", "page", page, "limit", limit)
	result, err := h.service.ListPaginated(r.Context(), page, limit)
	if err != nil {
		var pageErr *perrors.PageOutOfRangeError
		switch {
		case errors.As(err, &pageErr):
			h.logger.WarnContext(r.Context(), "Requested page is out of range", "page", page, "lastPage", pageErr.LastPage)
			web.RespondError(w, h.logger, http.StatusBadRequest, pageErr.Error())
		case errors.Is(err, perrors.ErrInvalidPagination):
			web.RespondError(w, h.logger, http.StatusBadRequest, perrors.ErrInvalidPagination.Error())
		default:
			h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		}
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(result.Data), "total", result.MetaData.Total)
	web.RespondJSON(w, h.logger, http.StatusOK, result)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var productCreateDto service.ProductCreateDto
	if !web.DecodeValid(w, r, h.logger, h.validate, &productCreateDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, newProduct)
}

// Update applies a partial update. An id in the body is ignored.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	var productUpdateDto service.ProductUpdateDto
	if !web.DecodeValid(w, r, h.logger, h.validate, &productUpdateDto) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, productUpdateDto)
	if err != nil {
		h.respondServiceError(w, r, err, id, "update")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Remove deletes a product and returns the affected record.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to remove product", "ID", id)
	removed, err := h.service.Remove(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id, "remove")
		return
	}
	h.logger.InfoContext(r.Context(), "Product removed successfully", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, removed)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadinessCheck reports 503 while the data store cannot be reached.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "database is not reachable")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// respondServiceError maps service errors to HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, id uuid.UUID, action string) {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id, "action", action)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case errors.Is(err, perrors.ErrProductUnavailable):
		h.logger.WarnContext(r.Context(), "Product already unavailable", "ID", id, "action", action)
		web.RespondError(w, h.logger, http.StatusConflict, fmt.Sprintf("Product with ID %s is already unavailable", id))
	default:
		h.logger.ErrorContext(r.Context(), "Error handling product", "ID", id, "action", action, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product with ID %s", action, id))
	}
}
