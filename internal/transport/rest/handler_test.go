package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of the ProductService interface.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, product service.ProductCreateDto) (*service.ProductDto, error) {
	args := m.Called(ctx, product)
	if dto, ok := args.Get(0).(*service.ProductDto); ok {
		return dto, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) ListPaginated(ctx context.Context, page, limit int32) (*service.ProductPageDto, error) {
	args := m.Called(ctx, page, limit)
	if dto, ok := args.Get(0).(*service.ProductPageDto); ok {
		return dto, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) FindOne(ctx context.Context, id uuid.UUID) (*service.ProductDto, error) {
	args := m.Called(ctx, id)
	if dto, ok := args.Get(0).(*service.ProductDto); ok {
		return dto, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, product service.ProductUpdateDto) (*service.ProductDto, error) {
	args := m.Called(ctx, id, product)
	if dto, ok := args.Get(0).(*service.ProductDto); ok {
		return dto, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) Remove(ctx context.Context, id uuid.UUID) (*service.ProductDto, error) {
	args := m.Called(ctx, id)
	if dto, ok := args.Get(0).(*service.ProductDto); ok {
		return dto, args.Error(1)
	}
	return nil, args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	mockID    = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	stamp     = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	toyDto    = &service.ProductDto{ID: mockID.String(), Name: "Toy", Price: 9.5, IsAvailable: true, CreatedAt: stamp, UpdatedAt: stamp}
	toyJSON   = `{"id":"123e4567-e89b-12d3-a456-426614174000","name":"Toy","price":9.5,"isAvailable":true,"createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}`
	goneJSON  = `{"id":"123e4567-e89b-12d3-a456-426614174000","name":"Toy","price":9.5,"isAvailable":false,"createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}`
	errDB     = errors.New("db is down")
	notFound  = `{"error":"Product with ID 123e4567-e89b-12d3-a456-426614174000 not found"}`
	productsU = "/api/v1/products"
)

func ptr[T any](v T) *T { return &v }

type testCase struct {
	name         string
	method       string
	url          string
	body         string
	setup        func(m *MockProductService)
	expectedCode int
	expectedBody string
}

func runHandlerTests(t *testing.T, testCases []testCase) {
	t.Helper()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockService := new(MockProductService)
			if tc.setup != nil {
				tc.setup(mockService)
			}
			h := NewHandler(mockService, pingerFunc(func(context.Context) error { return nil }), slog.New(slog.NewTextHandler(io.Discard, nil)))
			mux := chi.NewRouter()
			h.RegisterRoutes(mux)
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.url, body)
			w := httptest.NewRecorder()

			// when
			mux.ServeHTTP(w, req)

			// then
			assert.Equal(t, tc.expectedCode, w.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, w.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Create(t *testing.T) {
	runHandlerTests(t, []testCase{
		{
			name:   "created",
			method: http.MethodPost,
			url:    productsU,
			body:   `{"name":"Toy","price":9.5}`,
			setup: func(m *MockProductService) {
				m.On("Create", mock.Anything, service.ProductCreateDto{Name: "Toy", Price: ptr(9.5)}).Return(toyDto, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: toyJSON,
		},
		{
			name:         "missing name",
			method:       http.MethodPost,
			url:          productsU,
			body:         `{"price":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Name":"failed on rule: required"}}`,
		},
		{
			name:         "missing price",
			method:       http.MethodPost,
			url:          productsU,
			body:         `{"name":"Toy"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Price":"failed on rule: required"}}`,
		},
		{
			name:         "negative price",
			method:       http.MethodPost,
			url:          productsU,
			body:         `{"name":"Toy","price":-1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Price":"failed on rule: min"}}`,
		},
		{
			name:         "name too long",
			method:       http.MethodPost,
			url:          productsU,
			body:         `{"name":"` + strings.Repeat("a", 101) + `","price":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Name":"failed on rule: max"}}`,
		},
		{
			name:         "malformed body",
			method:       http.MethodPost,
			url:          productsU,
			body:         `{"name":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:   "store failure",
			method: http.MethodPost,
			url:    productsU,
			body:   `{"name":"Toy","price":9.5}`,
			setup: func(m *MockProductService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, errDB)
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to create product"}`,
		},
	})
}

func TestHandler_ListPaginated(t *testing.T) {
	page := &service.ProductPageDto{
		Data:     []service.ProductDto{*toyDto},
		MetaData: service.PageMetaData{Page: 1, Total: 1, LastPage: 1},
	}
	runHandlerTests(t, []testCase{
		{
			name:   "defaults",
			method: http.MethodGet,
			url:    productsU,
			setup: func(m *MockProductService) {
				m.On("ListPaginated", mock.Anything, int32(1), int32(10)).Return(page, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"data":[` + toyJSON + `],"metaData":{"page":1,"total":1,"lastPage":1}}`,
		},
		{
			name:   "explicit params",
			method: http.MethodGet,
			url:    productsU + "?page=2&limit=5",
			setup: func(m *MockProductService) {
				m.On("ListPaginated", mock.Anything, int32(2), int32(5)).Return(page, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "page beyond last",
			method: http.MethodGet,
			url:    productsU + "?page=4",
			setup: func(m *MockProductService) {
				m.On("ListPaginated", mock.Anything, int32(4), int32(10)).
					Return(nil, &perrors.PageOutOfRangeError{LastPage: 3})
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"page not found, last page should be #3"}`,
		},
		{
			name:         "zero page",
			method:       http.MethodGet,
			url:          productsU + "?page=0",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid page number: 0"}`,
		},
		{
			name:         "non numeric limit",
			method:       http.MethodGet,
			url:          productsU + "?limit=abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid limit number: abc"}`,
		},
		{
			name:   "max limit",
			method: http.MethodGet,
			url:    productsU + "?limit=100",
			setup: func(m *MockProductService) {
				m.On("ListPaginated", mock.Anything, int32(1), int32(100)).Return(page, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "limit above max",
			method:       http.MethodGet,
			url:          productsU + "?limit=101",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid limit number: 101"}`,
		},
		{
			name:         "limit at int32 max",
			method:       http.MethodGet,
			url:          productsU + "?limit=2147483647",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid limit number: 2147483647"}`,
		},
		{
			name:   "store failure",
			method: http.MethodGet,
			url:    productsU,
			setup: func(m *MockProductService) {
				m.On("ListPaginated", mock.Anything, int32(1), int32(10)).Return(nil, errDB)
			},
			expectedCode: http.StatusInternalServerError,
		},
	})
}

func TestHandler_FindOne(t *testing.T) {
	runHandlerTests(t, []testCase{
		{
			name:   "found",
			method: http.MethodGet,
			url:    productsU + "/" + mockID.String(),
			setup: func(m *MockProductService) {
				m.On("FindOne", mock.Anything, mockID).Return(toyDto, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: toyJSON,
		},
		{
			name:   "not found",
			method: http.MethodGet,
			url:    productsU + "/" + mockID.String(),
			setup: func(m *MockProductService) {
				m.On("FindOne", mock.Anything, mockID).Return(nil, perrors.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: notFound,
		},
		{
			name:         "invalid id",
			method:       http.MethodGet,
			url:          productsU + "/not-a-uuid",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid ID: not-a-uuid"}`,
		},
	})
}

func TestHandler_Update(t *testing.T) {
	runHandlerTests(t, []testCase{
		{
			name:   "partial update ignores id in body",
			method: http.MethodPatch,
			url:    productsU + "/" + mockID.String(),
			body:   `{"id":"00000000-0000-0000-0000-000000000001","name":"Toy"}`,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, mockID, service.ProductUpdateDto{Name: ptr("Toy")}).Return(toyDto, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: toyJSON,
		},
		{
			name:   "empty payload",
			method: http.MethodPatch,
			url:    productsU + "/" + mockID.String(),
			body:   `{}`,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, mockID, service.ProductUpdateDto{}).Return(toyDto, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "empty name",
			method:       http.MethodPatch,
			url:          productsU + "/" + mockID.String(),
			body:         `{"name":""}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Name":"failed on rule: min"}}`,
		},
		{
			name:   "not found",
			method: http.MethodPatch,
			url:    productsU + "/" + mockID.String(),
			body:   `{"price":3}`,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, mockID, mock.Anything).Return(nil, perrors.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: notFound,
		},
	})
}

func TestHandler_Remove(t *testing.T) {
	gone := *toyDto
	gone.IsAvailable = false
	runHandlerTests(t, []testCase{
		{
			name:   "removed",
			method: http.MethodDelete,
			url:    productsU + "/" + mockID.String(),
			setup: func(m *MockProductService) {
				m.On("Remove", mock.Anything, mockID).Return(&gone, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: goneJSON,
		},
		{
			name:   "already removed",
			method: http.MethodDelete,
			url:    productsU + "/" + mockID.String(),
			setup: func(m *MockProductService) {
				m.On("Remove", mock.Anything, mockID).Return(nil, perrors.ErrProductUnavailable)
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"Product with ID 123e4567-e89b-12d3-a456-426614174000 is already unavailable"}`,
		},
		{
			name:   "not found",
			method: http.MethodDelete,
			url:    productsU + "/" + mockID.String(),
			setup: func(m *MockProductService) {
				m.On("Remove", mock.Anything, mockID).Return(nil, perrors.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: notFound,
		},
		{
			name:   "store failure",
			method: http.MethodDelete,
			url:    productsU + "/" + mockID.String(),
			setup: func(m *MockProductService) {
				m.On("Remove", mock.Anything, mockID).Return(nil, errDB)
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to remove product with ID 123e4567-e89b-12d3-a456-426614174000"}`,
		},
	})
}

func TestHandler_Probes(t *testing.T) {
	testCases := []struct {
		name         string
		url          string
		pingErr      error
		expectedCode int
	}{
		{name: "liveness", url: "/healthz", expectedCode: http.StatusOK},
		{name: "ready", url: "/readyz", expectedCode: http.StatusOK},
		{name: "not ready", url: "/readyz", pingErr: errDB, expectedCode: http.StatusServiceUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(new(MockProductService), pingerFunc(func(context.Context) error { return tc.pingErr }), slog.New(slog.NewTextHandler(io.Discard, nil)))
			mux := chi.NewRouter()
			h.RegisterRoutes(mux)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))

			assert.Equal(t, tc.expectedCode, w.Code)
		})
	}
}
