package product_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gopos/internal/api/product"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

const productID = "6f1c2a4e-0d8b-4b8e-9a57-3c1f0e2d4b11"

type MockProductService struct{ mock.Mock }

func (m *MockProductService) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) GetProducts(ctx context.Context, page, limit int, filters map[string]string) (domain.PaginatedProducts, error) {
	args := m.Called(ctx, page, limit, filters)
	return args.Get(0).(domain.PaginatedProducts), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Product), args.Error(1)
}

func newRouter(svc *MockProductService) http.Handler {
	h := product.NewHandler(svc, logger.NewNop())
	r := chi.NewRouter()
	r.Post("/products", h.CreateProductHandler)
	r.Get("/products", h.GetProductsHandler)
	r.Get("/products/{id}", h.GetProductByIDHandler)
	r.Patch("/products/{id}", h.UpdateProductHandler)
	return r
}

func TestCreateProductHandler_Success(t *testing.T) {
	svc := new(MockProductService)
	svc.On("CreateProduct", mock.Anything, mock.MatchedBy(func(req domain.ProductCreateRequest) bool {
		return req.SKU == "CAFE-500" && req.BasePrice.Equal(decimal.RequireFromString("19.90"))
	})).Return(domain.Product{ID: productID, SKU: "CAFE-500"}, nil)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"sku":"CAFE-500","name":"Café 500g","base_price":"19.90"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), productID)
}

func TestCreateProductHandler_InvalidJSON(t *testing.T) {
	svc := new(MockProductService)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"sku":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestGetProductByIDHandler_NotFound(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetProductByID", mock.Anything, productID).Return(domain.Product{}, apperror.NewNotFoundError("produto"))

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+productID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestGetProductsHandler_Filters(t *testing.T) {
	svc := new(MockProductService)
	filters := map[string]string{"name": "café", "sku": "", "is_active": "true"}
	svc.On("GetProducts", mock.Anything, 1, 20, filters).
		Return(domain.PaginatedProducts{Items: []domain.Product{{ID: productID}}, Total: 1, Page: 1, Limit: 20}, nil)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?name=caf%C3%A9&is_active=true", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	svc.AssertExpectations(t)
}

func TestUpdateProductHandler_Success(t *testing.T) {
	svc := new(MockProductService)
	svc.On("UpdateProduct", mock.Anything, productID, mock.MatchedBy(func(p domain.ProductPatch) bool {
		return p.BasePrice != nil && p.BasePrice.Equal(decimal.NewFromInt(25)) && p.Name == nil
	})).Return(domain.Product{ID: productID, BasePrice: decimal.NewFromInt(25)}, nil)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/products/"+productID,
		strings.NewReader(`{"base_price":"25"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
