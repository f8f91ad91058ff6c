package stock_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gopos/internal/api/stock"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

const (
	productID   = "6f1c2a4e-0d8b-4b8e-9a57-3c1f0e2d4b11"
	warehouseID = "3e4f5a6b-7c8d-4e9f-8a0b-1c2d3e4f5a6b"
)

type MockStockService struct{ mock.Mock }

func (m *MockStockService) AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockLevel, error) {
	args := m.Called(ctx, adjustment)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

func (m *MockStockService) GetStockLevel(ctx context.Context, productID, warehouseID string) (domain.StockLevel, error) {
	args := m.Called(ctx, productID, warehouseID)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

func TestAdjustStockHandler_Success(t *testing.T) {
	svc := new(MockStockService)
	h := stock.NewHandler(svc, logger.NewNop())

	svc.On("AdjustStock", mock.Anything, mock.MatchedBy(func(a domain.StockAdjustmentRequest) bool {
		return a.ProductID == productID && a.Delta.Equal(decimal.RequireFromString("-1.5"))
	})).Return(domain.StockLevel{ProductID: productID, Quantity: decimal.RequireFromString("8.5"), Version: 3}, nil)

	body := fmt.Sprintf(`{"product_id":%q,"warehouse_id":%q,"delta":"-1.5","reason":"quebra"}`, productID, warehouseID)
	rec := httptest.NewRecorder()
	h.AdjustStockHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/stock/adjust", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":"8.5"`)
}

func TestAdjustStockHandler_Conflict(t *testing.T) {
	svc := new(MockStockService)
	h := stock.NewHandler(svc, logger.NewNop())

	svc.On("AdjustStock", mock.Anything, mock.Anything).Return(domain.StockLevel{}, apperror.NewConflictError("versão"))

	body := fmt.Sprintf(`{"product_id":%q,"warehouse_id":%q,"delta":"2"}`, productID, warehouseID)
	rec := httptest.NewRecorder()
	h.AdjustStockHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/stock/adjust", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdjustStockHandler_InvalidWarehouse(t *testing.T) {
	svc := new(MockStockService)
	h := stock.NewHandler(svc, logger.NewNop())

	body := fmt.Sprintf(`{"product_id":%q,"warehouse_id":"loja","delta":"2"}`, productID)
	rec := httptest.NewRecorder()
	h.AdjustStockHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/stock/adjust", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything)
}

func TestGetStockLevelHandler(t *testing.T) {
	svc := new(MockStockService)
	h := stock.NewHandler(svc, logger.NewNop())

	svc.On("GetStockLevel", mock.Anything, productID, warehouseID).Return(domain.StockLevel{Quantity: decimal.NewFromInt(4)}, nil)

	url := fmt.Sprintf("/v1/stock?product_id=%s&warehouse_id=%s", productID, warehouseID)
	rec := httptest.NewRecorder()
	h.GetStockLevelHandler(rec, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
