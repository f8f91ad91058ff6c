package pricing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gopos/internal/api/pricing"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

const (
	productID = "6f1c2a4e-0d8b-4b8e-9a57-3c1f0e2d4b11"
	groupID   = "0b9f0a3e-5d0c-4f55-9a3b-1c2d3e4f5a6b"
)

type MockPricingService struct{ mock.Mock }

func (m *MockPricingService) ResolvePrice(ctx context.Context, q domain.PriceQuery) (domain.PriceResolution, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.PriceResolution), args.Error(1)
}

func (m *MockPricingService) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func TestResolvePriceHandler_Success(t *testing.T) {
	svc := new(MockPricingService)
	h := pricing.NewHandler(svc, logger.NewNop())

	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	svc.On("ResolvePrice", mock.Anything, mock.MatchedBy(func(q domain.PriceQuery) bool {
		return q.ProductID == productID && q.CustomerGroupID == groupID &&
			q.Quantity.Equal(decimal.NewFromInt(10)) && q.AsOf.Equal(asOf)
	})).Return(domain.PriceResolution{
		ProductID: productID,
		UnitPrice: decimal.NewFromInt(95),
		Source:    domain.SourcePriceList,
	}, nil)

	url := fmt.Sprintf("/v1/prices/resolve?product_id=%s&customer_group_id=%s&quantity=10&as_of=2024-06-15", productID, groupID)
	rec := httptest.NewRecorder()
	h.ResolvePriceHandler(rec, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "95", body["unit_price"])
	svc.AssertExpectations(t)
}

func TestResolvePriceHandler_MissingQuantity(t *testing.T) {
	svc := new(MockPricingService)
	h := pricing.NewHandler(svc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.ResolvePriceHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/prices/resolve?product_id="+productID, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ResolvePrice", mock.Anything, mock.Anything)
}

func TestResolvePriceHandler_InvalidDate(t *testing.T) {
	svc := new(MockPricingService)
	h := pricing.NewHandler(svc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.ResolvePriceHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/prices/resolve?quantity=1&as_of=15/06/2024", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolvePriceHandler_Ambiguous(t *testing.T) {
	svc := new(MockPricingService)
	h := pricing.NewHandler(svc, logger.NewNop())

	svc.On("ResolvePrice", mock.Anything, mock.Anything).
		Return(domain.PriceResolution{}, apperror.NewAmbiguousConfigurationError("tabelas empatadas"))

	rec := httptest.NewRecorder()
	h.ResolvePriceHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/prices/resolve?quantity=1", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "AMBIGUOUS_CONFIGURATION")
}

func TestQuoteHandler_Success(t *testing.T) {
	svc := new(MockPricingService)
	h := pricing.NewHandler(svc, logger.NewNop())

	svc.On("Quote", mock.Anything, mock.MatchedBy(func(req domain.QuoteRequest) bool {
		return req.CustomerGroupID == groupID && len(req.Lines) == 1 && req.Lines[0].Quantity.Equal(decimal.NewFromInt(3))
	})).Return(domain.Quote{CustomerGroupID: groupID, Total: decimal.NewFromInt(285)}, nil)

	body := fmt.Sprintf(`{"customer_group_id":%q,"lines":[{"product_id":%q,"quantity":"3"}]}`, groupID, productID)
	rec := httptest.NewRecorder()
	h.QuoteHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/prices/quote", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":"285"`)
}

func TestQuoteHandler_EmptyLines(t *testing.T) {
	svc := new(MockPricingService)
	h := pricing.NewHandler(svc, logger.NewNop())

	body := fmt.Sprintf(`{"customer_group_id":%q,"lines":[]}`, groupID)
	rec := httptest.NewRecorder()
	h.QuoteHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/prices/quote", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything)
}

func TestQuoteHandler_UnknownField(t *testing.T) {
	svc := new(MockPricingService)
	h := pricing.NewHandler(svc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.QuoteHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/prices/quote", strings.NewReader(`{"cliente":"x"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
