package pricelist_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gopos/internal/api/pricelist"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

const (
	groupID   = "0b9f0a3e-5d0c-4f55-9a3b-1c2d3e4f5a6b"
	productID = "6f1c2a4e-0d8b-4b8e-9a57-3c1f0e2d4b11"
	listID    = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
	itemID    = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
)

type MockPriceListService struct{ mock.Mock }

func (m *MockPriceListService) CreatePriceList(ctx context.Context, req domain.PriceListCreateRequest) (domain.PriceList, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.PriceList), args.Error(1)
}

func (m *MockPriceListService) GetPriceList(ctx context.Context, id string) (domain.PriceList, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.PriceList), args.Error(1)
}

func (m *MockPriceListService) ListPriceLists(ctx context.Context, filter domain.PriceListFilter) ([]domain.PriceList, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.PriceList), args.Int(1), args.Error(2)
}

func (m *MockPriceListService) UpdatePriceList(ctx context.Context, id string, patch domain.PriceListPatch) (domain.PriceList, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.PriceList), args.Error(1)
}

func (m *MockPriceListService) RetirePriceList(ctx context.Context, id string) (domain.PriceList, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.PriceList), args.Error(1)
}

func (m *MockPriceListService) ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPriceListService) AddItem(ctx context.Context, listID string, req domain.PriceListItemRequest) (domain.PriceListItem, error) {
	args := m.Called(ctx, listID, req)
	return args.Get(0).(domain.PriceListItem), args.Error(1)
}

func (m *MockPriceListService) UpdateItem(ctx context.Context, listID, itemID string, patch domain.PriceListItemPatch) (domain.PriceListItem, error) {
	args := m.Called(ctx, listID, itemID, patch)
	return args.Get(0).(domain.PriceListItem), args.Error(1)
}

func (m *MockPriceListService) DeactivateItem(ctx context.Context, listID, itemID string) (domain.PriceListItem, error) {
	args := m.Called(ctx, listID, itemID)
	return args.Get(0).(domain.PriceListItem), args.Error(1)
}

func newRouter(svc *MockPriceListService) http.Handler {
	h := pricelist.NewHandler(svc, logger.NewNop())
	r := chi.NewRouter()
	r.Post("/price-lists", h.CreatePriceListHandler)
	r.Get("/price-lists", h.ListPriceListsHandler)
	r.Post("/price-lists/expire", h.ExpireOverdueHandler)
	r.Get("/price-lists/{id}", h.GetPriceListHandler)
	r.Patch("/price-lists/{id}", h.UpdatePriceListHandler)
	r.Post("/price-lists/{id}/retire", h.RetirePriceListHandler)
	r.Post("/price-lists/{id}/items", h.AddItemHandler)
	r.Patch("/price-lists/{id}/items/{itemID}", h.UpdateItemHandler)
	r.Post("/price-lists/{id}/items/{itemID}/deactivate", h.DeactivateItemHandler)
	return r
}

func do(h http.Handler, method, url, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, url, strings.NewReader(body)))
	return rec
}

func TestCreatePriceListHandler_Success(t *testing.T) {
	svc := new(MockPriceListService)
	svc.On("CreatePriceList", mock.Anything, mock.MatchedBy(func(req domain.PriceListCreateRequest) bool {
		return req.Code == "VAREJO-24" && req.DiscountType == domain.DiscountPercentage && len(req.Items) == 1
	})).Return(domain.PriceList{ID: listID, Code: "VAREJO-24"}, nil)

	body := fmt.Sprintf(`{"name":"Varejo","code":"VAREJO-24","customer_group_id":%q,"discount_type":"percentage",
		"items":[{"product_id":%q,"price":"100","discount_value":"5","discount_rate":"0"}]}`, groupID, productID)
	rec := do(newRouter(svc), http.MethodPost, "/price-lists", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), listID)
	svc.AssertExpectations(t)
}

func TestCreatePriceListHandler_InvalidDiscountType(t *testing.T) {
	svc := new(MockPriceListService)

	body := fmt.Sprintf(`{"name":"Varejo","code":"V","customer_group_id":%q,"discount_type":"bonus"}`, groupID)
	rec := do(newRouter(svc), http.MethodPost, "/price-lists", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "discount_type")
	svc.AssertNotCalled(t, "CreatePriceList", mock.Anything, mock.Anything)
}

func TestListPriceListsHandler_Pagination(t *testing.T) {
	svc := new(MockPriceListService)
	svc.On("ListPriceLists", mock.Anything, domain.PriceListFilter{
		CustomerGroupID: groupID, Status: domain.PriceListActive, Page: 2, Limit: 10,
	}).Return([]domain.PriceList{{ID: listID}}, 11, nil)

	rec := do(newRouter(svc), http.MethodGet, "/price-lists?customer_group_id="+groupID+"&status=active&page=2&limit=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Total int `json:"total"`
		Page  int `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 11, body.Total)
	assert.Equal(t, 2, body.Page)
}

func TestListPriceListsHandler_LimitOutOfRange(t *testing.T) {
	svc := new(MockPriceListService)

	rec := do(newRouter(svc), http.MethodGet, "/price-lists?limit=500", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPriceListHandler_NotFound(t *testing.T) {
	svc := new(MockPriceListService)
	svc.On("GetPriceList", mock.Anything, listID).Return(domain.PriceList{}, apperror.NewNotFoundError("tabela"))

	rec := do(newRouter(svc), http.MethodGet, "/price-lists/"+listID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePriceListHandler_PassesPatch(t *testing.T) {
	svc := new(MockPriceListService)
	svc.On("UpdatePriceList", mock.Anything, listID, mock.MatchedBy(func(p domain.PriceListPatch) bool {
		return p.Priority != nil && *p.Priority == 7 && p.ClearEnd
	})).Return(domain.PriceList{ID: listID, Priority: 7}, nil)

	rec := do(newRouter(svc), http.MethodPatch, "/price-lists/"+listID, `{"priority":7,"clear_end_date":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestRetirePriceListHandler(t *testing.T) {
	svc := new(MockPriceListService)
	svc.On("RetirePriceList", mock.Anything, listID).Return(domain.PriceList{ID: listID, Status: domain.PriceListInactive}, nil)

	rec := do(newRouter(svc), http.MethodPost, "/price-lists/"+listID+"/retire", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"inactive"`)
}

func TestExpireOverdueHandler(t *testing.T) {
	svc := new(MockPriceListService)
	cutoff := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	svc.On("ExpireOverdue", mock.Anything, cutoff).Return(int64(3), nil)

	rec := do(newRouter(svc), http.MethodPost, "/price-lists/expire?as_of=2024-07-01", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"expired":3`)
}

func TestAddItemHandler_MissingProduct(t *testing.T) {
	svc := new(MockPriceListService)

	rec := do(newRouter(svc), http.MethodPost, "/price-lists/"+listID+"/items", `{"price":"10"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "product_id")
}

func TestUpdateItemHandler_AndDeactivate(t *testing.T) {
	svc := new(MockPriceListService)
	svc.On("UpdateItem", mock.Anything, listID, itemID, mock.Anything).Return(domain.PriceListItem{ID: itemID}, nil)
	svc.On("DeactivateItem", mock.Anything, listID, itemID).Return(domain.PriceListItem{ID: itemID}, nil)
	router := newRouter(svc)

	rec := do(router, http.MethodPatch, "/price-lists/"+listID+"/items/"+itemID, `{"price":"12.50"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPost, "/price-lists/"+listID+"/items/"+itemID+"/deactivate", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.AssertExpectations(t)
}
